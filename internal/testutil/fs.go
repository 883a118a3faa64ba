package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/darshit3596/shreejida/internal/filehandle"
)

// MemFS is a set of MemHandles acting as both the host picker and the
// resolver for slot references.
//
// Picks are scripted with QueueOpen/QueueSave; an empty queue or a queued
// empty name behaves like the user cancelling the dialog.
type MemFS struct {
	mu      sync.Mutex
	files   map[string]*MemHandle
	opens   []string
	saves   []string
	Options []filehandle.PickerOptions
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{files: map[string]*MemHandle{}}
}

// Add registers h so it can be picked or resolved.
func (fs *MemFS) Add(h *MemHandle) *MemHandle {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[h.Ref()] = h
	return h
}

// File returns the handle with the given name, creating it if needed.
func (fs *MemFS) File(name string) *MemHandle {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ref := "mem://" + name
	h, ok := fs.files[ref]
	if !ok {
		h = NewMemHandle(name)
		fs.files[ref] = h
	}
	return h
}

// QueueOpen scripts the next open-dialog answers.
func (fs *MemFS) QueueOpen(names ...string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.opens = append(fs.opens, names...)
}

// QueueSave scripts the next save-dialog answers.
func (fs *MemFS) QueueSave(names ...string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.saves = append(fs.saves, names...)
}

func (fs *MemFS) PickOpen(ctx context.Context, opts filehandle.PickerOptions) (filehandle.Handle, error) {
	name := fs.next(&fs.opens, opts)
	if name == "" {
		return nil, filehandle.ErrCancelled
	}
	return fs.File(name), nil
}

func (fs *MemFS) PickSave(ctx context.Context, opts filehandle.PickerOptions) (filehandle.Handle, error) {
	name := fs.next(&fs.saves, opts)
	if name == "" {
		return nil, filehandle.ErrCancelled
	}
	return fs.File(name), nil
}

func (fs *MemFS) next(queue *[]string, opts filehandle.PickerOptions) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.Options = append(fs.Options, opts)
	if len(*queue) == 0 {
		return ""
	}
	name := (*queue)[0]
	*queue = (*queue)[1:]
	return name
}

// Resolve implements filehandle.Resolver.
func (fs *MemFS) Resolve(ref string) (filehandle.Handle, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	h, ok := fs.files[ref]
	if !ok {
		return nil, fmt.Errorf("resolve %q: no such handle", ref)
	}
	return h, nil
}

// MemorySlot is a map-backed filehandle.Slot. A non-nil DeleteErr fails
// every Delete.
type MemorySlot struct {
	mu        sync.Mutex
	entries   map[string]string
	DeleteErr error
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{entries: map[string]string{}}
}

func (s *MemorySlot) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemorySlot) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemorySlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.entries, key)
	return nil
}
