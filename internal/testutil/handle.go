package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/darshit3596/shreejida/internal/filehandle"
)

// MemHandle is an in-memory filehandle.Handle.
//
// Permission answers are scripted: QueryPermission returns Query, and
// RequestPermission returns Request. Calls are counted so tests can assert
// how often the user would have been prompted.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type MemHandle struct {
	mu sync.Mutex

	name    string
	data    []byte
	exists  bool
	Query   filehandle.Permission
	Request filehandle.Permission

	// ReadErr and WriteErr, when set, fail the next Read or Writable.Close.
	ReadErr  error
	WriteErr error

	QueryCalls   int
	RequestCalls int
	Commits      int
}

// NewMemHandle returns a granted handle with no file behind it yet.
func NewMemHandle(name string) *MemHandle {
	return &MemHandle{name: name, Query: filehandle.PermissionGranted, Request: filehandle.PermissionGranted}
}

// NewMemHandleWithData returns a granted handle for an existing file.
func NewMemHandleWithData(name string, data []byte) *MemHandle {
	h := NewMemHandle(name)
	h.data = append([]byte(nil), data...)
	h.exists = true
	return h
}

func (h *MemHandle) Name() string { return h.name }

func (h *MemHandle) Ref() string { return "mem://" + h.name }

// Data returns a copy of the committed contents.
func (h *MemHandle) Data() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.data...)
}

// Exists reports whether anything has been committed to the handle.
func (h *MemHandle) Exists() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exists
}

func (h *MemHandle) Read(ctx context.Context) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ReadErr != nil {
		return nil, h.ReadErr
	}
	if !h.exists {
		return nil, fmt.Errorf("read %s: file does not exist", h.name)
	}
	return append([]byte(nil), h.data...), nil
}

func (h *MemHandle) CreateWritable(ctx context.Context) (filehandle.Writable, error) {
	return &memWritable{h: h}, nil
}

func (h *MemHandle) QueryPermission(ctx context.Context) (filehandle.Permission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.QueryCalls++
	return h.Query, nil
}

func (h *MemHandle) RequestPermission(ctx context.Context) (filehandle.Permission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.RequestCalls++
	if h.Request == filehandle.PermissionGranted {
		h.Query = filehandle.PermissionGranted
	}
	return h.Request, nil
}

type memWritable struct {
	h    *MemHandle
	buf  bytes.Buffer
	done bool
}

func (w *memWritable) Write(p []byte) (int, error) {
	if w.done {
		return 0, errors.New("writable closed")
	}
	return w.buf.Write(p)
}

func (w *memWritable) Close() error {
	if w.done {
		return errors.New("writable closed")
	}
	w.done = true

	w.h.mu.Lock()
	defer w.h.mu.Unlock()
	if w.h.WriteErr != nil {
		return w.h.WriteErr
	}
	w.h.data = append([]byte(nil), w.buf.Bytes()...)
	w.h.exists = true
	w.h.Commits++
	return nil
}

func (w *memWritable) Abort() error {
	w.done = true
	return nil
}
