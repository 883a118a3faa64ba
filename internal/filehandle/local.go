package filehandle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalHandle is a file on the local filesystem.
type LocalHandle struct {
	path     string
	prompter PermissionPrompter
}

// NewLocalHandle returns a handle for path. The prompter may be nil, in which
// case permission requests are always denied.
func NewLocalHandle(path string, prompter PermissionPrompter) (*LocalHandle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", path, err)
	}
	return &LocalHandle{path: abs, prompter: prompter}, nil
}

func (h *LocalHandle) Name() string { return filepath.Base(h.path) }

func (h *LocalHandle) Ref() string { return h.path }

// Read returns the whole file.
func (h *LocalHandle) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.Name(), err)
	}
	return data, nil
}

// CreateWritable stages writes in a temp file next to the target so the
// final rename stays on one filesystem.
func (h *LocalHandle) CreateWritable(ctx context.Context) (Writable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newLocalWritable(h.path)
}

// QueryPermission reports whether the file (or, for a file not yet created,
// its directory) is readable and writable.
func (h *LocalHandle) QueryPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDenied, err
	}
	err := checkAccess(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		err = checkDirAccess(filepath.Dir(h.path))
	}
	switch {
	case err == nil:
		return PermissionGranted, nil
	case errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist):
		return PermissionPrompt, nil
	}
	return PermissionDenied, fmt.Errorf("query permission for %s: %w", h.Name(), err)
}

// RequestPermission gives the user one chance to restore access, then
// checks again.
func (h *LocalHandle) RequestPermission(ctx context.Context) (Permission, error) {
	if h.prompter == nil {
		return PermissionDenied, nil
	}
	ok, err := h.prompter.ConfirmAccess(ctx, h.Name())
	if err != nil {
		return PermissionDenied, fmt.Errorf("request permission for %s: %w", h.Name(), err)
	}
	if !ok {
		return PermissionDenied, nil
	}
	p, err := h.QueryPermission(ctx)
	if err != nil {
		return PermissionDenied, err
	}
	if p != PermissionGranted {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

// LocalResolver turns slot references (absolute paths) into LocalHandles.
type LocalResolver struct {
	Prompter PermissionPrompter
}

func (r LocalResolver) Resolve(ref string) (Handle, error) {
	if ref == "" {
		return nil, errors.New("resolve handle: empty reference")
	}
	return NewLocalHandle(ref, r.Prompter)
}

// EnsureExtension appends the database extension when the name has none.
func EnsureExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path
	}
	return path + Extension
}

type localWritable struct {
	tmp    *os.File
	target string
	done   bool
}

func newLocalWritable(target string) (*localWritable, error) {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create writable: %w", err)
	}
	return &localWritable{tmp: tmp, target: target}, nil
}

func (w *localWritable) Write(p []byte) (int, error) {
	if w.done {
		return 0, fs.ErrClosed
	}
	return w.tmp.Write(p)
}

// Close flushes the temp file to disk and renames it over the target.
func (w *localWritable) Close() error {
	if w.done {
		return fs.ErrClosed
	}
	w.done = true

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(w.target); err == nil {
		mode = info.Mode().Perm()
	}

	if err := w.tmp.Sync(); err != nil {
		w.discard()
		return fmt.Errorf("sync %s: %w", filepath.Base(w.target), err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(w.target), err)
	}
	if err := os.Chmod(w.tmp.Name(), mode); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("chmod %s: %w", filepath.Base(w.target), err)
	}
	if err := os.Rename(w.tmp.Name(), w.target); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(w.target), err)
	}
	return nil
}

func (w *localWritable) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.discard()
	return nil
}

func (w *localWritable) discard() {
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}

// writeFileAtomic replaces path with data through a localWritable.
func writeFileAtomic(path string, data []byte) error {
	w, err := newLocalWritable(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return w.Close()
}
