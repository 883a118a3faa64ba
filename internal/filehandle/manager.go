package filehandle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Manager owns the single "current database file" slot.
type Manager struct {
	slot     Slot
	picker   Picker
	resolver Resolver
	opts     PickerOptions
}

// NewManager wires a slot, the host's picker and a resolver for stored refs.
func NewManager(slot Slot, picker Picker, resolver Resolver) *Manager {
	return &Manager{
		slot:     slot,
		picker:   picker,
		resolver: resolver,
		opts:     DefaultPickerOptions(),
	}
}

// GetHandle returns the stored handle, or nil if there is none or access is
// not granted. A handle without granted access gets exactly one
// RequestPermission before GetHandle gives up.
func (m *Manager) GetHandle(ctx context.Context) (Handle, error) {
	ref, ok, err := m.slot.Get(SlotKey)
	if err != nil {
		return nil, fmt.Errorf("get handle: %w", err)
	}
	if !ok || ref == "" {
		return nil, nil
	}

	h, err := m.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("get handle: %w", err)
	}

	perm, err := h.QueryPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("get handle: %w", err)
	}
	if perm == PermissionGranted {
		return h, nil
	}

	slog.Debug("file access not granted, asking again", "file", h.Name(), "permission", perm)
	perm, err = h.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("get handle: %w", err)
	}
	if perm != PermissionGranted {
		slog.Info("file access denied", "file", h.Name())
		return nil, nil
	}
	return h, nil
}

// SetHandle makes h the current database file.
func (m *Manager) SetHandle(ctx context.Context, h Handle) error {
	if h == nil {
		return errors.New("set handle: nil handle")
	}
	if err := m.slot.Put(SlotKey, h.Ref()); err != nil {
		return fmt.Errorf("set handle: %w", err)
	}
	return nil
}

// ClearHandle forgets the current database file.
func (m *Manager) ClearHandle(ctx context.Context) error {
	if err := m.slot.Delete(SlotKey); err != nil {
		return fmt.Errorf("clear handle: %w", err)
	}
	return nil
}

// ShowOpenPicker asks the user for an existing database file. A cancelled
// dialog returns (nil, nil).
func (m *Manager) ShowOpenPicker(ctx context.Context) (Handle, error) {
	h, err := m.picker.PickOpen(ctx, m.opts)
	return pickResult("open", h, err)
}

// ShowSavePicker asks the user for a new file location. A cancelled dialog
// returns (nil, nil).
func (m *Manager) ShowSavePicker(ctx context.Context) (Handle, error) {
	h, err := m.picker.PickSave(ctx, m.opts)
	return pickResult("save", h, err)
}

func pickResult(kind string, h Handle, err error) (Handle, error) {
	if errors.Is(err, ErrCancelled) {
		slog.Debug("file picker cancelled", "picker", kind)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s picker: %w", kind, err)
	}
	return h, nil
}

// ReadFile returns the full contents of h.
func (m *Manager) ReadFile(ctx context.Context, h Handle) ([]byte, error) {
	data, err := h.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// WriteFile replaces the contents of h with data. The writable is closed or
// aborted on every path.
func (m *Manager) WriteFile(ctx context.Context, h Handle, data []byte) (err error) {
	w, err := h.CreateWritable(ctx)
	if err != nil {
		return fmt.Errorf("write file %s: %w", h.Name(), err)
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
	}()

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write file %s: %w", h.Name(), err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("write file %s: %w", h.Name(), err)
	}
	slog.Debug("file written", "file", h.Name(), "bytes", len(data))
	return nil
}
