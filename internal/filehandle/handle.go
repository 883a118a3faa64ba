package filehandle

import (
	"context"
	"errors"
	"io"
)

// Fixed file type of the backing database.
const (
	MIMEType    = "application/x-sqlite3"
	Extension   = ".db"
	Description = "Database Files"
)

// ErrCancelled is returned by a Picker when the user dismisses the dialog.
// The Manager turns it into a nil handle; it is never surfaced as a failure.
var ErrCancelled = errors.New("picker cancelled")

// Permission is the access state of a handle.
type Permission int

const (
	// PermissionPrompt means access is not currently granted but may be after
	// asking the user.
	PermissionPrompt Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return "prompt"
}

// Handle is a capability for one backing file.
type Handle interface {
	// Name is the file's display name.
	Name() string

	// Ref is the durable reference stored in the Slot; a Resolver turns it
	// back into a Handle in a later session.
	Ref() string

	Read(ctx context.Context) ([]byte, error)

	// CreateWritable opens a scoped writer. Nothing is visible at the file's
	// location until Close succeeds.
	CreateWritable(ctx context.Context) (Writable, error)

	QueryPermission(ctx context.Context) (Permission, error)

	// RequestPermission asks the user to (re)grant access.
	RequestPermission(ctx context.Context) (Permission, error)
}

// Writable receives a full replacement of a file's contents.
type Writable interface {
	io.Writer

	// Close commits the written bytes. On error nothing is committed.
	Close() error

	// Abort discards the written bytes. Safe after Close.
	Abort() error
}

// PickerOptions describes the file type a picker should offer.
type PickerOptions struct {
	Description   string
	MIMEType      string
	Extensions    []string
	SuggestedName string
}

// DefaultPickerOptions restricts pickers to database files.
func DefaultPickerOptions() PickerOptions {
	return PickerOptions{
		Description:   Description,
		MIMEType:      MIMEType,
		Extensions:    []string{Extension},
		SuggestedName: "shop" + Extension,
	}
}

// Picker is the host's file dialog provider.
type Picker interface {
	PickOpen(ctx context.Context, opts PickerOptions) (Handle, error)
	PickSave(ctx context.Context, opts PickerOptions) (Handle, error)
}

// Resolver rebuilds a Handle from a reference read back from the Slot.
type Resolver interface {
	Resolve(ref string) (Handle, error)
}

// PermissionPrompter asks the user whether to retry access to a file.
type PermissionPrompter interface {
	ConfirmAccess(ctx context.Context, name string) (bool, error)
}
