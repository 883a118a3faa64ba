// Package app wires the lifecycle controller, the state mirror and the
// login service into one session per program run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/auth"
	"github.com/darshit3596/shreejida/internal/lifecycle"
	"github.com/darshit3596/shreejida/internal/model"
)

// Session owns everything that lives for one run.
type Session struct {
	Controller *lifecycle.Controller
	State      *appstate.State
	Auth       *auth.Service
}

// Options tunes the pieces a Session builds.
type Options struct {
	Hasher auth.Hasher
	State  []appstate.Option
}

// NewSession builds an Uninitialized session over files.
func NewSession(files lifecycle.Files, defaults model.Settings, opts Options) *Session {
	ctrl := lifecycle.New(files, defaults)
	st := appstate.New(ctrl, opts.State...)
	return &Session{
		Controller: ctrl,
		State:      st,
		Auth:       auth.NewService(st, opts.Hasher),
	}
}

// Start loads the remembered file, if any, and fills the mirror.
func (s *Session) Start(ctx context.Context) (lifecycle.State, error) {
	state, err := s.Controller.Init(ctx)
	if err != nil {
		return state, err
	}
	if state == lifecycle.Ready {
		if err := s.State.Hydrate(ctx); err != nil {
			s.State.Reset()
			return state, err
		}
	}
	return state, nil
}

// Ready reports whether a database is loaded.
func (s *Session) Ready() bool {
	return s.Controller.State() == lifecycle.Ready
}

// HasUnsavedChanges reports whether the file lags behind the mirror.
func (s *Session) HasUnsavedChanges() bool {
	return s.State.Dirty()
}

// Save writes the database to the current file and clears the dirty flag.
func (s *Session) Save(ctx context.Context) error {
	if err := s.Controller.SaveDatabaseToFile(ctx); err != nil {
		return err
	}
	s.State.MarkClean()
	return nil
}

// SaveAs writes a copy elsewhere. The dirty flag is left alone because the
// current file is still behind.
func (s *Session) SaveAs(ctx context.Context) (bool, error) {
	return s.Controller.SaveDatabaseAs(ctx)
}

// NewFile starts a fresh database in a newly picked file. Unsaved changes in
// the open database are discarded; callers confirm that first.
func (s *Session) NewFile(ctx context.Context, force bool) (bool, error) {
	ok, err := s.Controller.CreateNewDatabaseFile(ctx, force)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.switched(ctx)
}

// OpenFile switches to an existing database file. Unsaved changes in the
// open database are discarded; callers confirm that first.
func (s *Session) OpenFile(ctx context.Context, force bool) (bool, error) {
	ok, err := s.Controller.LoadDatabaseFromFile(ctx, force)
	if !ok && !s.Ready() {
		// the previous store was torn down before the new file failed
		s.State.Reset()
		s.Auth.Logout()
	}
	if err != nil || !ok {
		return false, err
	}
	return true, s.switched(ctx)
}

// switched re-hydrates after a file change. Users belong to a file, so the
// login does not carry over.
func (s *Session) switched(ctx context.Context) error {
	s.Auth.Logout()
	if err := s.State.Hydrate(ctx); err != nil {
		s.State.Reset()
		return fmt.Errorf("load %s: %w", s.Controller.FileName(), err)
	}
	slog.Debug("session switched file", "file", s.Controller.FileName())
	return nil
}

// Close releases the store.
func (s *Session) Close() error {
	return s.Controller.Close()
}
