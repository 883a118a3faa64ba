package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/darshit3596/shreejida/internal/filehandle"
	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
)

// State is the readiness of the controller.
type State int

const (
	Uninitialized State = iota
	NeedsFile
	Ready
)

func (s State) String() string {
	switch s {
	case NeedsFile:
		return "needs_file"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

var (
	// ErrNotReady is returned by row operations before a database is loaded.
	ErrNotReady = errors.New("database not ready")

	// ErrAlreadyReady is returned when replacing the open database without force.
	ErrAlreadyReady = errors.New("a database is already open")

	// ErrNoFile is returned by SaveDatabaseToFile when no file is available.
	ErrNoFile = errors.New("no database file available")
)

// Files is the subset of filehandle.Manager the controller needs.
type Files interface {
	GetHandle(ctx context.Context) (filehandle.Handle, error)
	SetHandle(ctx context.Context, h filehandle.Handle) error
	ClearHandle(ctx context.Context) error
	ShowOpenPicker(ctx context.Context) (filehandle.Handle, error)
	ShowSavePicker(ctx context.Context) (filehandle.Handle, error)
	ReadFile(ctx context.Context, h filehandle.Handle) ([]byte, error)
	WriteFile(ctx context.Context, h filehandle.Handle, data []byte) error
}

// Controller owns the session's store and its backing file.
type Controller struct {
	mu        sync.Mutex
	files     Files
	defaults  model.Settings
	store     *store.Store
	state     State
	fileName  string
	listeners []func(State)
}

// New returns an Uninitialized controller. defaults seed every new database.
func New(files Files, defaults model.Settings) *Controller {
	return &Controller{files: files, defaults: defaults}
}

// State returns the current readiness.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FileName is the display name of the current file, empty if none.
func (c *Controller) FileName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileName
}

// OnStateChange registers fn to run after every state transition. fn runs
// with the controller locked and must not call back into it.
func (c *Controller) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Init loads the database behind the stored handle. A missing, denied or
// unreadable file leaves the controller in NeedsFile; an unreadable file's
// handle is cleared. A file counts as unreadable when any of its rows fails
// to decode. Init on a Ready controller is a no-op.
func (c *Controller) Init(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked(ctx)
}

func (c *Controller) initLocked(ctx context.Context) (State, error) {
	if c.state == Ready {
		return Ready, nil
	}

	h, err := c.files.GetHandle(ctx)
	if err != nil {
		slog.Warn("stored database handle unusable", "error", err)
		return c.needsFileLocked(ctx)
	}
	if h == nil {
		c.setStateLocked(NeedsFile)
		return NeedsFile, nil
	}
	c.fileName = h.Name()

	data, err := c.files.ReadFile(ctx, h)
	if err != nil {
		slog.Warn("error reading database file", "file", h.Name(), "error", err)
		return c.needsFileLocked(ctx)
	}

	var st *store.Store
	if len(data) == 0 {
		slog.Info("database file is empty, creating schema", "file", h.Name())
		st, err = store.New(ctx, c.defaults)
		if err != nil {
			return c.state, fmt.Errorf("init: %w", err)
		}
	} else {
		st, err = store.Open(ctx, data)
		if err != nil {
			slog.Warn("error loading database file", "file", h.Name(), "error", err)
			return c.needsFileLocked(ctx)
		}
		if _, err := st.LoadAllData(ctx); err != nil {
			st.Close()
			slog.Warn("error reading rows from database file", "file", h.Name(), "error", err)
			return c.needsFileLocked(ctx)
		}
	}

	c.replaceStoreLocked(st)
	c.setStateLocked(Ready)
	slog.Info("database ready", "file", c.fileName)
	return Ready, nil
}

// needsFileLocked forgets the current handle after it proved unusable.
func (c *Controller) needsFileLocked(ctx context.Context) (State, error) {
	c.fileName = ""
	c.setStateLocked(NeedsFile)
	if err := c.files.ClearHandle(ctx); err != nil {
		return NeedsFile, fmt.Errorf("init: %w", err)
	}
	return NeedsFile, nil
}

// CreateNewDatabaseFile asks for a save location and starts a fresh database
// there, persisting it immediately. Without force it refuses while Ready.
// Returns false with a nil error when the user cancels the picker.
func (c *Controller) CreateNewDatabaseFile(ctx context.Context, force bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.state == Ready {
		return false, ErrAlreadyReady
	}

	h, err := c.files.ShowSavePicker(ctx)
	if err != nil {
		return false, fmt.Errorf("create database: %w", err)
	}
	if h == nil {
		return false, nil
	}

	st, err := store.New(ctx, c.defaults)
	if err != nil {
		return false, fmt.Errorf("create database: %w", err)
	}
	data, err := st.Export(ctx)
	if err != nil {
		st.Close()
		return false, fmt.Errorf("create database: %w", err)
	}
	if err := c.files.WriteFile(ctx, h, data); err != nil {
		st.Close()
		return false, fmt.Errorf("create database: %w", err)
	}
	if err := c.files.SetHandle(ctx, h); err != nil {
		st.Close()
		return false, fmt.Errorf("create database: %w", err)
	}

	c.replaceStoreLocked(st)
	c.fileName = h.Name()
	c.setStateLocked(Ready)
	slog.Info("created database file", "file", h.Name())
	return true, nil
}

// LoadDatabaseFromFile asks for an existing file, makes it current and
// re-runs Init. With force the open database is torn down first. Returns
// false with a nil error when the picker is cancelled or the file turns out
// to be unreadable.
func (c *Controller) LoadDatabaseFromFile(ctx context.Context, force bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.state == Ready {
		return false, ErrAlreadyReady
	}

	h, err := c.files.ShowOpenPicker(ctx)
	if err != nil {
		return false, fmt.Errorf("load database: %w", err)
	}
	if h == nil {
		return false, nil
	}
	if err := c.files.SetHandle(ctx, h); err != nil {
		return false, fmt.Errorf("load database: %w", err)
	}

	c.replaceStoreLocked(nil)
	c.fileName = h.Name()
	c.setStateLocked(Uninitialized)

	st, err := c.initLocked(ctx)
	if err != nil {
		return false, fmt.Errorf("load database: %w", err)
	}
	return st == Ready, nil
}

// SaveDatabaseToFile rewrites the current file with the whole database.
// It is a no-op when no store exists.
func (c *Controller) SaveDatabaseToFile(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	h, err := c.files.GetHandle(ctx)
	if err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	if h == nil {
		return fmt.Errorf("save database: %w", ErrNoFile)
	}
	if err := c.exportTo(ctx, h); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	slog.Info("database saved", "file", h.Name())
	return nil
}

// SaveDatabaseAs writes a copy of the database to a newly picked file. The
// current file stays current. Returns false when there is nothing to save or
// the picker is cancelled.
func (c *Controller) SaveDatabaseAs(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return false, nil
	}
	h, err := c.files.ShowSavePicker(ctx)
	if err != nil {
		return false, fmt.Errorf("save database as: %w", err)
	}
	if h == nil {
		return false, nil
	}
	if err := c.exportTo(ctx, h); err != nil {
		return false, fmt.Errorf("save database as: %w", err)
	}
	slog.Info("database copy saved", "file", h.Name())
	return true, nil
}

func (c *Controller) exportTo(ctx context.Context, h filehandle.Handle) error {
	data, err := c.store.Export(ctx)
	if err != nil {
		return err
	}
	return c.files.WriteFile(ctx, h, data)
}

// Close tears down the store. The controller returns to Uninitialized.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.store != nil {
		err = c.store.Close()
		c.store = nil
	}
	c.fileName = ""
	c.setStateLocked(Uninitialized)
	return err
}

func (c *Controller) replaceStoreLocked(st *store.Store) {
	if c.store != nil && c.store != st {
		if err := c.store.Close(); err != nil {
			slog.Warn("error closing previous store", "error", err)
		}
	}
	c.store = st
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	slog.Debug("database state changed", "from", c.state, "to", s)
	c.state = s
	for _, fn := range c.listeners {
		fn(s)
	}
}
