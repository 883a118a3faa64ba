package appstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darshit3596/shreejida/internal/model"
)

// Backend persists row changes. Implementations must apply each call fully
// or not at all.
type Backend interface {
	LoadAllData(ctx context.Context) (model.AppData, error)
	AddUser(ctx context.Context, u model.User) error
	UpdateUserPassword(ctx context.Context, username, hash string) error
	CommitInvoice(ctx context.Context, inv model.Invoice, touched []model.InventoryItem, settings model.Settings) error
	DeleteInvoice(ctx context.Context, id string) error
	UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error
	AddInventoryItem(ctx context.Context, it model.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, it model.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id string) error
	UpdateSettings(ctx context.Context, settings model.Settings) error
}

// IDGenerator issues inventory item ids.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator issues time-sortable UUIDv7 ids, so inventory ids sort by
// creation time like the rows they name.
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock supplies "now" for period reports.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ChangeKind tells subscribers which part of the state moved.
type ChangeKind string

const (
	ChangeHydrated  ChangeKind = "hydrated"
	ChangeUsers     ChangeKind = "users"
	ChangeInvoices  ChangeKind = "invoices"
	ChangeInventory ChangeKind = "inventory"
	ChangeSettings  ChangeKind = "settings"
	ChangeSaved     ChangeKind = "saved"
)

// Listener is called after a change is applied. Listeners may read the
// state but must not mutate it.
type Listener func(ChangeKind)

// Option configures a State.
type Option func(*State)

// WithIDGenerator replaces the UUIDv7 inventory id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *State) { s.ids = g }
}

// WithClock replaces the wall clock used by period reports.
func WithClock(c Clock) Option {
	return func(s *State) { s.clock = c }
}

// State is the mirror. It is safe for concurrent use; mutations are
// serialized so that each persist and its mirror update happen together.
type State struct {
	// writeMu serializes mutations end to end.
	writeMu sync.Mutex

	mu      sync.RWMutex
	backend Backend
	ids     IDGenerator
	clock   Clock
	data    model.AppData
	dirty   bool
	subs    map[int]Listener
	nextSub int
}

// New returns an empty state over backend. Call Hydrate once the backend
// has a database loaded.
func New(backend Backend, opts ...Option) *State {
	s := &State{
		backend: backend,
		ids:     UUIDv7Generator{},
		clock:   systemClock{},
		data:    emptyData(),
		subs:    make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func emptyData() model.AppData {
	return model.AppData{
		Users:     []model.User{},
		Invoices:  []model.Invoice{},
		Inventory: []model.InventoryItem{},
		Settings:  model.DefaultSettings(),
	}
}

// Hydrate replaces the mirror with everything the backend holds and clears
// the dirty flag.
func (s *State) Hydrate(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := s.backend.LoadAllData(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	if highest, behind := counterBehind(data); behind {
		slog.Warn("invoice counter is behind issued invoices, the next invoice id will collide",
			"counter", data.Settings.InvoiceCounter, "highest", highest)
	}
	s.apply(ChangeHydrated, false, func(d *model.AppData) { *d = data })
	return nil
}

// counterBehind reports the highest issued invoice number and whether the
// counter would hand it out again. Ids not in the issued format are ignored.
func counterBehind(d model.AppData) (int64, bool) {
	var highest int64
	for _, inv := range d.Invoices {
		if n, err := model.InvoiceNumber(inv.ID); err == nil && n > highest {
			highest = n
		}
	}
	return highest, highest > 0 && d.Settings.InvoiceCounter <= highest
}

// Reset drops the mirror back to an empty state, for when no database is
// loaded any more.
func (s *State) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.apply(ChangeHydrated, false, func(d *model.AppData) { *d = emptyData() })
}

// Dirty reports whether the mirror has changes not yet saved to the file.
func (s *State) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (s *State) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	listeners := s.listeners()
	s.mu.Unlock()
	notify(listeners, ChangeSaved)
}

// Snapshot returns a deep copy of the whole mirror.
func (s *State) Snapshot() model.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *State) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// apply mutates the mirror under the lock, sets the dirty flag to dirty and
// then notifies subscribers.
func (s *State) apply(kind ChangeKind, dirty bool, fn func(*model.AppData)) {
	s.mu.Lock()
	fn(&s.data)
	s.dirty = dirty
	listeners := s.listeners()
	s.mu.Unlock()
	notify(listeners, kind)
}

func (s *State) listeners() []Listener {
	out := make([]Listener, 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []Listener, kind ChangeKind) {
	for _, fn := range listeners {
		fn(kind)
	}
}
