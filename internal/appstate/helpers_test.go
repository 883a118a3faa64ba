package appstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
	"github.com/darshit3596/shreejida/internal/testutil"
)

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

// createTestState hydrates a State over a fresh in-memory store.
func createTestState(t *testing.T) (*State, *store.Store) {
	t.Helper()
	ctx := context.Background()
	db, err := store.New(ctx, model.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := New(db,
		WithIDGenerator(testutil.NewSequenceIDs("item")),
		WithClock(testutil.FixedClock{T: testNow}),
	)
	require.NoError(t, st.Hydrate(ctx))
	return st, db
}

func draft(customer, date string, lines ...model.InvoiceLine) model.InvoiceDraft {
	return model.InvoiceDraft{
		CustomerName: customer,
		Date:         date,
		Lines:        lines,
		Status:       model.StatusUnpaid,
	}
}

func line(desc string, qty, rate float64) model.InvoiceLine {
	return model.InvoiceLine{Description: desc, Quantity: qty, Rate: rate}
}

func mustAddItem(t *testing.T, st *State, name string, qty int64, price float64, minStock int64) model.InventoryItem {
	t.Helper()
	it, err := st.AddInventoryItem(context.Background(), model.InventoryItem{
		Name: name, Quantity: qty, Price: price, MinStock: minStock,
	})
	require.NoError(t, err)
	return it
}

func mustAddInvoice(t *testing.T, st *State, d model.InvoiceDraft) model.Invoice {
	t.Helper()
	inv, err := st.AddInvoice(context.Background(), d)
	require.NoError(t, err)
	return inv
}

// reloaded exports db and loads the bytes into a fresh store.
func reloaded(t *testing.T, db *store.Store) model.AppData {
	t.Helper()
	ctx := context.Background()
	data, err := db.Export(ctx)
	require.NoError(t, err)
	again, err := store.Open(ctx, data)
	require.NoError(t, err)
	defer again.Close()
	out, err := again.LoadAllData(ctx)
	require.NoError(t, err)
	return out
}

var errInjected = errors.New("injected failure")

// failingBackend fails the selected operations and forwards the rest.
type failingBackend struct {
	*store.Store
	failCommit   bool
	failSettings bool
	failDelete   bool
}

func (f *failingBackend) CommitInvoice(ctx context.Context, inv model.Invoice, touched []model.InventoryItem, s model.Settings) error {
	if f.failCommit {
		return errInjected
	}
	return f.Store.CommitInvoice(ctx, inv, touched, s)
}

func (f *failingBackend) UpdateSettings(ctx context.Context, s model.Settings) error {
	if f.failSettings {
		return errInjected
	}
	return f.Store.UpdateSettings(ctx, s)
}

func (f *failingBackend) DeleteInvoice(ctx context.Context, id string) error {
	if f.failDelete {
		return errInjected
	}
	return f.Store.DeleteInvoice(ctx, id)
}
