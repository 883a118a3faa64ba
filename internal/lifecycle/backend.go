package lifecycle

import (
	"context"

	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
)

// withStore runs fn against the store while holding the lock, so no row
// operation can interleave with a load, create or save.
func (c *Controller) withStore(fn func(*store.Store) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready || c.store == nil {
		return ErrNotReady
	}
	return fn(c.store)
}

func (c *Controller) LoadAllData(ctx context.Context) (model.AppData, error) {
	var data model.AppData
	err := c.withStore(func(s *store.Store) error {
		var err error
		data, err = s.LoadAllData(ctx)
		return err
	})
	return data, err
}

func (c *Controller) AddUser(ctx context.Context, u model.User) error {
	return c.withStore(func(s *store.Store) error { return s.AddUser(ctx, u) })
}

func (c *Controller) UpdateUserPassword(ctx context.Context, username, hash string) error {
	return c.withStore(func(s *store.Store) error { return s.UpdateUserPassword(ctx, username, hash) })
}

func (c *Controller) CommitInvoice(ctx context.Context, inv model.Invoice, touched []model.InventoryItem, settings model.Settings) error {
	return c.withStore(func(s *store.Store) error { return s.CommitInvoice(ctx, inv, touched, settings) })
}

func (c *Controller) DeleteInvoice(ctx context.Context, id string) error {
	return c.withStore(func(s *store.Store) error { return s.DeleteInvoice(ctx, id) })
}

func (c *Controller) UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error {
	return c.withStore(func(s *store.Store) error { return s.UpdateInvoiceStatus(ctx, id, status) })
}

func (c *Controller) AddInventoryItem(ctx context.Context, it model.InventoryItem) error {
	return c.withStore(func(s *store.Store) error { return s.AddInventoryItem(ctx, it) })
}

func (c *Controller) UpdateInventoryItem(ctx context.Context, it model.InventoryItem) error {
	return c.withStore(func(s *store.Store) error { return s.UpdateInventoryItem(ctx, it) })
}

func (c *Controller) DeleteInventoryItem(ctx context.Context, id string) error {
	return c.withStore(func(s *store.Store) error { return s.DeleteInventoryItem(ctx, id) })
}

func (c *Controller) UpdateSettings(ctx context.Context, settings model.Settings) error {
	return c.withStore(func(s *store.Store) error { return s.UpdateSettings(ctx, settings) })
}

// CountRows reports the row count of one table of the open database.
func (c *Controller) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	err := c.withStore(func(s *store.Store) error {
		var err error
		n, err = s.CountRows(ctx, table)
		return err
	})
	return n, err
}
