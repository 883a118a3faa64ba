package appstate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darshit3596/shreejida/internal/model"
)

// AddUser persists a new user and mirrors it.
func (s *State) AddUser(ctx context.Context, u model.User) error {
	const op = "add user"
	if strings.TrimSpace(u.Username) == "" {
		return invalid(op, errors.New("username is required"))
	}
	if u.PasswordHash == "" {
		return invalid(op, errors.New("password hash is required"))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.AddUser(ctx, u); err != nil {
		return fmt.Errorf("%s %q: %w", op, u.Username, err)
	}
	s.apply(ChangeUsers, true, func(d *model.AppData) {
		d.Users = append(d.Users, u)
	})
	return nil
}

// UpdateUserPassword replaces a user's stored hash.
func (s *State) UpdateUserPassword(ctx context.Context, username, hash string) error {
	const op = "update password"
	if hash == "" {
		return invalid(op, errors.New("password hash is required"))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.UpdateUserPassword(ctx, username, hash); err != nil {
		return fmt.Errorf("%s %q: %w", op, username, err)
	}
	s.apply(ChangeUsers, true, func(d *model.AppData) {
		for i := range d.Users {
			if d.Users[i].Username == username {
				d.Users[i].PasswordHash = hash
			}
		}
	})
	return nil
}

// DeleteInvoice removes an invoice. Its number is never reissued and stock
// it consumed is not returned.
func (s *State) DeleteInvoice(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	s.apply(ChangeInvoices, true, func(d *model.AppData) {
		kept := make([]model.Invoice, 0, len(d.Invoices))
		for _, inv := range d.Invoices {
			if inv.ID != id {
				kept = append(kept, inv)
			}
		}
		d.Invoices = kept
	})
	return nil
}

// UpdateInvoiceStatus sets an invoice's payment status.
func (s *State) UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error {
	const op = "update invoice status"
	if status != model.StatusPaid && status != model.StatusUnpaid {
		return invalid(op, fmt.Errorf("unknown status %q", status))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.UpdateInvoiceStatus(ctx, id, status); err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	s.apply(ChangeInvoices, true, func(d *model.AppData) {
		for i := range d.Invoices {
			if d.Invoices[i].ID == id {
				d.Invoices[i].Status = status
			}
		}
	})
	return nil
}

// AddInventoryItem assigns item a fresh id, persists it and returns it.
func (s *State) AddInventoryItem(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	const op = "add inventory item"
	if err := item.Validate(); err != nil {
		return model.InventoryItem{}, invalid(op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	item.ID = s.ids.NewID()
	if err := s.backend.AddInventoryItem(ctx, item); err != nil {
		return model.InventoryItem{}, fmt.Errorf("%s %q: %w", op, item.Name, err)
	}
	s.apply(ChangeInventory, true, func(d *model.AppData) {
		d.Inventory = append(d.Inventory, item)
	})
	return item, nil
}

// UpdateInventoryItem replaces the item with the same id.
func (s *State) UpdateInventoryItem(ctx context.Context, item model.InventoryItem) error {
	const op = "update inventory item"
	if err := item.Validate(); err != nil {
		return invalid(op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.UpdateInventoryItem(ctx, item); err != nil {
		return fmt.Errorf("%s %s: %w", op, item.ID, err)
	}
	s.apply(ChangeInventory, true, func(d *model.AppData) {
		if i := indexByID(d.Inventory, item.ID); i >= 0 {
			d.Inventory[i] = item
		}
	})
	return nil
}

// DeleteInventoryItem removes an item. Invoices that sold it are unchanged.
func (s *State) DeleteInventoryItem(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.DeleteInventoryItem(ctx, id); err != nil {
		return fmt.Errorf("delete inventory item %s: %w", id, err)
	}
	s.apply(ChangeInventory, true, func(d *model.AppData) {
		kept := make([]model.InventoryItem, 0, len(d.Inventory))
		for _, it := range d.Inventory {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		d.Inventory = kept
	})
	return nil
}

// UpdateSettings stores the editable shop settings. The invoice counter is
// owned by AddInvoice, so the current value is kept whatever settings holds.
// Unknown keys are kept too unless settings carries its own Extra.
func (s *State) UpdateSettings(ctx context.Context, settings model.Settings) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	current := s.data.Settings.Clone()
	s.mu.RUnlock()

	next := settings.Clone()
	next.InvoiceCounter = current.InvoiceCounter
	if next.Extra == nil {
		next.Extra = current.Extra
	}

	if err := s.backend.UpdateSettings(ctx, next); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.apply(ChangeSettings, true, func(d *model.AppData) {
		d.Settings = next
	})
	return nil
}
