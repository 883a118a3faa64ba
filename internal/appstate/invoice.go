package appstate

import (
	"context"
	"fmt"

	"github.com/darshit3596/shreejida/internal/model"
)

// AddInvoice issues draft as the next invoice.
//
// The invoice takes its id from the current counter. Each line whose
// description exactly names a tracked inventory item takes its quantity off
// that item; untracked (infinite) items are left alone and stock may go
// negative. Several lines naming the same item add up. The invoice, the
// touched items and the incremented counter are persisted together in one
// commit, and only then copied into the mirror.
func (s *State) AddInvoice(ctx context.Context, draft model.InvoiceDraft) (model.Invoice, error) {
	const op = "add invoice"
	if err := draft.Validate(); err != nil {
		return model.Invoice{}, invalid(op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	settings := s.data.Settings.Clone()
	inventory := make([]model.InventoryItem, len(s.data.Inventory))
	copy(inventory, s.data.Inventory)
	s.mu.RUnlock()

	inv := draft.Build(settings.NextInvoiceID())

	touched, err := decrementStock(inventory, draft.Lines)
	if err != nil {
		return model.Invoice{}, invalid(op, err)
	}

	next := settings
	next.InvoiceCounter++

	if err := s.backend.CommitInvoice(ctx, inv, touched, next); err != nil {
		return model.Invoice{}, fmt.Errorf("%s %s: %w", op, inv.ID, err)
	}

	s.apply(ChangeInvoices, true, func(d *model.AppData) {
		d.Invoices = append(d.Invoices, inv.Clone())
		for _, it := range touched {
			if i := indexByID(d.Inventory, it.ID); i >= 0 {
				d.Inventory[i] = it
			}
		}
		d.Settings = next
	})
	return inv.Clone(), nil
}

// decrementStock applies lines to a copy of inventory and returns the tracked
// items that changed, in order of first mention.
func decrementStock(inventory []model.InventoryItem, lines []model.InvoiceLine) ([]model.InventoryItem, error) {
	var order []int
	seen := make(map[int]bool)
	for n, l := range lines {
		i := indexByName(inventory, l.Description)
		if i < 0 || inventory[i].IsInfinite() {
			continue
		}
		if !model.IsWholeNumber(l.Quantity) {
			return nil, fmt.Errorf("line %d: quantity %v of stocked item %q must be a whole number", n+1, l.Quantity, l.Description)
		}
		inventory[i].Quantity -= int64(l.Quantity)
		if !seen[i] {
			seen[i] = true
			order = append(order, i)
		}
	}

	touched := make([]model.InventoryItem, 0, len(order))
	for _, i := range order {
		touched = append(touched, inventory[i])
	}
	return touched, nil
}
