package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Infinite is the quantity sentinel for items whose stock is not tracked.
// Infinite items are never decremented and never reported as low stock.
const Infinite int64 = -1

// InvoicePrefix is prepended to the zero-padded invoice counter.
const InvoicePrefix = "SJM"

const invoiceDigits = 7

// User is a registered login. PasswordHash is a hex-encoded one-way digest.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// InventoryItem is a stocked product or service.
type InventoryItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	MinStock int64   `json:"minStock"`
}

// IsInfinite reports whether the item's stock is untracked.
func (i InventoryItem) IsInfinite() bool {
	return i.Quantity == Infinite
}

// IsLowStock reports whether a tracked item has fallen to its alert threshold.
func (i InventoryItem) IsLowStock() bool {
	return !i.IsInfinite() && i.Quantity <= i.MinStock
}

// Validate checks the non-negativity constraints of an inventory record.
func (i InventoryItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if i.Quantity < Infinite {
		return fmt.Errorf("quantity must be non-negative or %d for untracked stock", Infinite)
	}
	if i.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	if i.MinStock < 0 {
		return fmt.Errorf("minStock must be non-negative")
	}
	return nil
}

// FormatInvoiceID renders the human-readable id issued for counter value n.
func FormatInvoiceID(n int64) string {
	return fmt.Sprintf("%s%0*d", InvoicePrefix, invoiceDigits, n)
}

// InvoiceNumber parses the numeric suffix of an id produced by FormatInvoiceID.
func InvoiceNumber(id string) (int64, error) {
	digits, ok := strings.CutPrefix(id, InvoicePrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid invoice id %q", id)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid invoice id %q", id)
	}
	return n, nil
}

// AppData is the aggregate root persisted in the backing file.
type AppData struct {
	Users     []User          `json:"users"`
	Invoices  []Invoice       `json:"invoices"`
	Inventory []InventoryItem `json:"inventory"`
	Settings  Settings        `json:"settings"`
}

// Clone returns a deep copy so that callers can never alias cached state.
func (d AppData) Clone() AppData {
	out := AppData{
		Users:     make([]User, len(d.Users)),
		Invoices:  make([]Invoice, len(d.Invoices)),
		Inventory: make([]InventoryItem, len(d.Inventory)),
		Settings:  d.Settings.Clone(),
	}
	copy(out.Users, d.Users)
	copy(out.Inventory, d.Inventory)
	for i, inv := range d.Invoices {
		out.Invoices[i] = inv.Clone()
	}
	return out
}
