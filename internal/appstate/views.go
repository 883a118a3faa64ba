package appstate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/darshit3596/shreejida/internal/model"
)

// DateLayout is the stored format of invoice dates.
const DateLayout = "2006-01-02"

// Invoices returns all invoices, newest id first.
func (s *State) Invoices() []model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedInvoices(s.data.Invoices, nil)
}

// InvoiceByID returns the invoice with the given id.
func (s *State) InvoiceByID(id string) (model.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.data.Invoices {
		if inv.ID == id {
			return inv.Clone(), true
		}
	}
	return model.Invoice{}, false
}

// SearchInvoices matches term case-insensitively against the customer name
// and the invoice id. An empty term matches everything.
func (s *State) SearchInvoices(term string) []model.Invoice {
	term = strings.ToLower(strings.TrimSpace(term))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if term == "" {
		return sortedInvoices(s.data.Invoices, nil)
	}
	return sortedInvoices(s.data.Invoices, func(inv model.Invoice) bool {
		return strings.Contains(strings.ToLower(inv.CustomerName), term) ||
			strings.Contains(strings.ToLower(inv.ID), term)
	})
}

// UnpaidInvoices returns the invoices still awaiting payment, newest first.
func (s *State) UnpaidInvoices() []model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedInvoices(s.data.Invoices, func(inv model.Invoice) bool {
		return inv.Status == model.StatusUnpaid
	})
}

// UnpaidTotal is the sum of all unpaid invoice totals.
func (s *State) UnpaidTotal() float64 {
	var total float64
	for _, inv := range s.UnpaidInvoices() {
		total += inv.Total
	}
	return total
}

// sortedInvoices copies the invoices matching keep, sorted by id descending.
// Ids are zero-padded so string order is issue order.
func sortedInvoices(all []model.Invoice, keep func(model.Invoice) bool) []model.Invoice {
	out := make([]model.Invoice, 0, len(all))
	for _, inv := range all {
		if keep == nil || keep(inv) {
			out = append(out, inv.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Inventory returns every item in insertion order.
func (s *State) Inventory() []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.InventoryItem, len(s.data.Inventory))
	copy(out, s.data.Inventory)
	return out
}

// InventoryByName returns the first item whose name equals name exactly.
// This is the same lookup invoice lines use to find stock.
func (s *State) InventoryByName(name string) (model.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexByName(s.data.Inventory, name); i >= 0 {
		return s.data.Inventory[i], true
	}
	return model.InventoryItem{}, false
}

// LowStock returns the tracked items at or below their alert threshold.
func (s *State) LowStock() []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.InventoryItem{}
	for _, it := range s.data.Inventory {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	return out
}

// Settings returns the shop settings.
func (s *State) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings.Clone()
}

// NextInvoiceNumber is the id the next invoice will be issued with.
func (s *State) NextInvoiceNumber() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings.NextInvoiceID()
}

// Users returns every registered user.
func (s *State) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.data.Users))
	copy(out, s.data.Users)
	return out
}

// UserByName returns the user with the given name.
func (s *State) UserByName(username string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if u.Username == username {
			return u, true
		}
	}
	return model.User{}, false
}

// DaySummary is the dashboard tally for one calendar day.
type DaySummary struct {
	Day          string  `json:"day"`
	InvoiceCount int     `json:"invoiceCount"`
	Sales        float64 `json:"sales"`
}

// DailySummary tallies the invoices dated on day.
func (s *State) DailySummary(day time.Time) DaySummary {
	key := day.Format(DateLayout)
	sum := DaySummary{Day: key}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.data.Invoices {
		if strings.HasPrefix(inv.Date, key) {
			sum.InvoiceCount++
			sum.Sales += inv.Total
		}
	}
	return sum
}

// Period names a report range relative to today.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod accepts daily, monthly or yearly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return "", fmt.Errorf("invalid report period %q: must be daily, monthly or yearly", s)
}

// Range returns the first and last calendar day of p around now.
func (p Period) Range(now time.Time) (from, to time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	switch p {
	case PeriodMonthly:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, -1)
	case PeriodYearly:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		to = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	default:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		to = from
	}
	return from, to
}

// Report summarizes invoices dated within a range of days.
type Report struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	Invoices      []model.Invoice `json:"invoices"`
	InvoiceCount  int             `json:"invoiceCount"`
	TotalSales    float64         `json:"totalSales"`
	TotalTax      float64         `json:"totalTax"`
	TotalDiscount float64         `json:"totalDiscount"`
}

// Report collects the invoices dated from..to, both days inclusive. Invoices
// whose date does not parse are left out.
func (s *State) Report(from, to time.Time) Report {
	lo, hi := from.Format(DateLayout), to.Format(DateLayout)
	r := Report{From: lo, To: hi}

	s.mu.RLock()
	r.Invoices = sortedInvoices(s.data.Invoices, func(inv model.Invoice) bool {
		day, err := time.Parse(DateLayout, inv.Date)
		if err != nil {
			return false
		}
		key := day.Format(DateLayout)
		return key >= lo && key <= hi
	})
	s.mu.RUnlock()

	for _, inv := range r.Invoices {
		r.TotalSales += inv.Total
		r.TotalTax += inv.TaxAmount()
		r.TotalDiscount += inv.DiscountAmount
	}
	r.InvoiceCount = len(r.Invoices)
	return r
}

// ReportFor runs Report over a named period ending around the state's clock.
func (s *State) ReportFor(p Period) Report {
	from, to := p.Range(s.clock.Now())
	return s.Report(from, to)
}

func indexByName(items []model.InventoryItem, name string) int {
	for i, it := range items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

func indexByID(items []model.InventoryItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
