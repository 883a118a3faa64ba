package model

import (
	"fmt"
	"math"
	"strings"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	StatusPaid   InvoiceStatus = "Paid"
	StatusUnpaid InvoiceStatus = "Unpaid"
)

// ParseInvoiceStatus accepts "paid"/"unpaid" in any letter case.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return StatusPaid, nil
	case "unpaid":
		return StatusUnpaid, nil
	}
	return "", fmt.Errorf("invalid invoice status %q: must be Paid or Unpaid", s)
}

// InvoiceItem is a frozen invoice line. Amount is Quantity*Rate at creation.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Invoice is an issued bill. Totals are computed once when the invoice is
// created and never recomputed; Status is the only mutable field.
type Invoice struct {
	ID             string        `json:"id"`
	CustomerName   string        `json:"customerName"`
	Vehicle        string        `json:"vehicle"`
	VehicleNo      string        `json:"vehicleNo"`
	MobileNo       string        `json:"mobileNo"`
	KM             string        `json:"km"`
	Date           string        `json:"date"`
	Items          []InvoiceItem `json:"items"`
	SubTotal       float64       `json:"subTotal"`
	TaxPercent     float64       `json:"taxPercent"`
	DiscountAmount float64       `json:"discountAmount"`
	Total          float64       `json:"total"`
	Status         InvoiceStatus `json:"status"`
}

// Clone deep-copies the line items.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]InvoiceItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	return out
}

// TaxAmount is the tax portion of the frozen total.
func (inv Invoice) TaxAmount() float64 {
	return inv.SubTotal * inv.TaxPercent / 100
}

// InvoiceLine is a raw line as entered by the user, before amounts are computed.
type InvoiceLine struct {
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Rate        float64 `json:"rate" yaml:"rate"`
}

// Item computes the frozen line for l.
func (l InvoiceLine) Item() InvoiceItem {
	return InvoiceItem{
		Description: l.Description,
		Quantity:    l.Quantity,
		Rate:        l.Rate,
		Amount:      l.Quantity * l.Rate,
	}
}

// InvoiceDraft carries everything needed to issue an invoice except its id.
type InvoiceDraft struct {
	CustomerName   string
	Vehicle        string
	VehicleNo      string
	MobileNo       string
	KM             string
	Date           string
	Lines          []InvoiceLine
	TaxPercent     float64
	DiscountAmount float64
	Status         InvoiceStatus
}

// Validate applies the same required/min(0) rules as the invoice entry form.
func (d InvoiceDraft) Validate() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(d.Date) == "" {
		return fmt.Errorf("date is required")
	}
	if len(d.Lines) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, l := range d.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return fmt.Errorf("line %d: description is required", i+1)
		}
		if l.Quantity < 0 || l.Rate < 0 {
			return fmt.Errorf("line %d: quantity and rate must be non-negative", i+1)
		}
	}
	if d.TaxPercent < 0 {
		return fmt.Errorf("tax percent must be non-negative")
	}
	if d.DiscountAmount < 0 {
		return fmt.Errorf("discount must be non-negative")
	}
	if d.Status != StatusPaid && d.Status != StatusUnpaid {
		return fmt.Errorf("invalid invoice status %q", d.Status)
	}
	return nil
}

// Totals holds the derived money fields of an invoice.
type Totals struct {
	SubTotal float64
	Tax      float64
	Total    float64
}

// ComputeTotals returns subTotal = Σ amount and
// total = subTotal + subTotal*taxPercent/100 - discount.
func ComputeTotals(items []InvoiceItem, taxPercent, discount float64) Totals {
	var sub float64
	for _, it := range items {
		sub += it.Amount
	}
	tax := sub * (taxPercent / 100)
	return Totals{SubTotal: sub, Tax: tax, Total: sub + tax - discount}
}

// Build freezes the draft into an invoice with the given id.
func (d InvoiceDraft) Build(id string) Invoice {
	items := make([]InvoiceItem, len(d.Lines))
	for i, l := range d.Lines {
		items[i] = l.Item()
	}
	t := ComputeTotals(items, d.TaxPercent, d.DiscountAmount)
	return Invoice{
		ID:             id,
		CustomerName:   d.CustomerName,
		Vehicle:        d.Vehicle,
		VehicleNo:      d.VehicleNo,
		MobileNo:       d.MobileNo,
		KM:             d.KM,
		Date:           d.Date,
		Items:          items,
		SubTotal:       t.SubTotal,
		TaxPercent:     d.TaxPercent,
		DiscountAmount: d.DiscountAmount,
		Total:          t.Total,
		Status:         d.Status,
	}
}

// IsWholeNumber reports whether q can decrement integer stock without loss.
func IsWholeNumber(q float64) bool {
	return q == math.Trunc(q) && !math.IsInf(q, 0)
}
