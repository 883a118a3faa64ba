package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/model"
)

// clip shortens s to n runes so fixed-width columns stay aligned.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeInvoiceTable(w io.Writer, invoices []model.Invoice) {
	if len(invoices) == 0 {
		fmt.Fprintln(w, "No invoices.")
		return
	}
	fmt.Fprintf(w, "%-10s  %-10s  %-6s  %-20s  %12s\n", "ID", "DATE", "STATUS", "CUSTOMER", "TOTAL")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%-10s  %-10s  %-6s  %-20s  %12s\n",
			inv.ID, inv.Date, inv.Status, clip(inv.CustomerName, 20), Money(inv.Total))
	}
}

func writeInvoice(w io.Writer, inv model.Invoice, s model.Settings) {
	fmt.Fprintln(w, s.ShopName)
	if s.TagLine != "" {
		fmt.Fprintln(w, s.TagLine)
	}
	if s.Address != "" {
		fmt.Fprintln(w, s.Address)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Invoice:   %s\n", inv.ID)
	fmt.Fprintf(w, "Date:      %s\n", inv.Date)
	fmt.Fprintf(w, "Customer:  %s\n", inv.CustomerName)
	if inv.Vehicle != "" || inv.VehicleNo != "" {
		fmt.Fprintf(w, "Vehicle:   %s\n", strings.TrimSpace(inv.Vehicle+" "+inv.VehicleNo))
	}
	if inv.MobileNo != "" {
		fmt.Fprintf(w, "Mobile:    %s\n", inv.MobileNo)
	}
	if inv.KM != "" {
		fmt.Fprintf(w, "KM:        %s\n", inv.KM)
	}
	fmt.Fprintf(w, "Status:    %s\n", inv.Status)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-3s  %-24s  %8s  %12s  %12s\n", "#", "DESCRIPTION", "QTY", "RATE", "AMOUNT")
	for i, it := range inv.Items {
		fmt.Fprintf(w, "%-3d  %-24s  %8s  %12s  %12s\n",
			i+1, clip(it.Description, 24), strconv.FormatFloat(it.Quantity, 'f', -1, 64), Money(it.Rate), Money(it.Amount))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-14s %12s\n", "Sub total:", Money(inv.SubTotal))
	if inv.TaxPercent != 0 {
		fmt.Fprintf(w, "%-14s %12s\n", fmt.Sprintf("Tax (%s%%):", strconv.FormatFloat(inv.TaxPercent, 'f', -1, 64)), Money(inv.TaxAmount()))
	}
	if inv.DiscountAmount != 0 {
		fmt.Fprintf(w, "%-14s %12s\n", "Discount:", Money(-inv.DiscountAmount))
	}
	fmt.Fprintf(w, "%-14s %12s\n", "Total:", Money(inv.Total))

	var terms []string
	for _, t := range []string{s.Term1, s.Term2, s.Term3} {
		if t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Terms:")
		for _, t := range terms {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
	if s.Signatory != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "For %s\n", s.Signatory)
	}
}

func writeInventoryTable(w io.Writer, items []model.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No inventory items.")
		return
	}
	fmt.Fprintf(w, "%-24s  %9s  %12s  %5s\n", "NAME", "QTY", "PRICE", "MIN")
	for _, it := range items {
		flag := ""
		if it.IsLowStock() {
			flag = "  low"
		}
		fmt.Fprintf(w, "%-24s  %9s  %12s  %5d%s\n",
			clip(it.Name, 24), Quantity(it.Quantity), Money(it.Price), it.MinStock, flag)
	}
}

func writeReport(w io.Writer, r appstate.Report) {
	fmt.Fprintf(w, "Report %s to %s\n", r.From, r.To)
	fmt.Fprintf(w, "%-16s %12d\n", "Invoices:", r.InvoiceCount)
	fmt.Fprintf(w, "%-16s %12s\n", "Total sales:", Money(r.TotalSales))
	fmt.Fprintf(w, "%-16s %12s\n", "Total tax:", Money(r.TotalTax))
	fmt.Fprintf(w, "%-16s %12s\n", "Total discount:", Money(r.TotalDiscount))
	if r.InvoiceCount > 0 {
		fmt.Fprintln(w)
		writeInvoiceTable(w, r.Invoices)
	}
}

func writeSettings(w io.Writer, s model.Settings) {
	fmt.Fprintf(w, "%-13s %s\n", "Shop name:", s.ShopName)
	fmt.Fprintf(w, "%-13s %s\n", "Tag line:", s.TagLine)
	fmt.Fprintf(w, "%-13s %s\n", "Address:", s.Address)
	fmt.Fprintf(w, "%-13s %s\n", "Signatory:", s.Signatory)
	fmt.Fprintf(w, "%-13s %s\n", "Term 1:", s.Term1)
	fmt.Fprintf(w, "%-13s %s\n", "Term 2:", s.Term2)
	fmt.Fprintf(w, "%-13s %s\n", "Term 3:", s.Term3)
	fmt.Fprintf(w, "%-13s %s\n", "Next invoice:", s.NextInvoiceID())
}
