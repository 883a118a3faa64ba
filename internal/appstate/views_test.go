package appstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshit3596/shreejida/internal/model"
)

func seedInvoices(t *testing.T, st *State) {
	t.Helper()
	ctx := context.Background()
	mustAddInvoice(t, st, draft("Ravi Patel", "2024-03-14", line("Tyre", 1, 500)))
	d := draft("Meena Shah", "2024-03-15", line("Tube", 2, 150))
	d.TaxPercent = 10
	d.DiscountAmount = 20
	mustAddInvoice(t, st, d)
	mustAddInvoice(t, st, draft("Kiran", "2024-03-15", line("Service", 1, 300)))
	mustAddInvoice(t, st, draft("Ravi Patel", "2024-02-28", line("Valve", 4, 25)))
	require.NoError(t, st.UpdateInvoiceStatus(ctx, "SJM0000003", model.StatusPaid))
}

func ids(invs []model.Invoice) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.ID
	}
	return out
}

func TestInvoices_NewestFirst(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	assert.Equal(t, []string{"SJM0000004", "SJM0000003", "SJM0000002", "SJM0000001"}, ids(st.Invoices()))
}

func TestSearchInvoices(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	assert.Equal(t, []string{"SJM0000004", "SJM0000001"}, ids(st.SearchInvoices("ravi")))
	assert.Equal(t, []string{"SJM0000002"}, ids(st.SearchInvoices("sjm0000002")))
	assert.Len(t, st.SearchInvoices("  "), 4)
	assert.Empty(t, st.SearchInvoices("nobody"))
}

func TestUnpaid(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	assert.Equal(t, []string{"SJM0000004", "SJM0000002", "SJM0000001"}, ids(st.UnpaidInvoices()))
	// 500 + (300 + 30 - 20) + 100
	assert.InDelta(t, 910.0, st.UnpaidTotal(), 1e-9)
}

func TestLowStock(t *testing.T) {
	st, _ := createTestState(t)
	mustAddItem(t, st, "Tyre", 2, 500, 2)
	mustAddItem(t, st, "Tube", 3, 150, 2)
	mustAddItem(t, st, "Service", model.Infinite, 300, 5)
	mustAddItem(t, st, "Valve", 0, 25, 0)

	var names []string
	for _, it := range st.LowStock() {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Tyre", "Valve"}, names)
}

func TestDailySummary(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	sum := st.DailySummary(testNow)
	assert.Equal(t, "2024-03-15", sum.Day)
	assert.Equal(t, 2, sum.InvoiceCount)
	assert.InDelta(t, 610.0, sum.Sales, 1e-9)

	assert.Zero(t, st.DailySummary(testNow.AddDate(0, 0, 1)).InvoiceCount)
}

func TestReport(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	r := st.Report(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-14", r.From)
	assert.Equal(t, "2024-03-15", r.To)
	assert.Equal(t, 3, r.InvoiceCount)
	assert.Equal(t, []string{"SJM0000003", "SJM0000002", "SJM0000001"}, ids(r.Invoices))
	assert.InDelta(t, 1110.0, r.TotalSales, 1e-9)
	assert.InDelta(t, 30.0, r.TotalTax, 1e-9)
	assert.InDelta(t, 20.0, r.TotalDiscount, 1e-9)
}

func TestReport_SkipsUnparseableDates(t *testing.T) {
	st, _ := createTestState(t)
	mustAddInvoice(t, st, draft("Ravi", "15/03/2024", line("Tyre", 1, 500)))

	r := st.Report(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, r.InvoiceCount)
	assert.NotNil(t, r.Invoices)
}

func TestReportFor(t *testing.T) {
	st, _ := createTestState(t)
	seedInvoices(t, st)

	assert.Equal(t, 2, st.ReportFor(PeriodDaily).InvoiceCount)
	assert.Equal(t, 3, st.ReportFor(PeriodMonthly).InvoiceCount)
	assert.Equal(t, 4, st.ReportFor(PeriodYearly).InvoiceCount)
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2024, time.February, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		period   Period
		from, to string
	}{
		{PeriodDaily, "2024-02-10", "2024-02-10"},
		{PeriodMonthly, "2024-02-01", "2024-02-29"},
		{PeriodYearly, "2024-01-01", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			from, to := tt.period.Range(now)
			assert.Equal(t, tt.from, from.Format(DateLayout))
			assert.Equal(t, tt.to, to.Format(DateLayout))
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)

	_, err = ParsePeriod("weekly")
	assert.Error(t, err)
}
