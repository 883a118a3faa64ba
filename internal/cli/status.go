package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/appstate"
)

// StatusResult is the dashboard view of the open database.
type StatusResult struct {
	State          string               `json:"state"`
	File           string               `json:"file,omitempty"`
	NextInvoice    string               `json:"nextInvoice,omitempty"`
	Invoices       int                  `json:"invoices"`
	UnpaidInvoices int                  `json:"unpaidInvoices"`
	UnpaidTotal    float64              `json:"unpaidTotal"`
	InventoryItems int                  `json:"inventoryItems"`
	LowStock       int                  `json:"lowStock"`
	Users          int                  `json:"users"`
	Today          *appstate.DaySummary `json:"today,omitempty"`
	Unsaved        bool                 `json:"unsaved"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current database file and a summary of its contents",
		Long: `Show which database file is in use and summarize it: invoice and
inventory counts, unpaid totals, low stock, and today's sales.

Examples:
  shreejida status
  shreejida status --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			res := e.status()
			return e.out.Success(res, func(w io.Writer) { writeStatus(w, res) })
		},
	}
}

func (e *env) status() StatusResult {
	res := StatusResult{State: e.session.Controller.State().String()}
	if !e.session.Ready() {
		return res
	}
	st := e.session.State
	today := st.DailySummary(e.clock.Now())
	res.File = e.session.Controller.FileName()
	res.NextInvoice = st.NextInvoiceNumber()
	res.Invoices = len(st.Invoices())
	res.UnpaidInvoices = len(st.UnpaidInvoices())
	res.UnpaidTotal = st.UnpaidTotal()
	res.InventoryItems = len(st.Inventory())
	res.LowStock = len(st.LowStock())
	res.Users = len(st.Users())
	res.Today = &today
	res.Unsaved = e.session.HasUnsavedChanges()
	return res
}

func writeStatus(w io.Writer, s StatusResult) {
	fmt.Fprintf(w, "%-14s %s\n", "State:", s.State)
	if s.Today == nil {
		fmt.Fprintln(w, "No database file selected. Run 'shreejida new' or 'shreejida open <path>'.")
		return
	}
	fmt.Fprintf(w, "%-14s %s\n", "File:", s.File)
	fmt.Fprintf(w, "%-14s %s\n", "Next invoice:", s.NextInvoice)
	fmt.Fprintf(w, "%-14s %d (%d unpaid, %s due)\n", "Invoices:", s.Invoices, s.UnpaidInvoices, Money(s.UnpaidTotal))
	fmt.Fprintf(w, "%-14s %d (%d low on stock)\n", "Inventory:", s.InventoryItems, s.LowStock)
	fmt.Fprintf(w, "%-14s %d\n", "Users:", s.Users)
	fmt.Fprintf(w, "%-14s %d invoices, %s sales\n", "Today:", s.Today.InvoiceCount, Money(s.Today.Sales))
	if s.Unsaved {
		fmt.Fprintln(w, "There are unsaved changes.")
	}
}
