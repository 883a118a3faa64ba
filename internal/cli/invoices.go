package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
)

// NewInvoicesCommand creates the invoices command.
func NewInvoicesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		search string
		unpaid bool
	)

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices, newest first",
		Long: `List the invoices in the current database, newest first.

--search matches the invoice number or the customer name, ignoring case.
--unpaid keeps only invoices that are still unpaid.

Examples:
  shreejida invoices
  shreejida invoices --search patel
  shreejida invoices --unpaid --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireReady(); err != nil {
				return err
			}

			st := e.session.State
			var list []model.Invoice
			if search != "" {
				list = st.SearchInvoices(search)
			} else {
				list = st.Invoices()
			}
			if unpaid {
				list = keepUnpaid(list)
			}
			return e.out.Success(list, func(w io.Writer) { writeInvoiceTable(w, list) })
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "match invoice number or customer name")
	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "only unpaid invoices")
	return cmd
}

func keepUnpaid(list []model.Invoice) []model.Invoice {
	out := list[:0]
	for _, inv := range list {
		if inv.Status == model.StatusUnpaid {
			out = append(out, inv)
		}
	}
	return out
}

// NewInvoiceCommand creates the invoice command.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invoice <id>",
		Short: "Show one invoice as it would be printed",
		Long: `Show an invoice with the shop header, its line items, totals and terms.

Examples:
  shreejida invoice SJM0000012`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireReady(); err != nil {
				return err
			}

			inv, ok := e.session.State.InvoiceByID(args[0])
			if !ok {
				return WrapExitError(ExitFailure, fmt.Sprintf("invoice %s", args[0]), store.ErrNotFound)
			}
			settings := e.session.State.Settings()
			return e.out.Success(inv, func(w io.Writer) { writeInvoice(w, inv, settings) })
		},
	}
}
