package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/model"
)

// csvHeader is the column layout of exported sales reports.
var csvHeader = []string{
	"Invoice #", "Customer Name", "Date", "Status",
	"Subtotal", "Tax %", "Tax Amount", "Discount", "Total",
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		period string
		from   string
		to     string
		csvOut bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize sales over a period",
		Long: `Summarize the invoices dated within a period: how many, total sales,
total tax and total discount.

--period picks today, this month or this year. --from and --to (YYYY-MM-DD,
both inclusive) give a custom range instead; --to defaults to today.
--csv writes the matching invoices as CSV rather than the summary.

Examples:
  shreejida report
  shreejida report --period monthly
  shreejida report --from 2025-04-01 --to 2026-03-31 --csv > sales.csv`,
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

			r, err := buildReport(e.session.State, e.clock.Now(), period, from, to)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid report range", err)
			}
			if csvOut {
				if err := writeReportCSV(cmd.OutOrStdout(), r.Invoices); err != nil {
					return WrapExitError(ExitFailure, "failed to write CSV", err)
				}
				return nil
			}
			return e.out.Success(r, func(w io.Writer) { writeReport(w, r) })
		},
	}

	cmd.Flags().StringVar(&period, "period", "daily", "daily, monthly or yearly")
	cmd.Flags().StringVar(&from, "from", "", "first day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day of a custom range (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "write the invoices as CSV")
	return cmd
}

// buildReport runs the named period, or the custom range when from or to
// is given.
func buildReport(st *appstate.State, now time.Time, period, from, to string) (appstate.Report, error) {
	if from == "" && to == "" {
		p, err := appstate.ParsePeriod(period)
		if err != nil {
			return appstate.Report{}, err
		}
		lo, hi := p.Range(now)
		return st.Report(lo, hi), nil
	}
	if from == "" {
		return appstate.Report{}, fmt.Errorf("--to needs --from")
	}
	lo, err := time.Parse(appstate.DateLayout, from)
	if err != nil {
		return appstate.Report{}, fmt.Errorf("--from: %w", err)
	}
	hi := now
	if to != "" {
		if hi, err = time.Parse(appstate.DateLayout, to); err != nil {
			return appstate.Report{}, fmt.Errorf("--to: %w", err)
		}
	}
	if hi.Format(appstate.DateLayout) < lo.Format(appstate.DateLayout) {
		return appstate.Report{}, fmt.Errorf("range ends (%s) before it starts (%s)",
			hi.Format(appstate.DateLayout), from)
	}
	return st.Report(lo, hi), nil
}

func writeReportCSV(w io.Writer, invoices []model.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, inv := range invoices {
		date := inv.Date
		if d, err := time.Parse(appstate.DateLayout, inv.Date); err == nil {
			date = d.Format("02-01-2006")
		}
		row := []string{
			inv.ID,
			inv.CustomerName,
			date,
			string(inv.Status),
			fixed2(inv.SubTotal),
			strconv.FormatFloat(inv.TaxPercent, 'f', -1, 64),
			fixed2(inv.TaxAmount()),
			fixed2(inv.DiscountAmount),
			fixed2(inv.Total),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
