package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/waterfall"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// RenderWaterfall prints one row per period. Bootstrap periods are marked
// with "-" in the alert column.
func RenderWaterfall(w io.Writer, states []model.WaterfallState) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tOCF\tINVEST\tSERVICE\tREPAY\tBORROW\tMIN CASH\tCASH\tBANK DEBT\tALERT\t")
	for _, st := range states {
		alert := ""
		switch {
		case !st.Simulated:
			alert = "-"
		case st.Alert:
			alert = "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			st.Period,
			money(st.OperatingCashFlow),
			money(st.Investment),
			money(st.DebtService),
			money(st.AdjustedRepayment),
			money(st.NewBorrowing),
			money(st.MinimumCash),
			money(st.EndingCash),
			money(st.EndingBankDebt),
			alert,
		)
	}
	return tw.Flush()
}

// RenderSummary prints run totals and the rates used.
func RenderSummary(w io.Writer, t waterfall.Totals, blended, weighted decimal.Decimal) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Simulated periods:\t%d\n", t.Simulated)
	fmt.Fprintf(tw, "Blended rate:\t%s%%\n", blended.Shift(2).StringFixed(2))
	fmt.Fprintf(tw, "Weighted rate:\t%s%%\n", weighted.Shift(2).StringFixed(2))
	fmt.Fprintf(tw, "Operating cash flow:\t%s\n", money(t.OperatingCashFlow))
	fmt.Fprintf(tw, "Debt service:\t%s\n", money(t.DebtService))
	fmt.Fprintf(tw, "Repayment:\t%s\n", money(t.Repayment))
	fmt.Fprintf(tw, "New borrowing:\t%s\n", money(t.Borrowing))
	if t.Unabsorbed.IsPositive() {
		fmt.Fprintf(tw, "Unabsorbed repayment:\t%s\n", money(t.Unabsorbed))
	}
	fmt.Fprintf(tw, "Final cash:\t%s\n", money(t.FinalCash))
	fmt.Fprintf(tw, "Final bank debt:\t%s\n", money(t.FinalBankDebt))
	fmt.Fprintf(tw, "Alerts:\t%d\n", t.Alerts)
	return tw.Flush()
}

// RenderPool prints the consolidated pool by category.
func RenderPool(w io.Writer, c *debtpool.Consolidated) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tINSTRUMENTS\tVALUE\tSCHEDULED\t")
	for _, cat := range model.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n",
			cat, len(c.Normalized(cat)), money(c.CategoryTotal(cat)), money(c.ScheduledTotal(cat)))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%s\t\t\n", len(c.Instruments), money(c.TotalValue()))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, cl := range c.Clipped {
		fmt.Fprintf(w, "clipped %s @ %s: %s\n", cl.InstrumentID, cl.Period, money(cl.Amount))
	}
	return nil
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
