package waterfall

import (
	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// BaselineFromReference repeats the bank repayment scheduled for the
// reference period in every period from `from` onward. Earlier periods get
// no baseline.
func BaselineFromReference(bank map[model.Period]decimal.Decimal, reference, from model.Period, periods []model.Period) (map[model.Period]decimal.Decimal, error) {
	fromYear, err := period.StartYear(from)
	if err != nil {
		return nil, err
	}
	amount := bank[reference]
	out := make(map[model.Period]decimal.Decimal, len(periods))
	for _, p := range periods {
		year, err := period.StartYear(p)
		if err != nil {
			return nil, err
		}
		if year >= fromYear {
			out[p] = amount
		}
	}
	return out, nil
}

// Totals aggregates a run for reporting.
type Totals struct {
	OperatingCashFlow decimal.Decimal
	DebtService       decimal.Decimal
	Repayment         decimal.Decimal
	Borrowing         decimal.Decimal
	Unabsorbed        decimal.Decimal
	Alerts            int
	Simulated         int
	FinalCash         decimal.Decimal
	FinalBankDebt     decimal.Decimal
}

// Summarize totals the simulated periods of a run.
func Summarize(states []model.WaterfallState) Totals {
	var t Totals
	for _, st := range states {
		if !st.Simulated {
			continue
		}
		t.Simulated++
		t.OperatingCashFlow = t.OperatingCashFlow.Add(st.OperatingCashFlow)
		t.DebtService = t.DebtService.Add(st.DebtService)
		t.Repayment = t.Repayment.Add(st.AdjustedRepayment)
		t.Borrowing = t.Borrowing.Add(st.NewBorrowing)
		t.Unabsorbed = t.Unabsorbed.Add(st.UnabsorbedRepayment)
		if st.Alert {
			t.Alerts++
		}
		t.FinalCash = st.EndingCash
		t.FinalBankDebt = st.EndingBankDebt
	}
	return t
}

// Alerts returns the periods whose ending cash fell below the floor.
func Alerts(states []model.WaterfallState) []model.WaterfallState {
	var out []model.WaterfallState
	for _, st := range states {
		if st.Alert {
			out = append(out, st)
		}
	}
	return out
}
