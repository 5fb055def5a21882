// Package waterfall simulates the period-by-period cash/debt decision: sweep
// surplus cash into bank repayment, or borrow to restore the cash floor.
package waterfall

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/debtservice"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// Inputs are the per-period figures the engine folds over. Missing map
// entries read as zero.
type Inputs struct {
	Periods []model.Period
	// Bootstrap is the number of leading periods that are not simulated.
	Bootstrap int

	Revenue                map[model.Period]decimal.Decimal
	AgriculturalCost       map[model.Period]decimal.Decimal
	NonAgriculturalExpense map[model.Period]decimal.Decimal
	Investment             map[model.Period]decimal.Decimal
	BaselineRepayment      map[model.Period]decimal.Decimal

	OpeningCash     decimal.Decimal
	OpeningBankDebt decimal.Decimal
}

// accumulator is the state carried from one period to the next.
type accumulator struct {
	cash     decimal.Decimal
	bankDebt decimal.Decimal
}

// Validate fails fast on every condition that would otherwise surface
// partway through a run.
func Validate(in Inputs, policy model.CashPolicy) error {
	_, err := validate(in, policy)
	return err
}

func validate(in Inputs, policy model.CashPolicy) (*period.Index, error) {
	idx, err := period.NewIndex(in.Periods)
	if err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if in.Bootstrap < 0 || in.Bootstrap > len(in.Periods) {
		return nil, fmt.Errorf("bootstrap count %d outside horizon of %d periods", in.Bootstrap, len(in.Periods))
	}
	series := []struct {
		name string
		m    map[model.Period]decimal.Decimal
	}{
		{"revenue", in.Revenue},
		{"agricultural cost", in.AgriculturalCost},
		{"non-agricultural expense", in.NonAgriculturalExpense},
		{"investment", in.Investment},
		{"baseline repayment", in.BaselineRepayment},
	}
	for _, s := range series {
		for p := range s.m {
			if !idx.Contains(p) {
				return nil, &model.DataIntegrityError{Period: p, Reason: s.name + " references a period outside the horizon"}
			}
		}
	}
	return idx, nil
}

// Run folds the inputs into one WaterfallState per period. It is a pure
// function: identical inputs always give identical states.
func Run(in Inputs, policy model.CashPolicy, svc debtservice.Calculator) ([]model.WaterfallState, error) {
	idx, err := validate(in, policy)
	if err != nil {
		return nil, err
	}

	states := make([]model.WaterfallState, 0, idx.Len())
	acc := accumulator{cash: in.OpeningCash, bankDebt: in.OpeningBankDebt}
	for _, p := range idx.Periods() {
		if i, _ := idx.Position(p); i < in.Bootstrap {
			states = append(states, bootstrapState(p))
			continue
		}
		// Only the first period of the horizon has no prior balance to
		// charge interest on; bootstrap periods still count as prior.
		_, hasPrior := idx.Prev(p)
		var st model.WaterfallState
		st, acc, err = step(acc, p, hasPrior, in, policy, svc)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", p, err)
		}
		states = append(states, st)
	}
	return states, nil
}

func bootstrapState(p model.Period) model.WaterfallState {
	return model.WaterfallState{Period: p}
}

// step applies one period's transition and returns the next accumulator.
func step(acc accumulator, p model.Period, hasPrior bool, in Inputs, policy model.CashPolicy, svc debtservice.Calculator) (model.WaterfallState, accumulator, error) {
	revenue := in.Revenue[p]
	cost := in.AgriculturalCost[p]
	ocf := revenue.Sub(cost).Sub(in.NonAgriculturalExpense[p])
	investment := in.Investment[p].Abs()

	service := decimal.Zero
	if hasPrior {
		service = svc.Service(acc.bankDebt)
	}

	baseline := in.BaselineRepayment[p]

	minimum, err := policy.MinimumCash(revenue, cost)
	if err != nil {
		return model.WaterfallState{}, acc, err
	}

	provisional := acc.cash.Add(ocf).Sub(investment).Sub(service).Sub(baseline)
	surplus := provisional.Sub(minimum)

	adjusted := baseline
	borrowing := decimal.Zero
	switch {
	case surplus.IsPositive():
		adjusted = baseline.Add(surplus)
	case policy.Priority == model.PriorityPreserveCash:
		borrowing = surplus.Abs()
	}

	endingCash := acc.cash.Add(ocf).Sub(investment).Sub(service).Sub(adjusted).Add(borrowing)

	debtAfter := acc.bankDebt.Sub(adjusted).Add(borrowing)
	unabsorbed := decimal.Zero
	if debtAfter.IsNegative() {
		unabsorbed = debtAfter.Neg()
		debtAfter = decimal.Zero
	}

	st := model.WaterfallState{
		Period:              p,
		Simulated:           true,
		Revenue:             revenue,
		Cost:                cost,
		OperatingCashFlow:   ocf,
		Investment:          investment,
		DebtService:         service,
		BaselineRepayment:   baseline,
		AdjustedRepayment:   adjusted,
		NewBorrowing:        borrowing,
		MinimumCash:         minimum,
		Provisional:         provisional,
		Surplus:             surplus,
		EndingCash:          endingCash,
		EndingBankDebt:      debtAfter,
		UnabsorbedRepayment: unabsorbed,
	}
	if endingCash.LessThan(minimum) {
		st.Alert = true
		st.Shortfall = minimum.Sub(endingCash)
	}

	return st, accumulator{cash: endingCash, bankDebt: debtAfter}, nil
}
