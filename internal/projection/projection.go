// Package projection runs the full pipeline: debt consolidation, blended
// debt service, the cash-policy waterfall and balance-sheet reconciliation.
package projection

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/balancesheet"
	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/debtservice"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
	"github.com/furrow-dev/furrow/internal/waterfall"
)

// Scenario is everything about a run that is configuration rather than
// source data.
type Scenario struct {
	Organization string
	Name         string

	Periods   []model.Period
	Bootstrap int

	Policy      model.CashPolicy
	FXRate      decimal.Decimal
	BlendedRate *decimal.Decimal // overrides the computed rate when set
	Clip        bool

	OpeningCash     decimal.Decimal
	OpeningBankDebt *decimal.Decimal // defaults to the bank pool's total value
	OpeningAssets   map[model.AssetClass]decimal.Decimal

	// BaselineReference, when set, replaces the series' baseline repayment
	// with the bank schedule of that period, applied from BaselineFrom on.
	BaselineReference model.Period
	BaselineFrom      model.Period

	BalanceSheet balancesheet.Options
}

// Inputs is the source data of a run.
type Inputs struct {
	Debts  []model.DebtInstrument
	Series model.Series
}

// Result is the outcome of one run.
type Result struct {
	RunID        string
	Organization string
	Scenario     string

	BlendedRate  decimal.Decimal
	WeightedRate decimal.Decimal

	Pool      *debtpool.Consolidated
	States    []model.WaterfallState
	Snapshots []model.BalanceSheetSnapshot
	Position  []debtpool.PositionRow
	Totals    waterfall.Totals
}

// Validate raises every data, policy and ordering error before any figure
// is computed.
func Validate(sc Scenario, in Inputs) error {
	idx, err := period.NewIndex(sc.Periods)
	if err != nil {
		return err
	}
	if err := sc.Policy.Validate(); err != nil {
		return err
	}
	if _, _, err := idx.Split(sc.Bootstrap); err != nil {
		return err
	}
	if err := sc.BalanceSheet.Validate(); err != nil {
		return err
	}
	pool := model.DebtPool{Instruments: in.Debts, FXRate: sc.FXRate}
	if errs := debtpool.Validate(pool, idx, debtpool.Options{Clip: sc.Clip}); len(errs) > 0 {
		return errs[0]
	}
	for _, p := range in.Series.Periods() {
		if !idx.Contains(p) {
			return &model.DataIntegrityError{Period: p, Reason: "series references a period outside the horizon"}
		}
	}
	if sc.BaselineReference != "" {
		if !idx.Contains(sc.BaselineReference) {
			return &model.DataIntegrityError{Period: sc.BaselineReference, Reason: "baseline reference outside the horizon"}
		}
		if _, err := period.StartYear(sc.BaselineFrom); err != nil {
			return &model.DataIntegrityError{Period: sc.BaselineFrom, Reason: err.Error()}
		}
	}
	return nil
}

// Run executes the pipeline. It is pure: it does no I/O and the same
// scenario and inputs always give the same Result (RunID aside, which is
// left empty).
func Run(sc Scenario, in Inputs) (*Result, error) {
	if err := Validate(sc, in); err != nil {
		return nil, err
	}
	idx, err := period.NewIndex(sc.Periods)
	if err != nil {
		return nil, err
	}

	pool, err := debtpool.Consolidate(model.DebtPool{Instruments: in.Debts, FXRate: sc.FXRate}, idx, debtpool.Options{Clip: sc.Clip})
	if err != nil {
		return nil, fmt.Errorf("consolidating debt pool: %w", err)
	}

	svc := debtservice.NewCalculator(pool.BankInstruments(), sc.BlendedRate)

	baseline := in.Series.BaselineRepayment
	if sc.BaselineReference != "" {
		baseline, err = waterfall.BaselineFromReference(pool.Series(model.CategoryBank), sc.BaselineReference, sc.BaselineFrom, sc.Periods)
		if err != nil {
			return nil, fmt.Errorf("deriving baseline repayment: %w", err)
		}
	}

	openingDebt := pool.CategoryTotal(model.CategoryBank)
	if sc.OpeningBankDebt != nil {
		openingDebt = *sc.OpeningBankDebt
	}

	states, err := waterfall.Run(waterfall.Inputs{
		Periods:                sc.Periods,
		Bootstrap:              sc.Bootstrap,
		Revenue:                in.Series.Revenue,
		AgriculturalCost:       in.Series.AgriculturalCost,
		NonAgriculturalExpense: in.Series.NonAgriculturalExpense,
		Investment:             in.Series.TotalInvestment(),
		BaselineRepayment:      baseline,
		OpeningCash:            sc.OpeningCash,
		OpeningBankDebt:        openingDebt,
	}, sc.Policy, svc)
	if err != nil {
		return nil, fmt.Errorf("running waterfall: %w", err)
	}

	snapshots, err := balancesheet.Reconcile(balancesheet.Inputs{
		States:        states,
		Cost:          in.Series.AgriculturalCost,
		Investment:    in.Series.Investment,
		OpeningAssets: sc.OpeningAssets,
		Suppliers:     pool.Series(model.CategorySupplier),
		LandDebt:      pool.Series(model.CategoryLand),
		OtherDebt:     pool.Series(model.CategoryOther),
		Leases:        in.Series.Leases,
	}, sc.BalanceSheet)
	if err != nil {
		return nil, fmt.Errorf("reconciling balance sheet: %w", err)
	}

	cash := make(map[model.Period]decimal.Decimal, len(states))
	ebitda := make(map[model.Period]decimal.Decimal, len(states))
	for _, st := range states {
		p := st.Period
		cash[p] = st.EndingCash
		ebitda[p] = in.Series.Revenue[p].Sub(in.Series.AgriculturalCost[p]).Sub(in.Series.NonAgriculturalExpense[p])
	}

	return &Result{
		Organization: sc.Organization,
		Scenario:     sc.Name,
		BlendedRate:  svc.Rate,
		WeightedRate: debtservice.WeightedRate(pool.Normalized(model.CategoryBank)),
		Pool:         pool,
		States:       states,
		Snapshots:    snapshots,
		Position:     debtpool.Position(pool, cash, in.Series.Revenue, ebitda),
		Totals:       waterfall.Summarize(states),
	}, nil
}
