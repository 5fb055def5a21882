package balancesheet

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
)

// Inputs carry everything the reconciler reads besides the waterfall.
// Missing map entries read as zero.
type Inputs struct {
	States []model.WaterfallState
	Cost   map[model.Period]decimal.Decimal

	Investment    map[model.AssetClass]map[model.Period]decimal.Decimal
	OpeningAssets map[model.AssetClass]decimal.Decimal

	Suppliers map[model.Period]decimal.Decimal
	LandDebt  map[model.Period]decimal.Decimal
	OtherDebt map[model.Period]decimal.Decimal
	Leases    map[model.Period]decimal.Decimal
}

// Options are the approximation parameters of the reconciler.
type Options struct {
	// CurrentRatio is the share of bank debt due within the year.
	CurrentRatio   decimal.Decimal
	ReceivablesPct decimal.Decimal
	InventoryPct   decimal.Decimal
	ShareCapital   decimal.Decimal
}

// Validate checks that the ratios are usable.
func (o Options) Validate() error {
	one := decimal.NewFromInt(1)
	if o.CurrentRatio.IsNegative() || o.CurrentRatio.GreaterThan(one) {
		return fmt.Errorf("current ratio %s outside [0, 1]", o.CurrentRatio)
	}
	if o.ReceivablesPct.IsNegative() {
		return fmt.Errorf("receivables percentage %s is negative", o.ReceivablesPct)
	}
	if o.InventoryPct.IsNegative() {
		return fmt.Errorf("inventory percentage %s is negative", o.InventoryPct)
	}
	return nil
}

// Reconcile builds one balance sheet per waterfall state. Equity is the
// plug assets - liabilities, so every snapshot balances by construction.
func Reconcile(in Inputs, opts Options) ([]model.BalanceSheetSnapshot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fixed := make(map[model.AssetClass]decimal.Decimal, len(model.AssetClasses))
	for _, c := range model.AssetClasses {
		fixed[c] = in.OpeningAssets[c]
	}
	openingEquity := opts.ShareCapital
	longTermRatio := decimal.NewFromInt(1).Sub(opts.CurrentRatio)

	out := make([]model.BalanceSheetSnapshot, 0, len(in.States))
	for _, st := range in.States {
		p := st.Period
		var s model.BalanceSheetSnapshot
		s.Period = p

		cost := in.Cost[p].Abs()
		s.CurrentAssets = model.CurrentAssets{
			Cash:        st.EndingCash,
			Receivables: cost.Mul(opts.ReceivablesPct),
			Inventory:   cost.Mul(opts.InventoryPct),
		}
		s.CurrentAssets.Total = s.CurrentAssets.Cash.Add(s.CurrentAssets.Receivables).Add(s.CurrentAssets.Inventory)

		// Periods without investment data keep the prior value.
		for _, c := range model.AssetClasses {
			fixed[c] = fixed[c].Add(in.Investment[c][p].Abs())
		}
		s.FixedAssets = model.FixedAssets{
			Land:      fixed[model.AssetLand],
			Machinery: fixed[model.AssetMachinery],
			Other:     fixed[model.AssetOther],
		}
		s.FixedAssets.Total = s.FixedAssets.Land.Add(s.FixedAssets.Machinery).Add(s.FixedAssets.Other)

		s.CurrentLiabilities = model.CurrentLiabilities{
			Suppliers:         in.Suppliers[p],
			ShortTermBankDebt: st.EndingBankDebt.Mul(opts.CurrentRatio),
		}
		s.CurrentLiabilities.Total = s.CurrentLiabilities.Suppliers.Add(s.CurrentLiabilities.ShortTermBankDebt)

		s.LongTermLiabilities = model.LongTermLiabilities{
			LongTermBankDebt: st.EndingBankDebt.Mul(longTermRatio),
			LandDebt:         in.LandDebt[p],
			Leases:           in.Leases[p],
			OtherObligations: in.OtherDebt[p],
		}
		s.LongTermLiabilities.Total = s.LongTermLiabilities.LongTermBankDebt.
			Add(s.LongTermLiabilities.LandDebt).
			Add(s.LongTermLiabilities.Leases).
			Add(s.LongTermLiabilities.OtherObligations)

		s.TotalAssets = s.CurrentAssets.Total.Add(s.FixedAssets.Total)
		s.TotalLiabilities = s.CurrentLiabilities.Total.Add(s.LongTermLiabilities.Total)

		equity := s.TotalAssets.Sub(s.TotalLiabilities)
		s.Equity = model.Equity{
			ShareCapital:     opts.ShareCapital,
			OpeningEquity:    openingEquity,
			NetResult:        equity.Sub(openingEquity),
			RetainedEarnings: equity.Sub(opts.ShareCapital),
			Total:            equity,
		}
		openingEquity = equity

		s.TotalLiabilitiesAndEquity = s.TotalLiabilities.Add(s.Equity.Total)
		s.Difference = s.TotalAssets.Sub(s.TotalLiabilitiesAndEquity)
		s.Balanced = s.Difference.IsZero()

		out = append(out, s)
	}
	return out, nil
}

// Check returns the periods whose snapshot does not balance.
func Check(snapshots []model.BalanceSheetSnapshot) []model.Period {
	var bad []model.Period
	for _, s := range snapshots {
		assets := s.CurrentAssets.Total.Add(s.FixedAssets.Total)
		liabilities := s.CurrentLiabilities.Total.Add(s.LongTermLiabilities.Total)
		if !assets.Equal(liabilities.Add(s.Equity.Total)) ||
			!s.Equity.Total.Equal(s.Equity.OpeningEquity.Add(s.Equity.NetResult)) ||
			!s.Equity.Total.Equal(s.Equity.ShareCapital.Add(s.Equity.RetainedEarnings)) {
			bad = append(bad, s.Period)
		}
	}
	return bad
}
