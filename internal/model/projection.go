package model

import "github.com/shopspring/decimal"

// AssetClass groups fixed-asset investment.
type AssetClass string

const (
	AssetLand      AssetClass = "LAND"
	AssetMachinery AssetClass = "MACHINERY"
	AssetOther     AssetClass = "OTHER"
)

// AssetClasses lists every asset class in reporting order.
var AssetClasses = []AssetClass{AssetLand, AssetMachinery, AssetOther}

// Series holds the per-period figures supplied by the revenue/cost
// aggregator and the asset register. Missing periods read as zero.
type Series struct {
	Revenue                map[Period]decimal.Decimal
	AgriculturalCost       map[Period]decimal.Decimal
	NonAgriculturalExpense map[Period]decimal.Decimal
	Investment             map[AssetClass]map[Period]decimal.Decimal
	Leases                 map[Period]decimal.Decimal
	BaselineRepayment      map[Period]decimal.Decimal
}

// NewSeries returns a Series with every map allocated.
func NewSeries() Series {
	inv := make(map[AssetClass]map[Period]decimal.Decimal, len(AssetClasses))
	for _, c := range AssetClasses {
		inv[c] = make(map[Period]decimal.Decimal)
	}
	return Series{
		Revenue:                make(map[Period]decimal.Decimal),
		AgriculturalCost:       make(map[Period]decimal.Decimal),
		NonAgriculturalExpense: make(map[Period]decimal.Decimal),
		Investment:             inv,
		Leases:                 make(map[Period]decimal.Decimal),
		BaselineRepayment:      make(map[Period]decimal.Decimal),
	}
}

// TotalInvestment sums investment across asset classes per period.
func (s Series) TotalInvestment() map[Period]decimal.Decimal {
	out := make(map[Period]decimal.Decimal)
	for _, byPeriod := range s.Investment {
		for p, v := range byPeriod {
			out[p] = out[p].Add(v.Abs())
		}
	}
	return out
}

// Periods returns every period referenced by any map, unordered.
func (s Series) Periods() []Period {
	seen := make(map[Period]bool)
	var out []Period
	add := func(m map[Period]decimal.Decimal) {
		for p := range m {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	add(s.Revenue)
	add(s.AgriculturalCost)
	add(s.NonAgriculturalExpense)
	add(s.Leases)
	add(s.BaselineRepayment)
	for _, m := range s.Investment {
		add(m)
	}
	return out
}

// WaterfallState is the outcome of one period of the cash-policy waterfall.
type WaterfallState struct {
	Period    Period
	Simulated bool // false for bootstrap periods, which are all zero

	Revenue           decimal.Decimal
	Cost              decimal.Decimal
	OperatingCashFlow decimal.Decimal
	Investment        decimal.Decimal // absolute value
	DebtService       decimal.Decimal

	BaselineRepayment decimal.Decimal
	AdjustedRepayment decimal.Decimal
	NewBorrowing      decimal.Decimal

	MinimumCash decimal.Decimal
	Provisional decimal.Decimal
	Surplus     decimal.Decimal

	EndingCash     decimal.Decimal
	EndingBankDebt decimal.Decimal

	Alert     bool
	Shortfall decimal.Decimal
	// UnabsorbedRepayment is repayment beyond the outstanding bank debt.
	UnabsorbedRepayment decimal.Decimal
}

// CurrentAssets is the current-asset section of a balance sheet.
type CurrentAssets struct {
	Cash        decimal.Decimal
	Receivables decimal.Decimal
	Inventory   decimal.Decimal
	Total       decimal.Decimal
}

// FixedAssets is the fixed-asset section of a balance sheet.
type FixedAssets struct {
	Land      decimal.Decimal
	Machinery decimal.Decimal
	Other     decimal.Decimal
	Total     decimal.Decimal
}

// CurrentLiabilities is the short-term liability section.
type CurrentLiabilities struct {
	Suppliers         decimal.Decimal
	ShortTermBankDebt decimal.Decimal
	Total             decimal.Decimal
}

// LongTermLiabilities is the long-term liability section.
type LongTermLiabilities struct {
	LongTermBankDebt decimal.Decimal
	LandDebt         decimal.Decimal
	Leases           decimal.Decimal
	OtherObligations decimal.Decimal
	Total            decimal.Decimal
}

// Equity is the balancing section. Total is the plug assets - liabilities.
type Equity struct {
	ShareCapital     decimal.Decimal
	OpeningEquity    decimal.Decimal
	NetResult        decimal.Decimal
	RetainedEarnings decimal.Decimal
	Total            decimal.Decimal
}

// BalanceSheetSnapshot is the reconciled balance sheet for one period.
type BalanceSheetSnapshot struct {
	Period              Period
	CurrentAssets       CurrentAssets
	FixedAssets         FixedAssets
	CurrentLiabilities  CurrentLiabilities
	LongTermLiabilities LongTermLiabilities
	Equity              Equity

	TotalAssets               decimal.Decimal
	TotalLiabilities          decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	Difference                decimal.Decimal
	Balanced                  bool
}
