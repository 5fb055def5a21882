package debtpool

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
)

// PositionRow summarizes the debt position for one period.
type PositionRow struct {
	Period          model.Period
	TotalDebt       decimal.Decimal
	BankDebt        decimal.Decimal
	ForeignExposure decimal.Decimal // foreign-currency debt, in local currency
	Cash            decimal.Decimal
	NetDebt         decimal.Decimal
	DebtToRevenue   decimal.Decimal
	DebtToEBITDA    decimal.Decimal
}

// Position computes leverage indicators per period from the consolidated
// schedule. Ratios with a zero or negative base are reported as 0.
func Position(c *Consolidated, cash, revenue, ebitda map[model.Period]decimal.Decimal) []PositionRow {
	rows := make([]PositionRow, 0, len(c.Periods))
	for _, p := range c.Periods {
		total := decimal.Zero
		for _, cat := range model.Categories {
			total = total.Add(c.ByCategory[cat][p])
		}
		foreign := decimal.Zero
		for _, n := range c.Instruments {
			if n.Instrument.Currency == model.CurrencyForeign {
				foreign = foreign.Add(n.Schedule[p])
			}
		}
		rows = append(rows, PositionRow{
			Period:          p,
			TotalDebt:       total,
			BankDebt:        c.ByCategory[model.CategoryBank][p],
			ForeignExposure: foreign,
			Cash:            cash[p],
			NetDebt:         total.Sub(cash[p]),
			DebtToRevenue:   ratio(total, revenue[p]),
			DebtToEBITDA:    ratio(total, ebitda[p]),
		})
	}
	return rows
}

func ratio(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den)
}

func sortedPeriods(m map[model.Period]decimal.Decimal) []model.Period {
	return slices.Sorted(maps.Keys(m))
}
