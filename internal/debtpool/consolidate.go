// Package debtpool consolidates debt instruments into local-currency
// per-category schedules.
package debtpool

import (
	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// DefaultFXRate is used by loaders when a scenario does not set a rate.
var DefaultFXRate = decimal.RequireFromString("5.7")

// Options control how out-of-horizon schedule entries are treated.
type Options struct {
	// Clip drops schedule entries outside the horizon instead of failing.
	Clip bool
}

// Normalized is one instrument with every amount in local currency.
type Normalized struct {
	Instrument model.DebtInstrument
	Category   model.Category
	TotalValue decimal.Decimal
	Schedule   map[model.Period]decimal.Decimal
}

// ClippedAmount is a schedule entry dropped because its period lies
// outside the horizon. It is already in local currency.
type ClippedAmount struct {
	InstrumentID string
	Period       model.Period
	Amount       decimal.Decimal
}

// Consolidated is the currency-normalized debt ledger.
type Consolidated struct {
	Periods     []model.Period
	ByCategory  map[model.Category]map[model.Period]decimal.Decimal
	Instruments []Normalized
	Clipped     []ClippedAmount
}

// Convert brings amount into local currency.
func Convert(amount decimal.Decimal, c model.Currency, fx decimal.Decimal) decimal.Decimal {
	if c == model.CurrencyForeign {
		return amount.Mul(fx)
	}
	return amount
}

// Validate returns every integrity problem in the pool. With opts.Clip set,
// out-of-horizon periods are not problems.
func Validate(pool model.DebtPool, idx *period.Index, opts Options) []error {
	var errs []error
	for _, inst := range pool.Instruments {
		switch inst.Currency {
		case model.CurrencyLocal:
		case model.CurrencyForeign:
			if !pool.FXRate.IsPositive() {
				errs = append(errs, &model.DataIntegrityError{
					Instrument: inst.ID,
					Reason:     "foreign-currency instrument requires a positive fx rate",
				})
			}
		default:
			errs = append(errs, &model.DataIntegrityError{
				Instrument: inst.ID,
				Reason:     "unknown currency " + string(inst.Currency),
			})
		}
		if opts.Clip {
			continue
		}
		for _, p := range sortedPeriods(inst.Schedule) {
			if !idx.Contains(p) {
				errs = append(errs, &model.DataIntegrityError{
					Instrument: inst.ID,
					Period:     p,
					Reason:     "scheduled payment outside the projection horizon",
				})
			}
		}
	}
	return errs
}

// Consolidate normalizes the pool into per-category period totals. Every
// instrument is converted exactly once; unknown categories land in OTHER.
func Consolidate(pool model.DebtPool, idx *period.Index, opts Options) (*Consolidated, error) {
	if errs := Validate(pool, idx, opts); len(errs) > 0 {
		return nil, errs[0]
	}

	periods := idx.Periods()
	c := &Consolidated{
		Periods:    periods,
		ByCategory: make(map[model.Category]map[model.Period]decimal.Decimal, len(model.Categories)),
	}
	for _, cat := range model.Categories {
		m := make(map[model.Period]decimal.Decimal, len(periods))
		for _, p := range periods {
			m[p] = decimal.Zero
		}
		c.ByCategory[cat] = m
	}

	for _, inst := range pool.Instruments {
		cat := inst.Category.Normalize()
		n := Normalized{
			Instrument: inst,
			Category:   cat,
			TotalValue: Convert(inst.OriginalValue, inst.Currency, pool.FXRate),
			Schedule:   make(map[model.Period]decimal.Decimal, len(inst.Schedule)),
		}
		for _, p := range sortedPeriods(inst.Schedule) {
			amount := Convert(inst.Schedule[p], inst.Currency, pool.FXRate)
			if !idx.Contains(p) {
				c.Clipped = append(c.Clipped, ClippedAmount{InstrumentID: inst.ID, Period: p, Amount: amount})
				continue
			}
			n.Schedule[p] = amount
			c.ByCategory[cat][p] = c.ByCategory[cat][p].Add(amount)
		}
		c.Instruments = append(c.Instruments, n)
	}
	return c, nil
}

// TotalValue is the sum of every instrument's converted original value.
func (c *Consolidated) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, n := range c.Instruments {
		total = total.Add(n.TotalValue)
	}
	return total
}

// CategoryTotal is the converted original value of one category.
func (c *Consolidated) CategoryTotal(cat model.Category) decimal.Decimal {
	total := decimal.Zero
	for _, n := range c.Instruments {
		if n.Category == cat {
			total = total.Add(n.TotalValue)
		}
	}
	return total
}

// ScheduledTotal sums every in-horizon scheduled amount of a category.
func (c *Consolidated) ScheduledTotal(cat model.Category) decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.ByCategory[cat] {
		total = total.Add(v)
	}
	return total
}

// Series returns a copy of one category's period totals.
func (c *Consolidated) Series(cat model.Category) map[model.Period]decimal.Decimal {
	src := c.ByCategory[cat]
	out := make(map[model.Period]decimal.Decimal, len(src))
	for p, v := range src {
		out[p] = v
	}
	return out
}

// BankInstruments returns the source instruments in the BANK category.
func (c *Consolidated) BankInstruments() []model.DebtInstrument {
	var out []model.DebtInstrument
	for _, n := range c.Instruments {
		if n.Category == model.CategoryBank {
			out = append(out, n.Instrument)
		}
	}
	return out
}

// Normalized returns the instruments of one category.
func (c *Consolidated) Normalized(cat model.Category) []Normalized {
	var out []Normalized
	for _, n := range c.Instruments {
		if n.Category == cat {
			out = append(out, n)
		}
	}
	return out
}
