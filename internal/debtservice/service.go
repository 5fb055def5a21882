package debtservice

import (
	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/model"
)

// DefaultBlendedRate applies when no bank instrument carries a positive rate.
var DefaultBlendedRate = decimal.RequireFromString("0.065")

// BlendedRate is the arithmetic mean of the positive contract rates in the
// bank pool. The pool is treated as one synthetic loan; individual
// amortization terms are not tracked.
func BlendedRate(bank []model.DebtInstrument) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, inst := range bank {
		if inst.ContractRate.IsPositive() {
			sum = sum.Add(inst.ContractRate)
			n++
		}
	}
	if n == 0 {
		return DefaultBlendedRate
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// WeightedRate weights each positive contract rate by the instrument's
// local-currency value. It is informational; the engine uses BlendedRate.
func WeightedRate(bank []debtpool.Normalized) decimal.Decimal {
	weighted := decimal.Zero
	total := decimal.Zero
	for _, n := range bank {
		if !n.Instrument.ContractRate.IsPositive() || !n.TotalValue.IsPositive() {
			continue
		}
		weighted = weighted.Add(n.TotalValue.Mul(n.Instrument.ContractRate))
		total = total.Add(n.TotalValue)
	}
	if total.IsZero() {
		return DefaultBlendedRate
	}
	return weighted.Div(total)
}

// Interest is one period's interest on the prior bank-debt balance.
func Interest(priorBankDebt, rate decimal.Decimal) decimal.Decimal {
	if !priorBankDebt.IsPositive() {
		return decimal.Zero
	}
	return priorBankDebt.Mul(rate)
}

// Calculator applies a fixed blended rate.
type Calculator struct {
	Rate decimal.Decimal
}

// NewCalculator derives the rate from the bank pool unless override is set.
func NewCalculator(bank []model.DebtInstrument, override *decimal.Decimal) Calculator {
	if override != nil {
		return Calculator{Rate: *override}
	}
	return Calculator{Rate: BlendedRate(bank)}
}

// Service returns the debt service due on priorBankDebt.
func (c Calculator) Service(priorBankDebt decimal.Decimal) decimal.Decimal {
	return Interest(priorBankDebt, c.Rate)
}
