package projection

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furrow-dev/furrow/internal/balancesheet"
	"github.com/furrow-dev/furrow/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: got %s want %s", msg, got, want)
}

func twoPeriodScenario() (Scenario, Inputs) {
	sc := Scenario{
		Organization: "fazenda-boa-vista",
		Name:         "base",
		Periods:      []model.Period{"2024/25", "2025/26"},
		Policy: model.CashPolicy{
			Enabled:  true,
			Kind:     model.PolicyRevenuePercent,
			Value:    d("0.10"),
			Priority: model.PriorityPreserveCash,
		},
		FXRate: d("5.7"),
		BalanceSheet: balancesheet.Options{
			CurrentRatio:   d("0.30"),
			ReceivablesPct: d("0.15"),
			InventoryPct:   d("0.10"),
		},
	}

	series := model.NewSeries()
	series.Revenue["2024/25"] = d("1000000")
	series.Revenue["2025/26"] = d("1200000")
	series.AgriculturalCost["2024/25"] = d("400000")
	series.AgriculturalCost["2025/26"] = d("450000")

	in := Inputs{
		Debts: []model.DebtInstrument{
			{ID: "bb-1", Name: "Banco do Brasil", Category: model.CategoryBank, Currency: model.CurrencyLocal,
				OriginalValue: d("2000000"), ContractRate: d("0.10")},
			{ID: "agro", Name: "Agro Insumos", Category: model.CategorySupplier, Currency: model.CurrencyLocal,
				OriginalValue: d("50000"), Schedule: map[model.Period]decimal.Decimal{"2024/25": d("50000")}},
		},
		Series: series,
	}
	return sc, in
}

func TestRun_TwoPeriodScenario(t *testing.T) {
	sc, in := twoPeriodScenario()

	res, err := Run(sc, in)
	require.NoError(t, err)
	require.Len(t, res.States, 2)

	assert.Empty(t, res.RunID)
	assertDec(t, "0.10", res.BlendedRate, "blended rate")
	assertDec(t, "0.10", res.WeightedRate, "weighted rate")

	p1 := res.States[0]
	assertDec(t, "0", p1.DebtService, "debt service P1")
	assertDec(t, "500000", p1.AdjustedRepayment, "adjusted repayment P1")
	assertDec(t, "100000", p1.EndingCash, "ending cash P1")
	assertDec(t, "1500000", p1.EndingBankDebt, "ending bank debt P1")

	p2 := res.States[1]
	assertDec(t, "150000", p2.DebtService, "debt service P2")
	assertDec(t, "580000", p2.AdjustedRepayment, "adjusted repayment P2")
	assertDec(t, "120000", p2.EndingCash, "ending cash P2")
	assertDec(t, "920000", p2.EndingBankDebt, "ending bank debt P2")

	assertDec(t, "120000", res.Totals.FinalCash, "final cash")
	assertDec(t, "920000", res.Totals.FinalBankDebt, "final bank debt")
	assert.Zero(t, res.Totals.Alerts)

	require.Len(t, res.Snapshots, 2)
	for _, s := range res.Snapshots {
		assert.True(t, s.Balanced, "period %s", s.Period)
		assert.True(t, s.TotalAssets.Equal(s.TotalLiabilitiesAndEquity), "period %s", s.Period)
	}

	require.Len(t, res.Position, 2)
	assert.Equal(t, model.Period("2024/25"), res.Position[0].Period)
	assertDec(t, "100000", res.Position[0].Cash, "position cash")

	assertDec(t, "2050000", res.Pool.TotalValue(), "pool total")
	assertDec(t, "50000", res.Pool.ScheduledTotal(model.CategorySupplier), "supplier schedule")
}

func TestRun_OpeningDebtOverrideAndRate(t *testing.T) {
	sc, in := twoPeriodScenario()
	debt := d("1000000")
	rate := d("0.05")
	sc.OpeningBankDebt = &debt
	sc.BlendedRate = &rate

	res, err := Run(sc, in)
	require.NoError(t, err)

	assertDec(t, "0.05", res.BlendedRate, "override rate")
	assertDec(t, "500000", res.States[0].EndingBankDebt, "ending bank debt P1")
	// 500000 * 0.05
	assertDec(t, "25000", res.States[1].DebtService, "debt service P2")
}

func TestRun_BaselineFromReference(t *testing.T) {
	sc, in := twoPeriodScenario()
	in.Debts[0].Schedule = map[model.Period]decimal.Decimal{"2024/25": d("200000")}
	sc.BaselineReference = "2024/25"
	sc.BaselineFrom = "2025/26"

	res, err := Run(sc, in)
	require.NoError(t, err)

	assertDec(t, "0", res.States[0].BaselineRepayment, "before the rule applies")
	assertDec(t, "200000", res.States[1].BaselineRepayment, "from the rule on")
}

func TestRun_Bootstrap(t *testing.T) {
	sc, in := twoPeriodScenario()
	sc.Periods = []model.Period{"2023/24", "2024/25", "2025/26"}
	sc.Bootstrap = 1

	res, err := Run(sc, in)
	require.NoError(t, err)
	require.Len(t, res.States, 3)

	assert.False(t, res.States[0].Simulated)
	assert.True(t, res.States[0].EndingCash.IsZero())
	// 2,000,000 opening debt at 10% is charged once 2023/24 precedes it.
	assertDec(t, "200000", res.States[1].DebtService, "first simulated period service")
	assertDec(t, "100000", res.States[1].EndingCash, "first simulated period")
	assertDec(t, "1700000", res.States[1].EndingBankDebt, "first simulated period debt")
	assertDec(t, "170000", res.States[2].DebtService, "last period service")
	assertDec(t, "1140000", res.States[2].EndingBankDebt, "last period")
	assert.Equal(t, 2, res.Totals.Simulated)
}

func TestRun_Idempotent(t *testing.T) {
	sc, in := twoPeriodScenario()

	a, err := Run(sc, in)
	require.NoError(t, err)
	b, err := Run(sc, in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidate_Errors(t *testing.T) {
	t.Run("period order", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		sc.Periods = []model.Period{"2025/26", "2024/25"}
		_, err := Run(sc, in)
		var poe *model.PeriodOrderError
		require.True(t, errors.As(err, &poe), "got %v", err)
	})

	t.Run("policy kind", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		sc.Policy.Kind = "EBITDA_PERCENT"
		_, err := Run(sc, in)
		var pce *model.PolicyConfigError
		require.True(t, errors.As(err, &pce), "got %v", err)
	})

	t.Run("schedule outside horizon", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		in.Debts[0].Schedule = map[model.Period]decimal.Decimal{"2030/31": d("10")}
		_, err := Run(sc, in)
		var die *model.DataIntegrityError
		require.True(t, errors.As(err, &die), "got %v", err)
		assert.Equal(t, "bb-1", die.Instrument)
	})

	t.Run("clip drops out-of-horizon entries", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		in.Debts[0].Schedule = map[model.Period]decimal.Decimal{"2030/31": d("10")}
		sc.Clip = true
		res, err := Run(sc, in)
		require.NoError(t, err)
		require.Len(t, res.Pool.Clipped, 1)
	})

	t.Run("series outside horizon", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		in.Series.Revenue["2031/32"] = d("1")
		_, err := Run(sc, in)
		var die *model.DataIntegrityError
		require.True(t, errors.As(err, &die), "got %v", err)
		assert.Equal(t, model.Period("2031/32"), die.Period)
	})

	t.Run("foreign without fx", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		sc.FXRate = decimal.Zero
		in.Debts[0].Currency = model.CurrencyForeign
		_, err := Run(sc, in)
		var die *model.DataIntegrityError
		require.True(t, errors.As(err, &die), "got %v", err)
	})

	t.Run("baseline reference outside horizon", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		sc.BaselineReference = "2019/20"
		sc.BaselineFrom = "2024/25"
		_, err := Run(sc, in)
		var die *model.DataIntegrityError
		require.True(t, errors.As(err, &die), "got %v", err)
	})

	t.Run("balance sheet ratio", func(t *testing.T) {
		sc, in := twoPeriodScenario()
		sc.BalanceSheet.CurrentRatio = d("1.5")
		_, err := Run(sc, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "current ratio")
	})
}
