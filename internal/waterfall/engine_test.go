package waterfall

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furrow-dev/furrow/internal/debtservice"
	"github.com/furrow-dev/furrow/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func series(kv ...string) map[model.Period]decimal.Decimal {
	m := make(map[model.Period]decimal.Decimal)
	for i := 0; i+1 < len(kv); i += 2 {
		m[model.Period(kv[i])] = d(kv[i+1])
	}
	return m
}

func revenuePolicy(pct string) model.CashPolicy {
	return model.CashPolicy{Enabled: true, Kind: model.PolicyRevenuePercent, Value: d(pct), Priority: model.PriorityPreserveCash}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: got %s want %s", msg, got, want)
}

func twoPeriodInputs() Inputs {
	return Inputs{
		Periods:          []model.Period{"2024/25", "2025/26"},
		Revenue:          series("2024/25", "1000000", "2025/26", "1200000"),
		AgriculturalCost: series("2024/25", "400000", "2025/26", "450000"),
		OpeningBankDebt:  d("2000000"),
	}
}

func TestRun_TwoPeriodScenario(t *testing.T) {
	states, err := Run(twoPeriodInputs(), revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)
	require.Len(t, states, 2)

	p1 := states[0]
	assertDec(t, "100000", p1.MinimumCash, "minimum cash P1")
	assertDec(t, "0", p1.DebtService, "debt service P1")
	assertDec(t, "600000", p1.Provisional, "provisional P1")
	assertDec(t, "500000", p1.Surplus, "surplus P1")
	assertDec(t, "500000", p1.AdjustedRepayment, "adjusted repayment P1")
	assertDec(t, "0", p1.NewBorrowing, "new borrowing P1")
	assertDec(t, "100000", p1.EndingCash, "ending cash P1")
	assertDec(t, "1500000", p1.EndingBankDebt, "ending bank debt P1")
	assert.False(t, p1.Alert)

	p2 := states[1]
	assertDec(t, "750000", p2.OperatingCashFlow, "ocf P2")
	assertDec(t, "150000", p2.DebtService, "debt service P2")
	assertDec(t, "120000", p2.MinimumCash, "minimum cash P2")
	assertDec(t, "700000", p2.Provisional, "provisional P2")
	assertDec(t, "580000", p2.AdjustedRepayment, "adjusted repayment P2")
	assertDec(t, "120000", p2.EndingCash, "ending cash P2")
	assertDec(t, "920000", p2.EndingBankDebt, "ending bank debt P2")
}

func TestRun_BaselineIsIncludedInSweep(t *testing.T) {
	in := twoPeriodInputs()
	in.BaselineRepayment = series("2024/25", "200000")

	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	p1 := states[0]
	assertDec(t, "400000", p1.Provisional, "provisional")
	assertDec(t, "300000", p1.Surplus, "surplus")
	assertDec(t, "500000", p1.AdjustedRepayment, "baseline + surplus")
	assertDec(t, "1500000", p1.EndingBankDebt, "ending bank debt")
}

func TestRun_DeficitBorrows(t *testing.T) {
	in := Inputs{
		Periods:          []model.Period{"2024/25"},
		Revenue:          series("2024/25", "500000"),
		AgriculturalCost: series("2024/25", "450000"),
		Investment:       series("2024/25", "-200000"),
		OpeningCash:      d("80000"),
		OpeningBankDebt:  d("1000000"),
	}
	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	st := states[0]
	assertDec(t, "200000", st.Investment, "investment is absolute")
	assertDec(t, "-70000", st.Provisional, "provisional")
	assertDec(t, "-120000", st.Surplus, "surplus")
	assertDec(t, "0", st.AdjustedRepayment, "repayment stays at baseline")
	assertDec(t, "120000", st.NewBorrowing, "new borrowing")
	assertDec(t, "50000", st.EndingCash, "ending cash pinned to floor")
	assertDec(t, "1120000", st.EndingBankDebt, "ending bank debt")
	assert.False(t, st.Alert)
}

func TestRun_PayDownDebtRaisesAlert(t *testing.T) {
	in := Inputs{
		Periods:           []model.Period{"2024/25"},
		Revenue:           series("2024/25", "100"),
		AgriculturalCost:  series("2024/25", "90"),
		BaselineRepayment: series("2024/25", "5"),
		OpeningBankDebt:   d("1000"),
	}
	policy := model.CashPolicy{Enabled: true, Kind: model.PolicyFixed, Value: d("50"), Priority: model.PriorityPayDownDebt}
	states, err := Run(in, policy, debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	st := states[0]
	assertDec(t, "5", st.AdjustedRepayment, "baseline repayment is never reduced")
	assertDec(t, "0", st.NewBorrowing, "no new credit")
	assertDec(t, "5", st.EndingCash, "ending cash")
	assertDec(t, "995", st.EndingBankDebt, "ending bank debt")
	assert.True(t, st.Alert)
	assertDec(t, "45", st.Shortfall, "shortfall")
}

func TestRun_ExactMatchIsDeficitBranch(t *testing.T) {
	in := Inputs{
		Periods:         []model.Period{"2024/25"},
		Revenue:         series("2024/25", "1000"),
		OpeningBankDebt: d("5000"),
	}
	policy := model.CashPolicy{Enabled: true, Kind: model.PolicyFixed, Value: d("1000"), Priority: model.PriorityPreserveCash}
	states, err := Run(in, policy, debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	st := states[0]
	assert.True(t, st.Surplus.IsZero())
	assertDec(t, "0", st.AdjustedRepayment, "no spurious repayment")
	assertDec(t, "0", st.NewBorrowing, "zero borrowing")
	assertDec(t, "1000", st.EndingCash, "ending cash")
	assertDec(t, "5000", st.EndingBankDebt, "ending bank debt")
}

func TestRun_DisabledPolicySweepsEverything(t *testing.T) {
	in := twoPeriodInputs()
	policy := revenuePolicy("0.10")
	policy.Enabled = false

	states, err := Run(in, policy, debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)
	for _, st := range states {
		assert.True(t, st.MinimumCash.IsZero())
		assert.True(t, st.EndingCash.IsZero(), "%s", st.Period)
	}
	assertDec(t, "1400000", states[0].EndingBankDebt, "all 600000 swept")
}

func TestRun_UnabsorbedRepayment(t *testing.T) {
	in := Inputs{
		Periods:         []model.Period{"2024/25", "2025/26"},
		Revenue:         series("2024/25", "600", "2025/26", "600"),
		OpeningBankDebt: d("100"),
	}
	states, err := Run(in, revenuePolicy("0"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	assertDec(t, "600", states[0].AdjustedRepayment, "adjusted")
	assertDec(t, "0", states[0].EndingBankDebt, "debt floored at zero")
	assertDec(t, "500", states[0].UnabsorbedRepayment, "unabsorbed")
	assertDec(t, "0", states[1].DebtService, "no interest on zero debt")
}

func TestRun_Bootstrap(t *testing.T) {
	in := Inputs{
		Periods:          []model.Period{"2022/23", "2023/24", "2024/25"},
		Bootstrap:        2,
		Revenue:          series("2022/23", "900", "2023/24", "900", "2024/25", "1000000"),
		AgriculturalCost: series("2024/25", "400000"),
		OpeningBankDebt:  d("2000000"),
	}
	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)
	require.Len(t, states, 3)

	for _, st := range states[:2] {
		assert.False(t, st.Simulated)
		assert.Equal(t, model.WaterfallState{Period: st.Period}, st, "bootstrap periods are all zero")
	}
	first := states[2]
	assert.True(t, first.Simulated)
	assertDec(t, "200000", first.DebtService, "interest on the opening debt carried through bootstrap")
	assertDec(t, "300000", first.AdjustedRepayment, "surplus after service")
	assertDec(t, "100000", first.EndingCash, "ending cash")
	assertDec(t, "1700000", first.EndingBankDebt, "ending bank debt")
}

func TestRun_FirstHorizonPeriodHasNoService(t *testing.T) {
	in := twoPeriodInputs()
	in.Bootstrap = 0
	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	assertDec(t, "0", states[0].DebtService, "nothing precedes the first period")
	assert.True(t, states[1].DebtService.IsPositive(), "second period pays interest")
}

func TestRun_Invariants(t *testing.T) {
	periods := []model.Period{"2024/25", "2025/26", "2026/27", "2027/28", "2028/29"}
	in := Inputs{
		Periods:                periods,
		Revenue:                series("2024/25", "800000", "2025/26", "300000", "2026/27", "1500000", "2027/28", "0", "2028/29", "900000"),
		AgriculturalCost:       series("2024/25", "500000", "2025/26", "600000", "2026/27", "700000", "2027/28", "100000", "2028/29", "650000"),
		NonAgriculturalExpense: series("2024/25", "50000", "2025/26", "50000", "2026/27", "50000", "2027/28", "50000", "2028/29", "50000"),
		Investment:             series("2025/26", "250000", "2027/28", "-80000"),
		BaselineRepayment:      series("2024/25", "100000", "2025/26", "100000", "2026/27", "100000", "2027/28", "100000", "2028/29", "100000"),
		OpeningCash:            d("150000"),
		OpeningBankDebt:        d("1200000"),
	}

	policies := []model.CashPolicy{
		revenuePolicy("0.15"),
		{Enabled: true, Kind: model.PolicyCostPercent, Value: d("0.2"), Priority: model.PriorityPreserveCash},
		{Enabled: true, Kind: model.PolicyFixed, Value: d("100000"), Priority: model.PriorityPayDownDebt},
		{Enabled: false, Kind: model.PolicyFixed, Priority: model.PriorityPreserveCash},
	}
	for _, policy := range policies {
		t.Run(string(policy.Kind)+"/"+string(policy.Priority), func(t *testing.T) {
			states, err := Run(in, policy, debtservice.Calculator{Rate: d("0.085")})
			require.NoError(t, err)

			prevCash, prevDebt := in.OpeningCash, in.OpeningBankDebt
			for _, st := range states {
				wantCash := prevCash.Add(st.OperatingCashFlow).Sub(st.Investment).Sub(st.DebtService).
					Sub(st.AdjustedRepayment).Add(st.NewBorrowing)
				assert.True(t, wantCash.Equal(st.EndingCash), "%s cash identity", st.Period)

				wantDebt := decimal.Max(decimal.Zero, prevDebt.Sub(st.AdjustedRepayment).Add(st.NewBorrowing))
				assert.True(t, wantDebt.Equal(st.EndingBankDebt), "%s debt identity", st.Period)
				assert.False(t, st.EndingBankDebt.IsNegative(), "%s debt non-negative", st.Period)

				if policy.Enabled && policy.Priority == model.PriorityPreserveCash {
					assert.True(t, st.EndingCash.GreaterThanOrEqual(st.MinimumCash), "%s floor", st.Period)
					assert.False(t, st.Alert)
				}
				assert.Equal(t, st.EndingCash.LessThan(st.MinimumCash), st.Alert)

				prevCash, prevDebt = st.EndingCash, st.EndingBankDebt
			}
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	in := twoPeriodInputs()
	in.Investment = series("2025/26", "300000")
	policy := revenuePolicy("0.10")
	svc := debtservice.Calculator{Rate: d("0.10")}

	a, err := Run(in, policy, svc)
	require.NoError(t, err)
	b, err := Run(in, policy, svc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_ValidationErrors(t *testing.T) {
	svc := debtservice.Calculator{Rate: d("0.1")}

	in := twoPeriodInputs()
	in.Periods = []model.Period{"2025/26", "2024/25"}
	_, err := Run(in, revenuePolicy("0.1"), svc)
	var poe *model.PeriodOrderError
	assert.True(t, errors.As(err, &poe))

	in = twoPeriodInputs()
	policy := revenuePolicy("0.1")
	policy.Kind = "HALF_OF_EVERYTHING"
	_, err = Run(in, policy, svc)
	var pce *model.PolicyConfigError
	assert.True(t, errors.As(err, &pce))

	in = twoPeriodInputs()
	in.Revenue["2031/32"] = d("1")
	_, err = Run(in, revenuePolicy("0.1"), svc)
	var die *model.DataIntegrityError
	assert.True(t, errors.As(err, &die))

	in = twoPeriodInputs()
	in.Bootstrap = 3
	_, err = Run(in, revenuePolicy("0.1"), svc)
	assert.Error(t, err)
}

func TestRun_EmptyInputsDegenerateToZero(t *testing.T) {
	in := Inputs{Periods: []model.Period{"2024/25", "2025/26"}}
	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: debtservice.DefaultBlendedRate})
	require.NoError(t, err)
	for _, st := range states {
		assert.True(t, st.EndingCash.IsZero())
		assert.True(t, st.EndingBankDebt.IsZero())
		assert.False(t, st.Alert)
	}
}
