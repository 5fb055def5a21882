package waterfall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furrow-dev/furrow/internal/debtservice"
	"github.com/furrow-dev/furrow/internal/model"
)

func TestBaselineFromReference(t *testing.T) {
	bank := series("2023/24", "90000", "2024/25", "250000", "2025/26", "400000")
	periods := []model.Period{"2022/23", "2023/24", "2024/25", "2025/26", "2026/27"}

	got, err := BaselineFromReference(bank, "2024/25", "2024/25", periods)
	require.NoError(t, err)

	assert.NotContains(t, got, model.Period("2022/23"))
	assert.NotContains(t, got, model.Period("2023/24"))
	for _, p := range periods[2:] {
		assertDec(t, "250000", got[p], string(p))
	}

	_, err = BaselineFromReference(bank, "2024/25", "soon", periods)
	assert.Error(t, err)
}

func TestBaselineFromReference_MissingReference(t *testing.T) {
	got, err := BaselineFromReference(nil, "2024/25", "2024/25", []model.Period{"2024/25"})
	require.NoError(t, err)
	assert.True(t, got["2024/25"].IsZero())
}

func TestSummarize(t *testing.T) {
	in := twoPeriodInputs()
	in.Periods = append([]model.Period{"2023/24"}, in.Periods...)
	in.Bootstrap = 1

	states, err := Run(in, revenuePolicy("0.10"), debtservice.Calculator{Rate: d("0.10")})
	require.NoError(t, err)

	tot := Summarize(states)
	assert.Equal(t, 2, tot.Simulated)
	assert.Equal(t, 0, tot.Alerts)
	// 300000 + 560000 after paying 200000 and 170000 interest
	assertDec(t, "860000", tot.Repayment, "repayment")
	assertDec(t, "370000", tot.DebtService, "debt service")
	assertDec(t, "1350000", tot.OperatingCashFlow, "ocf")
	assertDec(t, "120000", tot.FinalCash, "final cash")
	assertDec(t, "1140000", tot.FinalBankDebt, "final bank debt")
	assert.Empty(t, Alerts(states))
}
