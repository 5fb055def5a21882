package balancesheet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furrow-dev/furrow/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func defaultOptions() Options {
	return Options{
		CurrentRatio:   d("0.3"),
		ReceivablesPct: d("0.15"),
		InventoryPct:   d("0.10"),
		ShareCapital:   d("500000"),
	}
}

func sampleInputs() Inputs {
	return Inputs{
		States: []model.WaterfallState{
			{Period: "2024/25", Simulated: true, EndingCash: d("100000"), EndingBankDebt: d("1500000")},
			{Period: "2025/26", Simulated: true, EndingCash: d("120000"), EndingBankDebt: d("920000")},
			{Period: "2026/27", Simulated: true, EndingCash: d("130000"), EndingBankDebt: d("0")},
		},
		Cost: map[model.Period]decimal.Decimal{"2024/25": d("400000"), "2025/26": d("450000"), "2026/27": d("500000")},
		Investment: map[model.AssetClass]map[model.Period]decimal.Decimal{
			model.AssetLand:      {"2024/25": d("1000000")},
			model.AssetMachinery: {"2024/25": d("200000"), "2026/27": d("-50000")},
		},
		OpeningAssets: map[model.AssetClass]decimal.Decimal{
			model.AssetLand:      d("3000000"),
			model.AssetMachinery: d("800000"),
		},
		Suppliers: map[model.Period]decimal.Decimal{"2024/25": d("50000")},
		LandDebt:  map[model.Period]decimal.Decimal{"2024/25": d("100000"), "2025/26": d("100000")},
		OtherDebt: map[model.Period]decimal.Decimal{"2024/25": d("20000")},
		Leases:    map[model.Period]decimal.Decimal{"2025/26": d("30000")},
	}
}

func TestReconcile_Sections(t *testing.T) {
	snaps, err := Reconcile(sampleInputs(), defaultOptions())
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	s := snaps[0]
	assert.True(t, d("60000").Equal(s.CurrentAssets.Receivables))
	assert.True(t, d("40000").Equal(s.CurrentAssets.Inventory))
	assert.True(t, d("200000").Equal(s.CurrentAssets.Total))
	assert.True(t, d("4000000").Equal(s.FixedAssets.Land))
	assert.True(t, d("1000000").Equal(s.FixedAssets.Machinery))
	assert.True(t, d("5000000").Equal(s.FixedAssets.Total))

	assert.True(t, d("450000").Equal(s.CurrentLiabilities.ShortTermBankDebt))
	assert.True(t, d("500000").Equal(s.CurrentLiabilities.Total))
	assert.True(t, d("1050000").Equal(s.LongTermLiabilities.LongTermBankDebt))
	assert.True(t, d("1170000").Equal(s.LongTermLiabilities.Total))

	assert.True(t, d("5200000").Equal(s.TotalAssets))
	assert.True(t, d("1670000").Equal(s.TotalLiabilities))
	assert.True(t, d("3530000").Equal(s.Equity.Total))
	assert.True(t, d("500000").Equal(s.Equity.OpeningEquity))
	assert.True(t, d("3030000").Equal(s.Equity.NetResult))
	assert.True(t, d("3030000").Equal(s.Equity.RetainedEarnings))
	assert.True(t, s.Balanced)
}

func TestReconcile_BalanceInvariant(t *testing.T) {
	for _, ratio := range []string{"0", "0.25", "0.5", "1"} {
		opts := defaultOptions()
		opts.CurrentRatio = d(ratio)
		snaps, err := Reconcile(sampleInputs(), opts)
		require.NoError(t, err)
		for _, s := range snaps {
			assert.True(t, s.TotalAssets.Equal(s.TotalLiabilitiesAndEquity), "%s ratio %s", s.Period, ratio)
			assert.True(t, s.Balanced)
			assert.True(t, s.Difference.IsZero())
		}
		assert.Empty(t, Check(snaps))
	}
}

func TestReconcile_FixedAssetsCarryForward(t *testing.T) {
	snaps, err := Reconcile(sampleInputs(), defaultOptions())
	require.NoError(t, err)

	assert.True(t, snaps[0].FixedAssets.Total.Equal(snaps[1].FixedAssets.Total), "no investment data carries the prior value")
	assert.True(t, d("1050000").Equal(snaps[2].FixedAssets.Machinery), "investment accumulates by absolute value")
	for i := 1; i < len(snaps); i++ {
		assert.True(t, snaps[i].FixedAssets.Total.GreaterThanOrEqual(snaps[i-1].FixedAssets.Total))
	}
}

func TestReconcile_EquityRollsForward(t *testing.T) {
	snaps, err := Reconcile(sampleInputs(), defaultOptions())
	require.NoError(t, err)
	for i := 1; i < len(snaps); i++ {
		assert.True(t, snaps[i-1].Equity.Total.Equal(snaps[i].Equity.OpeningEquity))
		assert.True(t, snaps[i].Equity.Total.Equal(snaps[i].Equity.OpeningEquity.Add(snaps[i].Equity.NetResult)))
	}
}

func TestReconcile_Empty(t *testing.T) {
	snaps, err := Reconcile(Inputs{States: []model.WaterfallState{{Period: "2024/25"}}}, Options{})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].TotalAssets.IsZero())
	assert.True(t, snaps[0].Equity.Total.IsZero())
	assert.True(t, snaps[0].Balanced)
}

func TestOptionsValidate(t *testing.T) {
	opts := defaultOptions()
	opts.CurrentRatio = d("1.2")
	_, err := Reconcile(sampleInputs(), opts)
	assert.Error(t, err)

	opts = defaultOptions()
	opts.InventoryPct = d("-0.1")
	assert.Error(t, opts.Validate())
}

func TestCheck_DetectsImbalance(t *testing.T) {
	snaps, err := Reconcile(sampleInputs(), defaultOptions())
	require.NoError(t, err)
	snaps[1].Equity.Total = snaps[1].Equity.Total.Add(d("1"))
	assert.Equal(t, []model.Period{"2025/26"}, Check(snaps))
}
