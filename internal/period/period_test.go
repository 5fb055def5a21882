package period

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furrow-dev/furrow/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Period
		wantErr bool
	}{
		{"2024/25", "2024/25", false},
		{"2024/2025", "2024/25", false},
		{"2024-25", "2024/25", false},
		{" 1999/00 ", "1999/00", false},
		{"2024/26", "", true},
		{"2024/2026", "", true},
		{"24/25", "", true},
		{"P1", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "Parse(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRange(t *testing.T) {
	got, err := Range("2021/22", 4)
	require.NoError(t, err)
	assert.Equal(t, []model.Period{"2021/22", "2022/23", "2023/24", "2024/25"}, got)

	_, err = Range("bad", 2)
	assert.Error(t, err)
}

func TestNewIndex_Order(t *testing.T) {
	_, err := NewIndex([]model.Period{"2024/25", "2026/27"})
	require.NoError(t, err, "gaps are allowed")

	_, err = NewIndex([]model.Period{"2024/25", "2023/24"})
	var poe *model.PeriodOrderError
	require.True(t, errors.As(err, &poe))
	assert.Equal(t, 1, poe.Index)
	assert.Equal(t, model.Period("2024/25"), poe.Prev)

	_, err = NewIndex([]model.Period{"2024/25", "2024/25"})
	assert.True(t, errors.As(err, &poe), "duplicates are not strictly increasing")

	_, err = NewIndex([]model.Period{"2024/25", "someday"})
	var die *model.DataIntegrityError
	assert.True(t, errors.As(err, &die))
}

func TestNewIndex_RejectsNonCanonicalLabels(t *testing.T) {
	for _, label := range []model.Period{"2024/2025", "2024-25", " 2024/25"} {
		_, err := NewIndex([]model.Period{label})
		var die *model.DataIntegrityError
		require.True(t, errors.As(err, &die), label)
		assert.Equal(t, label, die.Period)
		assert.Contains(t, die.Reason, "want 2024/25")
	}

	canonical, err := Parse("2024-2025")
	require.NoError(t, err)
	ix, err := NewIndex([]model.Period{canonical})
	require.NoError(t, err)
	assert.True(t, ix.Contains("2024/25"))
}

func TestIndex_Lookups(t *testing.T) {
	periods, err := Range("2021/22", 5)
	require.NoError(t, err)
	ix, err := NewIndex(periods)
	require.NoError(t, err)

	assert.Equal(t, 5, ix.Len())
	assert.True(t, ix.Contains("2023/24"))
	assert.False(t, ix.Contains("2030/31"))

	pos, ok := ix.Position("2023/24")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)

	prev, ok := ix.Prev("2023/24")
	assert.True(t, ok)
	assert.Equal(t, model.Period("2022/23"), prev)

	_, ok = ix.Prev("2021/22")
	assert.False(t, ok)

	n, err := ix.CountBefore("2024/25")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	boot, sim, err := ix.Split(n)
	require.NoError(t, err)
	assert.Equal(t, []model.Period{"2021/22", "2022/23", "2023/24"}, boot)
	assert.Equal(t, []model.Period{"2024/25", "2025/26"}, sim)

	_, _, err = ix.Split(6)
	assert.Error(t, err)
}

func TestIndex_PeriodsIsCopy(t *testing.T) {
	ix, err := NewIndex([]model.Period{"2024/25"})
	require.NoError(t, err)
	ps := ix.Periods()
	ps[0] = "mutated"
	assert.True(t, ix.Contains("2024/25"))
	assert.Equal(t, model.Period("2024/25"), ix.Periods()[0])
}
