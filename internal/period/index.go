package period

import (
	"fmt"

	"github.com/furrow-dev/furrow/internal/model"
)

// Index is the ordered list of seasons spanning a projection horizon.
type Index struct {
	periods []model.Period
	pos     map[model.Period]int
}

// NewIndex validates that periods are canonical season labels (as produced
// by Format) in strictly increasing order. Gaps are allowed; duplicates and
// reversals are not.
func NewIndex(periods []model.Period) (*Index, error) {
	ix := &Index{
		periods: make([]model.Period, len(periods)),
		pos:     make(map[model.Period]int, len(periods)),
	}
	copy(ix.periods, periods)

	prevYear := 0
	for i, p := range periods {
		year, err := StartYear(p)
		if err != nil {
			return nil, &model.DataIntegrityError{Period: p, Reason: err.Error()}
		}
		if want := Format(year); want != p {
			return nil, &model.DataIntegrityError{Period: p, Reason: fmt.Sprintf("non-canonical season label, want %s", want)}
		}
		if i > 0 && year <= prevYear {
			return nil, &model.PeriodOrderError{Index: i, Prev: periods[i-1], Next: p}
		}
		prevYear = year
		ix.pos[p] = i
	}
	return ix, nil
}

// Periods returns a copy of the ordered periods.
func (ix *Index) Periods() []model.Period {
	out := make([]model.Period, len(ix.periods))
	copy(out, ix.periods)
	return out
}

// Len returns the number of periods.
func (ix *Index) Len() int { return len(ix.periods) }

// Contains reports whether p is part of the horizon.
func (ix *Index) Contains(p model.Period) bool {
	_, ok := ix.pos[p]
	return ok
}

// Position returns the zero-based position of p.
func (ix *Index) Position(p model.Period) (int, bool) {
	i, ok := ix.pos[p]
	return i, ok
}

// Prev returns the period before p, if any.
func (ix *Index) Prev(p model.Period) (model.Period, bool) {
	i, ok := ix.pos[p]
	if !ok || i == 0 {
		return "", false
	}
	return ix.periods[i-1], true
}

// Split separates the first n bootstrap periods from the simulated ones.
func (ix *Index) Split(n int) (bootstrap, simulated []model.Period, err error) {
	if n < 0 || n > len(ix.periods) {
		return nil, nil, fmt.Errorf("bootstrap count %d outside horizon of %d periods", n, len(ix.periods))
	}
	all := ix.Periods()
	return all[:n], all[n:], nil
}

// CountBefore returns how many periods of the horizon start before p.
// It is how a "simulate from" season becomes a bootstrap count.
func (ix *Index) CountBefore(p model.Period) (int, error) {
	year, err := StartYear(p)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, q := range ix.periods {
		y, _ := StartYear(q)
		if y < year {
			n++
		}
	}
	return n, nil
}
