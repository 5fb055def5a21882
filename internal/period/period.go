// Package period handles crop-season labels such as "2024/25".
package period

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/furrow-dev/furrow/internal/model"
)

var seasonPattern = regexp.MustCompile(`^\s*(\d{4})\s*[/-]\s*(\d{2}|\d{4})\s*$`)

// Format returns the canonical season label starting in year, e.g. "2024/25".
func Format(year int) model.Period {
	return model.Period(fmt.Sprintf("%04d/%02d", year, (year+1)%100))
}

// Parse accepts "2024/25", "2024/2025" or "2024-25" and returns the
// canonical form.
func Parse(s string) (model.Period, error) {
	year, err := parseStart(s)
	if err != nil {
		return "", err
	}
	return Format(year), nil
}

// StartYear returns the calendar year a season starts in.
func StartYear(p model.Period) (int, error) {
	return parseStart(string(p))
}

func parseStart(s string) (int, error) {
	m := seasonPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid season %q", s)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		if end != (start+1)%100 {
			return 0, fmt.Errorf("invalid season %q: must span consecutive years", s)
		}
	} else if end != start+1 {
		return 0, fmt.Errorf("invalid season %q: must span consecutive years", s)
	}
	return start, nil
}

// Range returns count consecutive seasons beginning at first.
func Range(first model.Period, count int) ([]model.Period, error) {
	start, err := StartYear(first)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative period count %d", count)
	}
	out := make([]model.Period, count)
	for i := range out {
		out[i] = Format(start + i)
	}
	return out, nil
}
