package model

import "fmt"

// DataIntegrityError reports input that references periods or currencies
// outside the configured domain.
type DataIntegrityError struct {
	Instrument string
	Period     Period
	Reason     string
}

func (e *DataIntegrityError) Error() string {
	switch {
	case e.Instrument != "" && e.Period != "":
		return fmt.Sprintf("data integrity [%s @ %s]: %s", e.Instrument, e.Period, e.Reason)
	case e.Instrument != "":
		return fmt.Sprintf("data integrity [%s]: %s", e.Instrument, e.Reason)
	case e.Period != "":
		return fmt.Sprintf("data integrity [%s]: %s", e.Period, e.Reason)
	default:
		return "data integrity: " + e.Reason
	}
}

// PolicyConfigError reports a cash policy the engine cannot apply.
type PolicyConfigError struct {
	Kind   PolicyKind
	Reason string
}

func (e *PolicyConfigError) Error() string {
	return fmt.Sprintf("cash policy %q: %s", e.Kind, e.Reason)
}

// PeriodOrderError reports a period list that is not strictly increasing.
type PeriodOrderError struct {
	Index int
	Prev  Period
	Next  Period
}

func (e *PeriodOrderError) Error() string {
	return fmt.Sprintf("period %d: %q does not follow %q", e.Index, e.Next, e.Prev)
}
