package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PolicyKind selects how the minimum cash floor is derived.
type PolicyKind string

const (
	PolicyFixed          PolicyKind = "FIXED"
	PolicyRevenuePercent PolicyKind = "REVENUE_PERCENT"
	PolicyCostPercent    PolicyKind = "COST_PERCENT"
)

// Priority decides what gives way when cash would fall below the floor.
type Priority string

const (
	// PriorityPreserveCash borrows to keep cash at the floor.
	PriorityPreserveCash Priority = "PRESERVE_CASH"
	// PriorityPayDownDebt never draws new credit; breaches raise alerts.
	PriorityPayDownDebt Priority = "PAY_DOWN_DEBT"
)

// ParsePolicyKind accepts the canonical names and their lowercase,
// "percentage" spelled variants.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIXED":
		return PolicyFixed, nil
	case "REVENUE_PERCENT", "REVENUE_PERCENTAGE":
		return PolicyRevenuePercent, nil
	case "COST_PERCENT", "COST_PERCENTAGE":
		return PolicyCostPercent, nil
	default:
		return PolicyKind(s), &PolicyConfigError{Kind: PolicyKind(s), Reason: "unrecognized kind"}
	}
}

// ParsePriority accepts PRESERVE_CASH/cash and PAY_DOWN_DEBT/debt.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRESERVE_CASH", "CASH", "":
		return PriorityPreserveCash, nil
	case "PAY_DOWN_DEBT", "DEBT":
		return PriorityPayDownDebt, nil
	default:
		return Priority(s), &PolicyConfigError{Reason: "unrecognized priority " + s}
	}
}

// CashPolicy configures the minimum cash balance and how it is enforced.
type CashPolicy struct {
	Enabled  bool
	Kind     PolicyKind
	Value    decimal.Decimal // absolute floor for FIXED, fraction otherwise
	Priority Priority
}

// Validate checks the policy without evaluating it. A disabled policy is
// still validated so a bad config fails the same way either way.
func (p CashPolicy) Validate() error {
	switch p.Kind {
	case PolicyFixed, PolicyRevenuePercent, PolicyCostPercent:
	default:
		return &PolicyConfigError{Kind: p.Kind, Reason: "unrecognized kind"}
	}
	switch p.Priority {
	case PriorityPreserveCash, PriorityPayDownDebt:
	default:
		return &PolicyConfigError{Kind: p.Kind, Reason: "unrecognized priority " + string(p.Priority)}
	}
	if p.Value.IsNegative() {
		return &PolicyConfigError{Kind: p.Kind, Reason: "value must not be negative"}
	}
	return nil
}

// MinimumCash returns the cash floor for a period with the given revenue
// and agricultural cost. It is 0 when the policy is disabled.
func (p CashPolicy) MinimumCash(revenue, cost decimal.Decimal) (decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return decimal.Zero, err
	}
	if !p.Enabled {
		return decimal.Zero, nil
	}
	switch p.Kind {
	case PolicyRevenuePercent:
		return percentOf(revenue, p.Value), nil
	case PolicyCostPercent:
		return percentOf(cost.Abs(), p.Value), nil
	default:
		return p.Value, nil
	}
}

// percentOf never goes below zero; a non-positive base yields a zero floor.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(pct)
}
