package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Requirement says when a receipt attachment is demanded for a transaction.
type Requirement string

const (
	RequirementNone      Requirement = "none"
	RequirementAlways    Requirement = "always"
	RequirementThreshold Requirement = "threshold"
)

// IsValid reports whether the requirement is a known value.
func (r Requirement) IsValid() bool {
	switch r {
	case RequirementNone, RequirementAlways, RequirementThreshold:
		return true
	}
	return false
}

// Rule is the four-tuple receipt rule: one requirement per transaction side,
// each with an optional absolute-amount threshold.
type Rule struct {
	RequiredDeposits  Requirement
	ThresholdDeposits *decimal.Decimal
	RequiredCharges   Requirement
	ThresholdCharges  *decimal.Decimal
}

// DefaultRule is the rule of an account nobody configured yet.
func DefaultRule() Rule {
	return Rule{
		RequiredDeposits: RequirementNone,
		RequiredCharges:  RequirementNone,
	}
}

// Equal reports whether two rules are identical, threshold values included.
func (r Rule) Equal(other Rule) bool {
	return r.RequiredDeposits == other.RequiredDeposits &&
		r.RequiredCharges == other.RequiredCharges &&
		decimalPtrEqual(r.ThresholdDeposits, other.ThresholdDeposits) &&
		decimalPtrEqual(r.ThresholdCharges, other.ThresholdCharges)
}

// ReceiptRequiredFor applies the rule to a signed transaction amount.
// Positive amounts are deposits; zero counts as a charge. A threshold
// requirement with no threshold configured fails open.
func (r Rule) ReceiptRequiredFor(amount decimal.Decimal) bool {
	req, thr := r.RequiredCharges, r.ThresholdCharges
	if amount.IsPositive() {
		req, thr = r.RequiredDeposits, r.ThresholdDeposits
	}

	switch req {
	case RequirementAlways:
		return true
	case RequirementThreshold:
		if thr == nil {
			return false
		}
		return amount.Abs().GreaterThanOrEqual(*thr)
	default:
		return false
	}
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// PolicyRecord binds a rule to a half-open effectiveness interval
// [StartDate, EndDate). A nil EndDate marks the account's open tail.
// Records are closed, never rewritten; the full set is the audit history.
type PolicyRecord struct {
	ID        string
	AccountID string
	StartDate time.Time
	EndDate   *time.Time
	Rule      Rule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the record is the open tail.
func (p *PolicyRecord) IsOpen() bool {
	return p.EndDate == nil
}

// Covers reports whether t falls inside the record's interval.
func (p *PolicyRecord) Covers(t time.Time) bool {
	if t.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || t.Before(*p.EndDate)
}

// Validate checks the interval and rule of a record about to be persisted.
func (p *PolicyRecord) Validate() error {
	if p.EndDate != nil && !p.StartDate.Before(*p.EndDate) {
		return ErrInvalidInterval
	}
	return ValidateRule(p.Rule)
}
