package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAccountName = errors.New("invalid account name")

const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
)

// ValidateAccountName validates an account display name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateRule validates a rule about to be scheduled. A nil threshold next
// to a threshold requirement is accepted: the decision function treats it as
// "not required" so a half-configured account fails open instead of alarming.
func ValidateRule(r Rule) error {
	if !r.RequiredDeposits.IsValid() {
		return fmt.Errorf("%w: deposits %q", ErrInvalidRequirement, r.RequiredDeposits)
	}

	if !r.RequiredCharges.IsValid() {
		return fmt.Errorf("%w: charges %q", ErrInvalidRequirement, r.RequiredCharges)
	}

	if r.ThresholdDeposits != nil && r.ThresholdDeposits.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: deposits threshold %s", ErrNegativeThreshold, r.ThresholdDeposits)
	}

	if r.ThresholdCharges != nil && r.ThresholdCharges.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: charges threshold %s", ErrNegativeThreshold, r.ThresholdCharges)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
