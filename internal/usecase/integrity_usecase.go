package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/odv/mercsync/internal/domain"
)

// IntegrityUseCase verifies the mirror-to-store invariant: for every account
// with policy records, the open tail's rule must equal the account's mirror
// fields. Both are only ever written in one transaction, so a mismatch means
// someone updated the mirror behind the store's back.
type IntegrityUseCase struct {
	accountRepo AccountRepository
	policyRepo  PolicyRepository
}

// NewIntegrityUseCase creates a new IntegrityUseCase.
func NewIntegrityUseCase(accountRepo AccountRepository, policyRepo PolicyRepository) *IntegrityUseCase {
	return &IntegrityUseCase{
		accountRepo: accountRepo,
		policyRepo:  policyRepo,
	}
}

// Mismatch kinds.
const (
	MismatchRuleDrift  = "rule_drift"
	MismatchNoOpenTail = "no_open_tail"
)

// IntegrityMismatch describes one account failing the invariant.
type IntegrityMismatch struct {
	AccountID  string
	PolicyID   string
	Kind       string
	MirrorRule domain.Rule
	TailRule   domain.Rule
}

func (m *IntegrityMismatch) String() string {
	return fmt.Sprintf("account %s: %s (policy %s)", m.AccountID, m.Kind, m.PolicyID)
}

// IntegrityReport is the result of one sweep.
type IntegrityReport struct {
	CheckedAccounts int
	Mismatches      []*IntegrityMismatch
	CheckedAt       time.Time
}

// Consistent reports whether the sweep found no violations.
func (r *IntegrityReport) Consistent() bool {
	return len(r.Mismatches) == 0
}

// CheckAll sweeps every account. Accounts without any policy record pass:
// there the mirror is authoritative by definition.
func (uc *IntegrityUseCase) CheckAll(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{CheckedAt: time.Now().UTC()}

	const pageSize = 500

	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			mismatch, err := uc.checkAccount(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to check account %s: %w", account.ID, err)
			}

			report.CheckedAccounts++
			if mismatch != nil {
				report.Mismatches = append(report.Mismatches, mismatch)
			}
		}

		if len(accounts) < pageSize {
			break
		}
	}

	return report, nil
}

func (uc *IntegrityUseCase) checkAccount(ctx context.Context, account *domain.Account) (*IntegrityMismatch, error) {
	tail, err := uc.policyRepo.GetOpenTail(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrPolicyNotFound) {
			return nil, err
		}

		// No open tail. Fine for an account with no records at all;
		// drift if closed records exist with nothing after them.
		records, err := uc.policyRepo.ListByAccount(ctx, account.ID, 1, 0)
		if err != nil {
			return nil, err
		}

		if len(records) == 0 {
			return nil, nil
		}

		return &IntegrityMismatch{
			AccountID:  account.ID,
			PolicyID:   records[0].ID,
			Kind:       MismatchNoOpenTail,
			MirrorRule: account.Rule,
		}, nil
	}

	if !tail.Rule.Equal(account.Rule) {
		return &IntegrityMismatch{
			AccountID:  account.ID,
			PolicyID:   tail.ID,
			Kind:       MismatchRuleDrift,
			MirrorRule: account.Rule,
			TailRule:   tail.Rule,
		}, nil
	}

	return nil, nil
}
