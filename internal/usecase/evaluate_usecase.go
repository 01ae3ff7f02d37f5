package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odv/mercsync/internal/domain"
)

// EvaluateUseCase answers, for one transaction row, whether a receipt is
// required and whether one is attached. Pure read: one policy lookup, no
// side effects.
type EvaluateUseCase struct {
	accountRepo AccountRepository
	policyRepo  PolicyRepository
}

// NewEvaluateUseCase creates a new EvaluateUseCase.
func NewEvaluateUseCase(accountRepo AccountRepository, policyRepo PolicyRepository) *EvaluateUseCase {
	return &EvaluateUseCase{
		accountRepo: accountRepo,
		policyRepo:  policyRepo,
	}
}

// EvaluateInput represents one transaction to classify.
type EvaluateInput struct {
	AccountID      string
	Amount         decimal.Decimal
	PostedAt       *time.Time
	HasAttachments bool
}

// Evaluate resolves the rule governing the transaction's posting time and
// composes it with attachment presence. Resolution order: the policy record
// covering PostedAt when one exists, otherwise the account mirror fields.
// The mirror fallback also applies to transactions predating the first
// record (backfilled history from before the account was registered here).
func (uc *EvaluateUseCase) Evaluate(ctx context.Context, input EvaluateInput) (domain.ReceiptStatus, error) {
	rule, err := uc.resolveRule(ctx, input.AccountID, input.PostedAt)
	if err != nil {
		return "", err
	}

	required := rule.ReceiptRequiredFor(input.Amount)

	return domain.ReceiptStatusFor(required, input.HasAttachments), nil
}

func (uc *EvaluateUseCase) resolveRule(ctx context.Context, accountID string, postedAt *time.Time) (domain.Rule, error) {
	if postedAt != nil {
		record, err := uc.policyRepo.GetCovering(ctx, accountID, postedAt.UTC())
		if err == nil {
			return record.Rule, nil
		}

		if !errors.Is(err, domain.ErrPolicyNotFound) {
			return domain.Rule{}, err
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Rule{}, err
	}

	return account.Rule, nil
}
