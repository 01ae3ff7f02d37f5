package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/odv/mercsync/internal/domain"
)

// PolicyUseCase owns the receipt-policy lifecycle of an account: scheduling
// rule changes with interval-closure semantics, reading the current rule,
// and listing history for audit.
type PolicyUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	policyRepo  PolicyRepository
	auditRepo   AuditRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
}

// NewPolicyUseCase creates a new PolicyUseCase. auditRepo, outboxRepo and
// cache may be nil; the corresponding side writes are skipped.
func NewPolicyUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	policyRepo PolicyRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
) *PolicyUseCase {
	return &PolicyUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		policyRepo:  policyRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
	}
}

// ApplyEditInput represents an edit intent from the web tier.
type ApplyEditInput struct {
	AccountID     string
	Rule          domain.Rule
	EffectiveFrom time.Time
	Actor         string
}

// ApplyEdit schedules a rule change at the effective-from pivot. The open
// tail (if any) is closed at the pivot and a new open-ended record inserted;
// the account mirror fields are rewritten in the same transaction, so the UI
// shows the intended configuration even for future-dated pivots. Reapplying
// the tail's own rule at the tail's own start date is a no-op.
//
// The pivot may lie in the future; "now" is never interpreted here, the
// caller passes the intended pivot. A pivot not strictly after the tail's
// start fails with domain.ErrInvalidPivot and nothing is written.
func (uc *PolicyUseCase) ApplyEdit(ctx context.Context, input ApplyEditInput) (*domain.PolicyRecord, error) {
	if err := domain.ValidateRule(input.Rule); err != nil {
		return nil, err
	}

	if input.EffectiveFrom.IsZero() {
		return nil, domain.ErrInvalidPivot
	}

	effectiveFrom := input.EffectiveFrom.UTC()

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the account row first so concurrent edits serialize even before
	// the first record exists.
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	tail, err := uc.policyRepo.GetOpenTailForUpdate(ctx, tx, input.AccountID)
	if err != nil && !errors.Is(err, domain.ErrPolicyNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	if tail != nil {
		if tail.StartDate.Equal(effectiveFrom) && tail.Rule.Equal(input.Rule) {
			// Idempotent re-submit of the current configuration.
			return tail, nil
		}

		if !effectiveFrom.After(tail.StartDate) {
			return nil, domain.ErrInvalidPivot
		}

		if err := uc.policyRepo.CloseTail(ctx, tx, tail.ID, effectiveFrom, now); err != nil {
			return nil, err
		}
	}

	record := &domain.PolicyRecord{
		ID:        uc.idGen.Generate(),
		AccountID: account.ID,
		StartDate: effectiveFrom,
		Rule:      input.Rule,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := uc.policyRepo.Create(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateRule(ctx, tx, account.ID, input.Rule, now); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			Actor:        input.Actor,
			Action:       domain.AuditActionPolicyScheduled,
			ResourceType: domain.AuditResourcePolicy,
			ResourceID:   record.ID,
			BeforeState:  ruleToState(account.Rule),
			AfterState:   ruleToState(input.Rule),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return nil, err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypePolicy,
			EventType:     domain.EventTypePolicyScheduled,
			Payload:       policyScheduledPayload(record, tail),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		// Best effort: a stale entry expires on its own TTL.
		_ = uc.cache.Delete(ctx, currentRuleKey(account.ID))
	}

	return record, nil
}

// Current returns the account's mirror rule: the configuration going forward,
// including any future-dated pivot already applied.
func (uc *PolicyUseCase) Current(ctx context.Context, accountID string) (domain.Rule, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, currentRuleKey(accountID)); err == nil {
			var rule domain.Rule
			if err := json.Unmarshal([]byte(cached), &rule); err == nil {
				return rule, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Rule{}, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(account.Rule); err == nil {
			_ = uc.cache.Set(ctx, currentRuleKey(accountID), string(raw), CurrentRuleCacheTTL)
		}
	}

	return account.Rule, nil
}

// HistoryInput represents input for listing policy history.
type HistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// History lists an account's policy records newest first. Adjacent records
// with equal rules are preserved, not merged; the audit trail keeps every
// scheduled change.
func (uc *PolicyUseCase) History(ctx context.Context, input HistoryInput) ([]*domain.PolicyRecord, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.policyRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

func currentRuleKey(accountID string) string {
	return "rule:current:" + accountID
}

func ruleToState(rule domain.Rule) map[string]any {
	state := map[string]any{
		"required_deposits": string(rule.RequiredDeposits),
		"required_charges":  string(rule.RequiredCharges),
	}

	if rule.ThresholdDeposits != nil {
		state["threshold_deposits"] = rule.ThresholdDeposits.String()
	}

	if rule.ThresholdCharges != nil {
		state["threshold_charges"] = rule.ThresholdCharges.String()
	}

	return state
}

func policyScheduledPayload(record *domain.PolicyRecord, closedTail *domain.PolicyRecord) map[string]any {
	payload := map[string]any{
		"policy_id":      record.ID,
		"account_id":     record.AccountID,
		"effective_from": record.StartDate.Format(time.RFC3339),
	}

	if closedTail != nil {
		payload["closed_policy"] = closedTail.ID
	}

	return payload
}
