package usecase

import (
	"context"
	"time"

	"github.com/odv/mercsync/internal/domain"
)

// AccountUseCase handles account registration and reads.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	policyRepo  PolicyRepository
	auditRepo   AuditRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	policyRepo PolicyRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		policyRepo:  policyRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for registering an account.
type CreateAccountInput struct {
	Name             string
	MercuryAccountID string
	Rule             domain.Rule
	Actor            string
}

// CreateAccount registers a synced account. Genesis writes the account row
// and its open-tail policy record [now, ∞) with the configured rule in one
// transaction, so mirror and tail agree from the first commit.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if input.Rule == (domain.Rule{}) {
		input.Rule = domain.DefaultRule()
	}

	if err := domain.ValidateRule(input.Rule); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		Name:             input.Name,
		MercuryAccountID: input.MercuryAccountID,
		Rule:             input.Rule,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	genesis := &domain.PolicyRecord{
		ID:        uc.idGen.Generate(),
		AccountID: account.ID,
		StartDate: now,
		Rule:      input.Rule,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.policyRepo.Create(ctx, tx, genesis); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			Actor:        input.Actor,
			Action:       domain.AuditActionAccountCreated,
			ResourceType: domain.AuditResourceAccount,
			ResourceID:   account.ID,
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
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: map[string]any{
				"account_id":         account.ID,
				"name":               account.Name,
				"mercury_account_id": account.MercuryAccountID,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, limit, offset)
}
