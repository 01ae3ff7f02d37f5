package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
	"github.com/odv/mercsync/internal/usecase/mocks"
)

type accountFixture struct {
	accountRepo *mocks.MockAccountRepository
	policyRepo  *mocks.MockPolicyRepository
	auditRepo   *mocks.MockAuditRepository
	outboxRepo  *mocks.MockOutboxRepository
	uc          *usecase.AccountUseCase
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		policyRepo:  mocks.NewMockPolicyRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
	}
	f.uc = usecase.NewAccountUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.policyRepo,
		f.auditRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
	)
	return f
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	rule := domain.Rule{
		RequiredDeposits: domain.RequirementAlways,
		RequiredCharges:  domain.RequirementNone,
	}

	account, err := f.uc.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:             "Operating",
		MercuryAccountID: "merc-123",
		Rule:             rule,
		Actor:            "ops@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID == "" {
		t.Fatal("expected generated account ID")
	}
	if !account.Rule.Equal(rule) {
		t.Error("mirror rule not set from input")
	}

	// Genesis writes the open tail alongside the account.
	tail, err := f.policyRepo.GetOpenTail(ctx, account.ID)
	if err != nil {
		t.Fatalf("expected genesis open tail: %v", err)
	}
	if !tail.Rule.Equal(rule) {
		t.Error("genesis tail rule differs from mirror")
	}
	if tail.EndDate != nil {
		t.Error("genesis tail should be open")
	}

	if len(f.auditRepo.Logs) != 1 {
		t.Errorf("expected 1 audit log, got %d", len(f.auditRepo.Logs))
	}
	if len(f.outboxRepo.Events) != 1 {
		t.Errorf("expected 1 outbox event, got %d", len(f.outboxRepo.Events))
	}
}

func TestAccountUseCase_CreateAccount_DefaultRule(t *testing.T) {
	f := newAccountFixture()

	account, err := f.uc.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "Payroll"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Rule.Equal(domain.DefaultRule()) {
		t.Error("empty rule input should fall back to the default rule")
	}
}

func TestAccountUseCase_CreateAccount_Validation(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{Name: "  "},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name: "unknown requirement",
			input: usecase.CreateAccountInput{
				Name: "Operating",
				Rule: domain.Rule{RequiredDeposits: "maybe", RequiredCharges: domain.RequirementNone},
			},
			wantErr: domain.ErrInvalidRequirement,
		},
		{
			name: "negative threshold",
			input: usecase.CreateAccountInput{
				Name: "Operating",
				Rule: domain.Rule{
					RequiredDeposits:  domain.RequirementThreshold,
					ThresholdDeposits: decPtr("-5"),
					RequiredCharges:   domain.RequirementNone,
				},
			},
			wantErr: domain.ErrNegativeThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateAccount(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccountUseCase_GetAccount_NotFound(t *testing.T) {
	f := newAccountFixture()

	_, err := f.uc.GetAccount(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	for _, name := range []string{"Operating", "Payroll", "Savings"} {
		if _, err := f.uc.CreateAccount(ctx, usecase.CreateAccountInput{Name: name}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	accounts, err := f.uc.ListAccounts(ctx, usecase.ListAccountsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 3 {
		t.Errorf("expected 3 accounts, got %d", len(accounts))
	}
}
