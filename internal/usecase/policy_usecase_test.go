package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
	"github.com/odv/mercsync/internal/usecase/mocks"
)

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func alwaysDeposits() domain.Rule {
	return domain.Rule{
		RequiredDeposits: domain.RequirementAlways,
		RequiredCharges:  domain.RequirementNone,
	}
}

type policyFixture struct {
	accountRepo *mocks.MockAccountRepository
	policyRepo  *mocks.MockPolicyRepository
	auditRepo   *mocks.MockAuditRepository
	outboxRepo  *mocks.MockOutboxRepository
	cache       *mocks.MockCache
	uc          *usecase.PolicyUseCase
}

func newPolicyFixture() *policyFixture {
	f := &policyFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		policyRepo:  mocks.NewMockPolicyRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		cache:       mocks.NewMockCache(),
	}

	f.uc = usecase.NewPolicyUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.policyRepo,
		f.auditRepo,
		f.outboxRepo,
		f.cache,
		mocks.NewMockIDGenerator(),
	)

	return f
}

func (f *policyFixture) seedAccount(t *testing.T, id string, rule domain.Rule) {
	t.Helper()

	err := f.accountRepo.Create(context.Background(), nil, &domain.Account{
		ID:   id,
		Name: "acct " + id,
		Rule: rule,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func TestPolicyUseCase_ApplyEdit_FreshAccount(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())

	pivot := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	record, err := f.uc.ApplyEdit(context.Background(), usecase.ApplyEditInput{
		AccountID:     "A",
		Rule:          alwaysDeposits(),
		EffectiveFrom: pivot,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !record.StartDate.Equal(pivot) {
		t.Errorf("start date = %s, want %s", record.StartDate, pivot)
	}
	if record.EndDate != nil {
		t.Error("new record should be the open tail")
	}

	// Mirror must reflect the new rule immediately.
	account, err := f.accountRepo.GetByID(context.Background(), "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Rule.Equal(alwaysDeposits()) {
		t.Error("account mirror fields not updated")
	}

	if len(f.auditRepo.Logs) != 1 {
		t.Errorf("expected 1 audit log, got %d", len(f.auditRepo.Logs))
	}
	if len(f.outboxRepo.Events) != 1 {
		t.Errorf("expected 1 outbox event, got %d", len(f.outboxRepo.Events))
	}
}

func TestPolicyUseCase_ApplyEdit_ClosesOpenTail(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())
	ctx := context.Background()

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{
		AccountID: "A", Rule: alwaysDeposits(), EffectiveFrom: t1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newRule := domain.Rule{
		RequiredDeposits:  domain.RequirementThreshold,
		ThresholdDeposits: decPtr("100.00"),
		RequiredCharges:   domain.RequirementAlways,
	}

	second, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{
		AccountID: "A", Rule: newRule, EffectiveFrom: t2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := f.uc.History(ctx, usecase.HistoryInput{AccountID: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Newest first; the old tail is closed exactly at the pivot.
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Error("history not ordered newest first")
	}
	if records[1].EndDate == nil || !records[1].EndDate.Equal(t2) {
		t.Errorf("closed tail end = %v, want %s", records[1].EndDate, t2)
	}
	if records[0].EndDate != nil {
		t.Error("new tail should be open")
	}

	// Historical lookups are untouched by the future-dated change.
	mid := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	covering, err := f.policyRepo.GetCovering(ctx, "A", mid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if covering.ID != first.ID {
		t.Error("covering record for pre-pivot timestamp changed")
	}

	// Mirror shows the scheduled rule even though the pivot is future.
	account, _ := f.accountRepo.GetByID(ctx, "A")
	if !account.Rule.Equal(newRule) {
		t.Error("mirror should show the intended configuration going forward")
	}
}

func TestPolicyUseCase_ApplyEdit_Idempotent(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())
	ctx := context.Background()

	pivot := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rule := alwaysDeposits()

	first, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{AccountID: "A", Rule: rule, EffectiveFrom: pivot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{AccountID: "A", Rule: rule, EffectiveFrom: pivot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if again.ID != first.ID {
		t.Error("idempotent edit should return the existing tail")
	}

	records, _ := f.uc.History(ctx, usecase.HistoryInput{AccountID: "A"})
	if len(records) != 1 {
		t.Errorf("expected exactly 1 record after duplicate edit, got %d", len(records))
	}
}

func TestPolicyUseCase_ApplyEdit_InvalidPivot(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())
	ctx := context.Background()

	pivot := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{AccountID: "A", Rule: alwaysDeposits(), EffectiveFrom: pivot}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		pivot time.Time
	}{
		{"before tail start", pivot.AddDate(0, -1, 0)},
		{"equal to tail start with different rule", pivot},
		{"zero time", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{
				AccountID: "A",
				Rule: domain.Rule{
					RequiredDeposits: domain.RequirementNone,
					RequiredCharges:  domain.RequirementAlways,
				},
				EffectiveFrom: tt.pivot,
			})
			if !errors.Is(err, domain.ErrInvalidPivot) {
				t.Errorf("expected ErrInvalidPivot, got %v", err)
			}
		})
	}

	// Rejected edits leave no records behind.
	records, _ := f.uc.History(ctx, usecase.HistoryInput{AccountID: "A"})
	if len(records) != 1 {
		t.Errorf("expected 1 record after rejected edits, got %d", len(records))
	}
}

func TestPolicyUseCase_ApplyEdit_InvalidRule(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())

	_, err := f.uc.ApplyEdit(context.Background(), usecase.ApplyEditInput{
		AccountID:     "A",
		Rule:          domain.Rule{RequiredDeposits: "sometimes", RequiredCharges: domain.RequirementNone},
		EffectiveFrom: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrInvalidRequirement) {
		t.Errorf("expected ErrInvalidRequirement, got %v", err)
	}
}

func TestPolicyUseCase_ApplyEdit_AccountNotFound(t *testing.T) {
	f := newPolicyFixture()

	_, err := f.uc.ApplyEdit(context.Background(), usecase.ApplyEditInput{
		AccountID:     "missing",
		Rule:          alwaysDeposits(),
		EffectiveFrom: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestPolicyUseCase_Current_CacheInvalidation(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())
	ctx := context.Background()

	rule, err := f.uc.Current(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rule.Equal(domain.DefaultRule()) {
		t.Error("expected default rule before any edit")
	}

	newRule := alwaysDeposits()
	if _, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{
		AccountID: "A", Rule: newRule, EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rule, err = f.uc.Current(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rule.Equal(newRule) {
		t.Error("Current should serve the edited rule, not a stale cache entry")
	}
}

// TestPolicyUseCase_EditSequenceInvariants drives a seeded random lifetime of
// edits and checks the interval invariants after each step: exactly one open
// tail, pairwise-disjoint half-open intervals, and a contiguous timeline.
func TestPolicyUseCase_EditSequenceInvariants(t *testing.T) {
	f := newPolicyFixture()
	f.seedAccount(t, "A", domain.DefaultRule())
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	pivot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rules := []domain.Rule{
		domain.DefaultRule(),
		alwaysDeposits(),
		{RequiredDeposits: domain.RequirementNone, RequiredCharges: domain.RequirementAlways},
		{
			RequiredDeposits:  domain.RequirementThreshold,
			ThresholdDeposits: decPtr("100.00"),
			RequiredCharges:   domain.RequirementThreshold,
			ThresholdCharges:  decPtr("25.00"),
		},
	}

	applied := 0
	for i := 0; i < 200; i++ {
		rule := rules[rng.Intn(len(rules))]

		// Occasionally replay the current pivot to exercise the
		// idempotence and invalid-pivot branches.
		if rng.Intn(10) != 0 {
			pivot = pivot.Add(time.Duration(1+rng.Intn(72)) * time.Hour)
		}

		_, err := f.uc.ApplyEdit(ctx, usecase.ApplyEditInput{AccountID: "A", Rule: rule, EffectiveFrom: pivot})
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidPivot) {
				t.Fatalf("step %d: unexpected error: %v", i, err)
			}
			continue
		}
		applied++

		records, err := f.uc.History(ctx, usecase.HistoryInput{AccountID: "A", Limit: 1000})
		if err != nil {
			t.Fatalf("step %d: history: %v", i, err)
		}

		assertIntervalInvariants(t, i, records)
	}

	if applied < 100 {
		t.Fatalf("random walk applied only %d edits", applied)
	}
}

func assertIntervalInvariants(t *testing.T, step int, records []*domain.PolicyRecord) {
	t.Helper()

	openTails := 0
	for _, rec := range records {
		if rec.EndDate == nil {
			openTails++
		} else if !rec.StartDate.Before(*rec.EndDate) {
			t.Fatalf("step %d: record %s has empty interval", step, rec.ID)
		}
	}
	if openTails != 1 {
		t.Fatalf("step %d: %d open tails, want exactly 1", step, openTails)
	}

	// records are newest-first: walk from the oldest forward and require
	// each end to meet the next start exactly.
	for i := len(records) - 1; i > 0; i-- {
		older, newer := records[i], records[i-1]
		if older.EndDate == nil {
			t.Fatalf("step %d: non-tail record %s is open", step, older.ID)
		}
		if !older.EndDate.Equal(newer.StartDate) {
			t.Fatalf("step %d: gap or overlap between %s and %s", step, older.ID, newer.ID)
		}
	}
}
