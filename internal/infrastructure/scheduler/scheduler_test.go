package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
	"github.com/odv/mercsync/internal/usecase/mocks"
)

func newTestScheduler(outboxRepo usecase.OutboxRepository) *Scheduler {
	accountRepo := mocks.NewMockAccountRepository()
	policyRepo := mocks.NewMockPolicyRepository()
	integrityUC := usecase.NewIntegrityUseCase(accountRepo, policyRepo)
	return New(integrityUC, outboxRepo, 24*time.Hour, nil, zerolog.Nop())
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := newTestScheduler(mocks.NewMockOutboxRepository())

	if err := s.Register("not a cron spec", "30 3 * * *"); err == nil {
		t.Fatal("expected error for invalid integrity spec")
	}

	if err := s.Register("0 3 * * *", "also bad"); err == nil {
		t.Fatal("expected error for invalid cleanup spec")
	}

	if err := s.Register("0 3 * * *", "30 3 * * *"); err != nil {
		t.Fatalf("expected valid specs to register: %v", err)
	}
}

func TestRunIntegrityNow(t *testing.T) {
	s := newTestScheduler(mocks.NewMockOutboxRepository())

	// Empty repositories sweep clean without panicking
	s.RunIntegrityNow()
}

func TestOutboxCleanupUsesRetentionCutoff(t *testing.T) {
	var gotCutoff time.Time
	outboxRepo := mocks.NewMockOutboxRepository()
	outboxRepo.DeletePublishedFunc = func(ctx context.Context, before time.Time) error {
		gotCutoff = before
		return nil
	}

	s := newTestScheduler(outboxRepo)
	start := time.Now()
	s.outboxCleanup()

	wantCutoff := start.Add(-24 * time.Hour)
	if gotCutoff.Before(wantCutoff.Add(-time.Minute)) || gotCutoff.After(wantCutoff.Add(time.Minute)) {
		t.Fatalf("expected cutoff near %v, got %v", wantCutoff, gotCutoff)
	}

	// Events newer than retention survive a real mock deletion
	fresh := &domain.OutboxEvent{ID: "ev-1", Published: true, CreatedAt: time.Now().Add(-time.Hour)}
	keepRepo := mocks.NewMockOutboxRepository()
	keepRepo.Events = append(keepRepo.Events, fresh)

	s2 := newTestScheduler(keepRepo)
	s2.outboxCleanup()

	if len(keepRepo.Events) != 1 {
		t.Fatalf("expected fresh published event to survive cleanup, got %d events", len(keepRepo.Events))
	}
}
