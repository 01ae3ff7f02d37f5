package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/odv/mercsync/internal/infrastructure/metrics"
	"github.com/odv/mercsync/internal/usecase"
)

// Scheduler runs the background sweeps: the nightly integrity check that
// compares every account mirror against its open tail, and the cleanup of
// published outbox events past retention.
type Scheduler struct {
	cron        *cron.Cron
	integrityUC *usecase.IntegrityUseCase
	outboxRepo  usecase.OutboxRepository
	retention   time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// New creates a new Scheduler.
func New(
	integrityUC *usecase.IntegrityUseCase,
	outboxRepo usecase.OutboxRepository,
	retention time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		integrityUC: integrityUC,
		outboxRepo:  outboxRepo,
		retention:   retention,
		metrics:     m,
		logger:      logger,
	}
}

// Register wires the sweep jobs onto their cron specs.
func (s *Scheduler) Register(integritySpec, cleanupSpec string) error {
	if _, err := s.cron.AddFunc(integritySpec, s.integritySweep); err != nil {
		return fmt.Errorf("register integrity sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(cleanupSpec, s.outboxCleanup); err != nil {
		return fmt.Errorf("register outbox cleanup: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("scheduler stopped")
}

// RunIntegrityNow executes the integrity sweep immediately.
func (s *Scheduler) RunIntegrityNow() {
	s.integritySweep()
}

func (s *Scheduler) integritySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info().Msg("running integrity sweep")

	report, err := s.integrityUC.CheckAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("integrity sweep failed")
		return
	}

	if s.metrics != nil {
		s.metrics.IntegritySweeps.Inc()
		for _, mismatch := range report.Mismatches {
			s.metrics.IntegrityMismatches.WithLabelValues(mismatch.Kind).Inc()
		}
	}

	if report.Consistent() {
		s.logger.Info().
			Int("accounts_checked", report.CheckedAccounts).
			Msg("integrity sweep clean")
		return
	}

	for _, mismatch := range report.Mismatches {
		s.logger.Warn().
			Str("account_id", mismatch.AccountID).
			Str("kind", mismatch.Kind).
			Str("detail", mismatch.String()).
			Msg("integrity mismatch")
	}
}

func (s *Scheduler) outboxCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	if err := s.outboxRepo.DeletePublished(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Msg("outbox cleanup failed")
		return
	}

	s.logger.Info().Time("cutoff", cutoff).Msg("outbox cleanup done")
}
