package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/odv/mercsync/internal/adapter/http"
	"github.com/odv/mercsync/internal/adapter/http/handler"
	"github.com/odv/mercsync/internal/adapter/http/middleware"
	postgresRepo "github.com/odv/mercsync/internal/adapter/repository/postgres"
	redisRepo "github.com/odv/mercsync/internal/adapter/repository/redis"
	"github.com/odv/mercsync/internal/infrastructure/auth"
	"github.com/odv/mercsync/internal/infrastructure/config"
	"github.com/odv/mercsync/internal/infrastructure/crypto"
	"github.com/odv/mercsync/internal/infrastructure/eventpublisher"
	"github.com/odv/mercsync/internal/infrastructure/logger"
	"github.com/odv/mercsync/internal/infrastructure/metrics"
	"github.com/odv/mercsync/internal/infrastructure/postgres"
	"github.com/odv/mercsync/internal/infrastructure/redis"
	"github.com/odv/mercsync/internal/infrastructure/scheduler"
	"github.com/odv/mercsync/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Run migrations before taking traffic
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Credential encryption
	cipher, err := crypto.New(cfg.CredentialSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize credential cipher")
	}

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	policyRepo := postgresRepo.NewPolicyRepository(pool, appLogger)
	credentialRepo := postgresRepo.NewCredentialRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ruleCache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, policyRepo, auditRepo, outboxRepo, idGen)
	policyUC := usecase.NewPolicyUseCase(txManager, accountRepo, policyRepo, auditRepo, outboxRepo, ruleCache, idGen)
	evaluateUC := usecase.NewEvaluateUseCase(accountRepo, policyRepo)
	credentialUC := usecase.NewCredentialUseCase(txManager, accountRepo, credentialRepo, auditRepo, outboxRepo, cipher, idGen)
	integrityUC := usecase.NewIntegrityUseCase(accountRepo, policyRepo)

	// Authentication is optional; without a JWT secret the API is open
	var jwtManager *auth.JWTManager
	var authHandler *handler.AuthHandler
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		operator := auth.NewOperator(cfg.AdminEmail, cfg.AdminPasswordHash, jwtManager)
		authHandler = handler.NewAuthHandler(operator)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC),
		PolicyHandler:     handler.NewPolicyHandler(policyUC),
		ReceiptHandler:    handler.NewReceiptHandler(evaluateUC, m),
		CredentialHandler: handler.NewCredentialHandler(credentialUC),
		IntegrityHandler:  handler.NewIntegrityHandler(integrityUC),
		AuditHandler:      handler.NewAuditHandler(auditRepo),
		AuthHandler:       authHandler,
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       middleware.NewRateLimiter(100, 200, m),
		Logging:           middleware.NewLoggingMiddleware(appLogger),
		Metrics:           middleware.NewMetricsMiddleware(m),
		JWTManager:        jwtManager,
	})

	// Outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slog.Default()),
		Logger:     slog.Default(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go publisher.Start(publisherCtx)

	// Background sweeps
	sched := scheduler.New(integrityUC, outboxRepo, cfg.OutboxRetention, m, appLogger)
	if err := sched.Register(cfg.IntegritySweepSpec, cfg.OutboxCleanupSpec); err != nil {
		log.Fatal().Err(err).Msg("failed to register scheduled jobs")
	}
	sched.Start()
	defer sched.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
