package usecase

import (
	"context"
	"time"

	"github.com/odv/mercsync/internal/domain"
)

// AccountRepository defines data access for accounts, including the
// current-policy mirror fields.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateRule(ctx context.Context, tx Transaction, id string, rule domain.Rule, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// PolicyRepository defines data access for policy records. Mutations run
// inside a caller-owned transaction; the open tail is locked with
// GetOpenTailForUpdate before it is closed.
type PolicyRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.PolicyRecord) error
	GetOpenTail(ctx context.Context, accountID string) (*domain.PolicyRecord, error)
	GetOpenTailForUpdate(ctx context.Context, tx Transaction, accountID string) (*domain.PolicyRecord, error)
	GetCovering(ctx context.Context, accountID string, at time.Time) (*domain.PolicyRecord, error)
	CloseTail(ctx context.Context, tx Transaction, id string, endDate, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.PolicyRecord, error)
}

// CredentialRepository defines data access for account credentials. Values
// pass through as stored; encryption happens above this interface.
type CredentialRepository interface {
	GetByAccount(ctx context.Context, accountID string) (*domain.Credential, error)
	Upsert(ctx context.Context, tx Transaction, credential *domain.Credential) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
