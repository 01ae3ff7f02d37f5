package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// CredentialRepository implements usecase.CredentialRepository.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// GetByAccount retrieves the stored credential for an account.
func (r *CredentialRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Credential, error) {
	query := `SELECT account_id, api_key, updated_at FROM credentials WHERE account_id = $1`

	var (
		credential domain.Credential
		updatedAt  pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query, accountID).Scan(&credential.AccountID, &credential.APIKey, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}

		return nil, err
	}

	credential.UpdatedAt = updatedAt.Time

	return &credential, nil
}

// Upsert stores or replaces the credential within a transaction.
func (r *CredentialRepository) Upsert(ctx context.Context, tx usecase.Transaction, credential *domain.Credential) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO credentials (account_id, api_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET api_key = EXCLUDED.api_key, updated_at = EXCLUDED.updated_at
	`

	_, err := pgxTx.Exec(ctx, query,
		credential.AccountID,
		credential.APIKey,
		timeToPgTimestamptz(credential.UpdatedAt),
	)

	return err
}
