package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// PolicyRepository implements usecase.PolicyRepository.
type PolicyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPolicyRepository creates a new PolicyRepository.
func NewPolicyRepository(pool *pgxpool.Pool, logger zerolog.Logger) *PolicyRepository {
	return &PolicyRepository{pool: pool, logger: logger}
}

const policyColumns = `
	id, account_id, start_date, end_date,
	required_deposits, threshold_deposits, required_charges, threshold_charges,
	created_at, updated_at
`

// Create inserts a policy record within a transaction.
func (r *PolicyRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.PolicyRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO policy_records (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		record.ID,
		record.AccountID,
		timeToPgTimestamptz(record.StartDate),
		timePtrToPgTimestamptz(record.EndDate),
		string(record.Rule.RequiredDeposits),
		decimalPtrToNumeric(record.Rule.ThresholdDeposits),
		string(record.Rule.RequiredCharges),
		decimalPtrToNumeric(record.Rule.ThresholdCharges),
		timeToPgTimestamptz(record.CreatedAt),
		timeToPgTimestamptz(record.UpdatedAt),
	)

	return err
}

// GetOpenTail retrieves the account's open-ended record.
func (r *PolicyRepository) GetOpenTail(ctx context.Context, accountID string) (*domain.PolicyRecord, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE account_id = $1 AND end_date IS NULL
	`

	record, err := scanPolicyRecord(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}

		return nil, err
	}

	return record, nil
}

// GetOpenTailForUpdate retrieves the open tail with a row lock.
func (r *PolicyRepository) GetOpenTailForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.PolicyRecord, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE account_id = $1 AND end_date IS NULL
		FOR UPDATE
	`

	record, err := scanPolicyRecord(pgxTx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}

		return nil, err
	}

	return record, nil
}

// GetCovering retrieves the policy record whose interval covers the given
// instant. When historical data contains overlapping intervals the record
// with the greatest start date wins and the anomaly is logged; healthy data
// never has more than one cover.
func (r *PolicyRepository) GetCovering(ctx context.Context, accountID string, at time.Time) (*domain.PolicyRecord, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE account_id = $1
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY start_date DESC
		LIMIT 2
	`

	rows, err := r.pool.Query(ctx, query, accountID, timeToPgTimestamptz(at))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.PolicyRecord, 0, 2)
	for rows.Next() {
		record, err := scanPolicyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrPolicyNotFound
	}
	if len(records) > 1 {
		r.logger.Warn().
			Str("account_id", accountID).
			Time("at", at).
			Str("winner", records[0].ID).
			Str("shadowed", records[1].ID).
			Msg("overlapping policy intervals, greatest start date wins")
	}

	return records[0], nil
}

// CloseTail sets the end date of an open record within a transaction.
func (r *PolicyRepository) CloseTail(ctx context.Context, tx usecase.Transaction, id string, endDate, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE policy_records
		SET end_date = $2, updated_at = $3
		WHERE id = $1 AND end_date IS NULL
	`

	tag, err := pgxTx.Exec(ctx, query, id, timeToPgTimestamptz(endDate), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPolicyNotFound
	}

	return nil
}

// ListByAccount retrieves an account's records newest first.
func (r *PolicyRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.PolicyRecord, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE account_id = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.PolicyRecord, 0, limit)
	for rows.Next() {
		record, err := scanPolicyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func scanPolicyRecord(row pgx.Row) (*domain.PolicyRecord, error) {
	var (
		record             domain.PolicyRecord
		startDate, endDate pgtype.Timestamptz
		requiredDeposits   string
		thresholdDeposits  pgtype.Numeric
		requiredCharges    string
		thresholdCharges   pgtype.Numeric
		createdAt, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.AccountID,
		&startDate,
		&endDate,
		&requiredDeposits,
		&thresholdDeposits,
		&requiredCharges,
		&thresholdCharges,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	record.StartDate = startDate.Time
	record.EndDate = pgTimestamptzToTimePtr(endDate)
	record.Rule = domain.Rule{
		RequiredDeposits:  domain.Requirement(requiredDeposits),
		ThresholdDeposits: numericToDecimalPtr(thresholdDeposits),
		RequiredCharges:   domain.Requirement(requiredCharges),
		ThresholdCharges:  numericToDecimalPtr(thresholdCharges),
	}
	record.CreatedAt = createdAt.Time
	record.UpdatedAt = updated.Time

	return &record, nil
}
