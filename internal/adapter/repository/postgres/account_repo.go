package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, name, mercury_account_id,
	required_deposits, threshold_deposits, required_charges, threshold_charges,
	created_at, updated_at
`

// Create inserts an account within a transaction.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		account.ID,
		account.Name,
		account.MercuryAccountID,
		string(account.Rule.RequiredDeposits),
		decimalPtrToNumeric(account.Rule.ThresholdDeposits),
		string(account.Rule.RequiredCharges),
		decimalPtrToNumeric(account.Rule.ThresholdCharges),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// GetByIDForUpdate retrieves an account by ID with a row lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// UpdateRule rewrites the account's mirror rule fields within a transaction.
func (r *AccountRepository) UpdateRule(ctx context.Context, tx usecase.Transaction, id string, rule domain.Rule, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE accounts
		SET required_deposits = $2,
		    threshold_deposits = $3,
		    required_charges = $4,
		    threshold_charges = $5,
		    updated_at = $6
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		id,
		string(rule.RequiredDeposits),
		decimalPtrToNumeric(rule.ThresholdDeposits),
		string(rule.RequiredCharges),
		decimalPtrToNumeric(rule.ThresholdCharges),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List retrieves accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account            domain.Account
		requiredDeposits   string
		thresholdDeposits  pgtype.Numeric
		requiredCharges    string
		thresholdCharges   pgtype.Numeric
		createdAt, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.MercuryAccountID,
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

	account.Rule = domain.Rule{
		RequiredDeposits:  domain.Requirement(requiredDeposits),
		ThresholdDeposits: numericToDecimalPtr(thresholdDeposits),
		RequiredCharges:   domain.Requirement(requiredCharges),
		ThresholdCharges:  numericToDecimalPtr(thresholdCharges),
	}
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updated.Time

	return &account, nil
}

// Type conversion helpers.
func decimalPtrToNumeric(d *decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if d == nil {
		return n
	}

	_ = n.Scan(d.String())

	return n
}

func numericToDecimalPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return &d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
