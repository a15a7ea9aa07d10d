package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/reset/domain"
)

const tokenColumns = `id, token, account_type, account_id, expires_at, used_at, created_at, updated_at`

// PostgresRepository persists reset tokens in the password_reset_tokens table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a reset token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByToken returns the reset token for the given value, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Token, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM password_reset_tokens WHERE token = $1`, token)
	var (
		t        domain.Token
		acctType string
		usedAt   sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Token, &acctType, &t.AccountID, &t.ExpiresAt, &usedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reset token get by token: %w", err)
	}
	t.AccountType = accountdomain.Type(acctType)
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}

// Create persists the reset token. The token must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Token) error {
	var usedAt sql.NullTime
	if t.UsedAt != nil {
		usedAt = sql.NullTime{Time: *t.UsedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (`+tokenColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Token, string(t.AccountType), t.AccountID, t.ExpiresAt, usedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reset token create %s: %w", t.ID, err)
	}
	return nil
}

// DeleteByAccount removes every reset token for the principal and returns the count deleted.
func (r *PostgresRepository) DeleteByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE account_type = $1 AND account_id = $2`,
		string(accountType), accountID)
	if err != nil {
		return 0, fmt.Errorf("reset token delete by account %s/%s: %w", accountType, accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset token delete by account %s/%s: %w", accountType, accountID, err)
	}
	return n, nil
}

// MarkUsed sets used_at for the token iff it is still unused. Returns true
// iff a row transitioned to used.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = $2, updated_at = $2 WHERE id = $1 AND used_at IS NULL`,
		id, at)
	if err != nil {
		return false, fmt.Errorf("reset token mark used %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reset token mark used %s: %w", id, err)
	}
	return n > 0, nil
}

// DeleteExpired removes tokens past their deadline, used or not, and returns the count deleted.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("reset token delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset token delete expired: %w", err)
	}
	return n, nil
}
