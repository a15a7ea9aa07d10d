package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/session/domain"
)

const sessionColumns = `id, token, account_type, account_id, context_type, context_id,
	expires_at, ip_address, user_agent, last_active_at, created_at, updated_at`

// PostgresRepository persists sessions in the sessions table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByToken returns the session for token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1`, token)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get by token: %w", err)
	}
	return s, nil
}

// GetActiveByToken returns the session for token whose absolute deadline is
// after now, or nil if not found.
func (r *PostgresRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1 AND expires_at > $2`, token, now)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get active by token: %w", err)
	}
	return s, nil
}

// Create persists the session. The session must have ID and Token set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.Token, string(s.AccountType), s.AccountID, string(s.ContextType), s.ContextID,
		s.ExpiresAt, nullString(s.IPAddress), nullString(s.UserAgent),
		s.LastActiveAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("session create %s: %w", s.ID, err)
	}
	return nil
}

// UpdateLastActive sets the session's last-active timestamp for the given id.
func (r *PostgresRepository) UpdateLastActive(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("session update last active %s: %w", id, err)
	}
	return nil
}

// DeleteByID removes the session row. Missing rows are not an error.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session delete %s: %w", id, err)
	}
	return nil
}

// DeleteByToken removes the session with the given token. Returns true iff a row was deleted.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("session delete by token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("session delete by token: %w", err)
	}
	return n > 0, nil
}

// DeleteByAccount removes every session for the principal and returns the count deleted.
func (r *PostgresRepository) DeleteByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE account_type = $1 AND account_id = $2`,
		string(accountType), accountID)
	if err != nil {
		return 0, fmt.Errorf("session delete by account %s/%s: %w", accountType, accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("session delete by account %s/%s: %w", accountType, accountID, err)
	}
	return n, nil
}

// ListActiveByAccount returns sessions for the principal passing both deadline
// checks, most recently active first.
func (r *PostgresRepository) ListActiveByAccount(ctx context.Context, accountType accountdomain.Type, accountID string, now, idleCutoff time.Time) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE account_type = $1 AND account_id = $2 AND expires_at > $3 AND last_active_at > $4
		 ORDER BY last_active_at DESC`,
		string(accountType), accountID, now, idleCutoff)
	if err != nil {
		return nil, fmt.Errorf("session list by account %s/%s: %w", accountType, accountID, err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("session list by account %s/%s: %w", accountType, accountID, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session list by account %s/%s: %w", accountType, accountID, err)
	}
	return out, nil
}

// DeleteExpired removes sessions that fail either deadline and returns the count deleted.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now, idleCutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1 OR last_active_at <= $2`, now, idleCutoff)
	if err != nil {
		return 0, fmt.Errorf("session delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("session delete expired: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s         domain.Session
		acctType  string
		ctxType   string
		ipAddress sql.NullString
		userAgent sql.NullString
	)
	err := row.Scan(&s.ID, &s.Token, &acctType, &s.AccountID, &ctxType, &s.ContextID,
		&s.ExpiresAt, &ipAddress, &userAgent, &s.LastActiveAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.AccountType = accountdomain.Type(acctType)
	s.ContextType = domain.ContextType(ctxType)
	s.IPAddress = ipAddress.String
	s.UserAgent = userAgent.String
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
