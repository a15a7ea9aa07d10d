package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sump/backend/internal/account/domain"
)

// Store is the credential boundary this subsystem consumes from the account
// stores: look up a principal's credential by its public identifier, and
// replace its password hash.
type Store interface {
	// GetCredentialByIdentifier returns the credential for the identifier, or
	// nil if no such account exists.
	GetCredentialByIdentifier(ctx context.Context, identifier string) (*domain.Credential, error)
	// UpdatePasswordHash replaces the stored hash for the account id. Returns
	// true iff an account row was updated.
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) (bool, error)
}

// PostgresStore implements Store over one of the account tables.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewTenantStore returns the credential store for tenant accounts.
func NewTenantStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, table: "tenant_accounts"}
}

// NewEnvironmentStore returns the credential store for environment accounts.
func NewEnvironmentStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, table: "environment_accounts"}
}

// ForType returns the credential store for the given account type.
func ForType(db *sql.DB, t domain.Type) (*PostgresStore, error) {
	switch t {
	case domain.TypeTenant:
		return NewTenantStore(db), nil
	case domain.TypeEnvironment:
		return NewEnvironmentStore(db), nil
	default:
		return nil, fmt.Errorf("unknown account type %q", t)
	}
}

// GetCredentialByIdentifier returns the credential for the identifier, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (s *PostgresStore) GetCredentialByIdentifier(ctx context.Context, identifier string) (*domain.Credential, error) {
	// table is one of two compile-time constants, never user input.
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, password_hash FROM %s WHERE identifier = $1`, s.table), identifier)
	var c domain.Credential
	if err := row.Scan(&c.AccountID, &c.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("account get credential: %w", err)
	}
	return &c, nil
}

// UpdatePasswordHash replaces the stored hash for the account id. Returns true
// iff an account row was updated.
func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET password_hash = $2, updated_at = $3 WHERE id = $1`, s.table),
		accountID, passwordHash, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("account update password hash %s: %w", accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("account update password hash %s: %w", accountID, err)
	}
	return n > 0, nil
}
