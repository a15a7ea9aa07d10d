package repository

import (
	"context"
	"database/sql"
	"fmt"

	"sump/backend/internal/audit/domain"
)

// PostgresRepository persists audit events in the audit_events table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, account_type, account_id, action, resource, ip_address, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.AccountType, e.AccountID, e.Action, e.Resource, e.IP, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit create: %w", err)
	}
	return nil
}

// ListByAccount returns audit events for the given principal, newest first,
// paginated by limit and offset.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountType, accountID string, limit, offset int32) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_type, account_id, action, resource, ip_address, metadata, created_at
		 FROM audit_events
		 WHERE account_type = $1 AND account_id = $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		accountType, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit list by account: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.AccountType, &e.AccountID, &e.Action, &e.Resource, &e.IP, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit list by account: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit list by account: %w", err)
	}
	return out, nil
}
