package repository

import (
	"context"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/session/domain"
)

// Repository defines persistence for sessions: CRUD plus time-based filtering,
// no lifecycle policy. Expiry decisions live in the session service.
type Repository interface {
	// GetByToken returns the session with the given token regardless of expiry,
	// or nil if not found.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	// GetActiveByToken returns the session with the given token whose absolute
	// deadline is after now, or nil if not found.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// UpdateLastActive sets the session's last-active timestamp.
	UpdateLastActive(ctx context.Context, id string, at time.Time) error
	// DeleteByID removes the session row; missing rows are not an error.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByToken removes the session with the given token. Returns true iff
	// a row was deleted.
	DeleteByToken(ctx context.Context, token string) (bool, error)
	// DeleteByAccount removes every session for the principal and returns the
	// number of rows deleted.
	DeleteByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error)
	// ListActiveByAccount returns sessions for the principal passing both the
	// absolute deadline (expires_at > now) and the idle window
	// (last_active_at > idleCutoff), most recently active first.
	ListActiveByAccount(ctx context.Context, accountType accountdomain.Type, accountID string, now, idleCutoff time.Time) ([]*domain.Session, error)
	// DeleteExpired removes sessions that are absolute-expired or idle-expired
	// and returns the number of rows deleted.
	DeleteExpired(ctx context.Context, now, idleCutoff time.Time) (int64, error)
}
