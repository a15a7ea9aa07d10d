package repository

import (
	"context"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/reset/domain"
)

// Repository defines persistence for password-reset tokens: CRUD plus
// time-based filtering, no flow policy.
type Repository interface {
	// GetByToken returns the reset token with the given value regardless of
	// state, or nil if not found.
	GetByToken(ctx context.Context, token string) (*domain.Token, error)
	Create(ctx context.Context, t *domain.Token) error
	// DeleteByAccount removes every reset token for the principal and returns
	// the number of rows deleted.
	DeleteByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error)
	// MarkUsed sets used_at for the token with the given id iff it is still
	// unused. Returns true iff a row transitioned to used.
	MarkUsed(ctx context.Context, id string, at time.Time) (bool, error)
	// DeleteExpired removes tokens past their deadline, used or not, and
	// returns the number of rows deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
