package repository

import (
	"context"

	"sump/backend/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	ListByAccount(ctx context.Context, accountType, accountID string, limit, offset int32) ([]*domain.Event, error)
}
