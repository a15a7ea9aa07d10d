// Package domain defines the password-reset token aggregate.
package domain

import (
	"time"

	accountdomain "sump/backend/internal/account/domain"
)

// Token represents one outstanding credential-recovery attempt. The token
// value is delivered out of band and never logged. Once UsedAt is set the
// token is permanently spent.
type Token struct {
	ID          string
	Token       string
	AccountType accountdomain.Type
	AccountID   string
	ExpiresAt   time.Time
	UsedAt      *time.Time // nil until consumed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Consumable reports whether the token may still be spent at now:
// never used and not yet past its deadline.
func (t *Token) Consumable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
