// Package domain defines the session aggregate.
package domain

import (
	"time"

	accountdomain "sump/backend/internal/account/domain"
)

// ContextType identifies the scope a session operates within.
type ContextType string

const (
	ContextTenant      ContextType = "tenant"
	ContextEnvironment ContextType = "environment"
)

// Session represents one authenticated principal-context binding. Token is
// the bearer secret; it is exposed outside storage only at creation and must
// never be logged.
type Session struct {
	ID           string
	Token        string
	AccountType  accountdomain.Type
	AccountID    string
	ContextType  ContextType
	ContextID    string
	ExpiresAt    time.Time // absolute deadline, fixed at creation
	LastActiveAt time.Time // refreshed on each successful validation
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Usable reports whether the session passes both deadlines at now: the
// absolute deadline and the idle window since the last successful validation.
func (s *Session) Usable(now time.Time, idleTimeout time.Duration) bool {
	if !now.Before(s.ExpiresAt) {
		return false
	}
	return now.Sub(s.LastActiveAt) < idleTimeout
}
