// Package service owns session lifecycle policy: creation, dual-expiry
// validation, revocation, and enumeration.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/audit"
	"sump/backend/internal/security"
	"sump/backend/internal/session/domain"
	sessionrepo "sump/backend/internal/session/repository"
)

// Sentinel errors for invalid arguments; expired or unknown tokens are not
// errors and surface as nil sessions.
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidContextType = errors.New("invalid context type")
)

// DefaultAbsoluteTimeout is the fixed session lifetime from creation.
const DefaultAbsoluteTimeout = 30 * 24 * time.Hour

// DefaultIdleTimeout is the maximum inactivity gap before a session expires.
const DefaultIdleTimeout = 7 * 24 * time.Hour

// Manager owns session lifecycle policy on top of the session store. A
// session is usable only while now < ExpiresAt and now - LastActiveAt <
// idleTimeout; once either deadline passes the session is gone for good.
type Manager struct {
	repo            sessionrepo.Repository
	auditor         audit.Recorder
	absoluteTimeout time.Duration
	idleTimeout     time.Duration
	now             func() time.Time
}

// NewManager returns a Manager using repo for persistence. auditor may be nil.
// Non-positive timeouts fall back to the defaults (30d absolute, 7d idle).
func NewManager(repo sessionrepo.Repository, auditor audit.Recorder, absoluteTimeout, idleTimeout time.Duration) *Manager {
	if absoluteTimeout <= 0 {
		absoluteTimeout = DefaultAbsoluteTimeout
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		repo:            repo,
		auditor:         auditor,
		absoluteTimeout: absoluteTimeout,
		idleTimeout:     idleTimeout,
		now:             time.Now,
	}
}

// IdleTimeout returns the configured idle window.
func (m *Manager) IdleTimeout() time.Duration { return m.idleTimeout }

// AbsoluteTimeout returns the configured absolute session lifetime.
func (m *Manager) AbsoluteTimeout() time.Duration { return m.absoluteTimeout }

// Create issues a new session for the principal in the given context.
// ipAddress and userAgent are optional provenance metadata. The returned
// session carries the plaintext token; this is the only moment it is exposed
// outside storage.
func (m *Manager) Create(ctx context.Context, accountType accountdomain.Type, accountID string, contextType domain.ContextType, contextID, ipAddress, userAgent string) (*domain.Session, error) {
	if !accountType.Valid() {
		return nil, ErrInvalidAccountType
	}
	if contextType != domain.ContextTenant && contextType != domain.ContextEnvironment {
		return nil, ErrInvalidContextType
	}
	token, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	s := &domain.Session{
		ID:           uuid.New().String(),
		Token:        token,
		AccountType:  accountType,
		AccountID:    accountID,
		ContextType:  contextType,
		ContextID:    contextID,
		ExpiresAt:    now.Add(m.absoluteTimeout),
		LastActiveAt: now,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	m.record(ctx, accountType, accountID, "create", s.ID)
	return s, nil
}

// Validate checks token against both deadlines and refreshes LastActiveAt on
// success. Returns (nil, nil) for unknown, absolute-expired, or idle-expired
// tokens; idle-expired rows are deleted here rather than waiting for Cleanup.
// A session that has failed either deadline can never validate again.
func (m *Manager) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	now := m.now().UTC()
	s, err := m.repo.GetActiveByToken(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if now.Sub(s.LastActiveAt) >= m.idleTimeout {
		if err := m.repo.DeleteByID(ctx, s.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := m.repo.UpdateLastActive(ctx, s.ID, now); err != nil {
		return nil, err
	}
	s.LastActiveAt = now
	s.UpdatedAt = now
	return s, nil
}

// GetByToken returns the session for token without expiry checks or side
// effects. Diagnostics only; never use the result to authorize a request.
func (m *Manager) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	return m.repo.GetByToken(ctx, token)
}

// Revoke deletes the session with the given token. Returns true iff a session
// was deleted.
func (m *Manager) Revoke(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	s, err := m.repo.GetByToken(ctx, token)
	if err != nil {
		return false, err
	}
	deleted, err := m.repo.DeleteByToken(ctx, token)
	if err != nil {
		return false, err
	}
	if deleted && s != nil {
		m.record(ctx, s.AccountType, s.AccountID, "revoke", s.ID)
	}
	return deleted, nil
}

// RevokeAll deletes every session for the principal and returns the count
// deleted. Used for "log out everywhere" and by the reset flow after a
// successful password reset.
func (m *Manager) RevokeAll(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error) {
	n, err := m.repo.DeleteByAccount(ctx, accountType, accountID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.record(ctx, accountType, accountID, "revoke_all", "")
	}
	return n, nil
}

// ListByAccount returns the principal's sessions passing both deadline
// checks, most recently active first.
func (m *Manager) ListByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) ([]*domain.Session, error) {
	now := m.now().UTC()
	return m.repo.ListActiveByAccount(ctx, accountType, accountID, now, now.Add(-m.idleTimeout))
}

// Cleanup bulk-deletes sessions that are absolute-expired or idle-expired and
// returns the count removed. Safe to run repeatedly and concurrently with
// normal traffic: it only touches rows that can no longer validate.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	now := m.now().UTC()
	return m.repo.DeleteExpired(ctx, now, now.Add(-m.idleTimeout))
}

func (m *Manager) record(ctx context.Context, accountType accountdomain.Type, accountID, action, sessionID string) {
	if m.auditor == nil {
		return
	}
	m.auditor.Record(ctx, string(accountType), accountID, action, "session", sessionID)
}
