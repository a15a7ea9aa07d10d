// Package service owns the password-reset state machine:
// request -> validate -> consume.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/audit"
	"sump/backend/internal/reset/domain"
	resetrepo "sump/backend/internal/reset/repository"
	"sump/backend/internal/security"
)

// DefaultTokenTTL is the reset token lifetime from creation.
const DefaultTokenTTL = time.Hour

// UpdateAccountFunc persists a new password hash into whatever store owns the
// principal. Returning false aborts the reset and leaves the token unconsumed.
// Injected by the caller so this flow stays ignorant of tenant vs. environment
// account schemas.
type UpdateAccountFunc func(ctx context.Context, accountID, passwordHash string) (bool, error)

// SessionRevoker is the slice of the session manager this flow needs: revoke
// every session for a principal after a successful reset.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error)
}

// Manager owns the password-reset flow. At most one active token exists per
// account: requesting a reset supersedes all prior tokens.
type Manager struct {
	repo     resetrepo.Repository
	sessions SessionRevoker
	hasher   *security.Hasher
	auditor  audit.Recorder
	tokenTTL time.Duration
	now      func() time.Time
}

// NewManager returns a Manager using repo for persistence, sessions for
// post-reset revocation, and hasher for strength checks and hashing.
// auditor may be nil. A non-positive ttl falls back to one hour.
func NewManager(repo resetrepo.Repository, sessions SessionRevoker, hasher *security.Hasher, auditor audit.Recorder, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
		auditor:  auditor,
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// RequestReset deletes any existing tokens for the account and issues a fresh
// one. The returned token carries the plaintext value for out-of-band
// delivery. This method does not verify the account exists; the caller must
// answer identically whether or not it does, to avoid enumeration leakage.
func (m *Manager) RequestReset(ctx context.Context, accountType accountdomain.Type, accountID string) (*domain.Token, error) {
	if _, err := m.repo.DeleteByAccount(ctx, accountType, accountID); err != nil {
		return nil, err
	}
	value, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	t := &domain.Token{
		ID:          uuid.New().String(),
		Token:       value,
		AccountType: accountType,
		AccountID:   accountID,
		ExpiresAt:   now.Add(m.tokenTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	m.record(ctx, accountType, accountID, "request", t.ID)
	return t, nil
}

// ValidateToken returns the reset token iff it is still consumable (unused
// and unexpired), else nil. Side-effect free; pre-flight checks only.
func (m *Manager) ValidateToken(ctx context.Context, token string) (*domain.Token, error) {
	if token == "" {
		return nil, nil
	}
	t, err := m.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.Consumable(m.now().UTC()) {
		return nil, nil
	}
	return t, nil
}

// ResetPassword consumes the token and installs the new password. Returns
// (false, nil) for an invalid or spent token and when updateAccount declines;
// a password failing the strength rules yields a *security.StrengthError so
// the boundary can answer differently than for a bad token. On success the
// token is marked used before sessions are revoked.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string, updateAccount UpdateAccountFunc) (bool, error) {
	t, err := m.ValidateToken(ctx, token)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	if serr := m.hasher.ValidateStrength(newPassword); serr != nil {
		return false, serr
	}
	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return false, err
	}
	ok, err := updateAccount(ctx, t.AccountID, hash)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if _, err := m.repo.MarkUsed(ctx, t.ID, m.now().UTC()); err != nil {
		return false, err
	}
	if _, err := m.sessions.RevokeAll(ctx, t.AccountType, t.AccountID); err != nil {
		return false, err
	}
	m.record(ctx, t.AccountType, t.AccountID, "consume", t.ID)
	return true, nil
}

// Cleanup bulk-deletes tokens past their deadline, independent of used state,
// and returns the count removed.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now().UTC())
}

func (m *Manager) record(ctx context.Context, accountType accountdomain.Type, accountID, action, tokenID string) {
	if m.auditor == nil {
		return
	}
	m.auditor.Record(ctx, string(accountType), accountID, action, "password_reset", tokenID)
}
