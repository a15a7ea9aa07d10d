package service

import (
	"context"
	"sync"
	"testing"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/session/domain"
)

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Session // by id
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.Token == token {
			s2 := *s
			return &s2, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) GetActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.Token == token && s.ExpiresAt.After(now) {
			s2 := *s
			return &s2, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) UpdateLastActive(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.LastActiveAt = at
		s.UpdatedAt = at
	}
	return nil
}

func (r *memSessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func (r *memSessionRepo) DeleteByToken(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.m {
		if s.Token == token {
			delete(r.m, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) DeleteByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.m {
		if s.AccountType == accountType && s.AccountID == accountID {
			delete(r.m, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) ListActiveByAccount(ctx context.Context, accountType accountdomain.Type, accountID string, now, idleCutoff time.Time) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.m {
		if s.AccountType == accountType && s.AccountID == accountID &&
			s.ExpiresAt.After(now) && s.LastActiveAt.After(idleCutoff) {
			s2 := *s
			out = append(out, &s2)
		}
	}
	// most recently active first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].LastActiveAt.After(out[i].LastActiveAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, now, idleCutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.m {
		if !s.ExpiresAt.After(now) || !s.LastActiveAt.After(idleCutoff) {
			delete(r.m, id)
			n++
		}
	}
	return n, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager(t *testing.T) (*Manager, *memSessionRepo, *fakeClock) {
	t.Helper()
	repo := newMemSessionRepo()
	clock := newFakeClock()
	m := NewManager(repo, nil, 30*24*time.Hour, 7*24*time.Hour)
	m.now = clock.Now
	return m, repo, clock
}

func TestCreateReturnsToken(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "203.0.113.9", "test-agent")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(s.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(s.Token))
	}
	if want := clock.Now().Add(30 * 24 * time.Hour); !s.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, want)
	}
	if s.IPAddress != "203.0.113.9" || s.UserAgent != "test-agent" {
		t.Errorf("provenance not carried: %q %q", s.IPAddress, s.UserAgent)
	}
}

func TestCreateRejectsBadEnums(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, "martian_account", "a", domain.ContextTenant, "c", "", ""); err != ErrInvalidAccountType {
		t.Errorf("err = %v, want ErrInvalidAccountType", err)
	}
	if _, err := m.Create(ctx, accountdomain.TypeTenant, "a", "galaxy", "c", "", ""); err != ErrInvalidContextType {
		t.Errorf("err = %v, want ErrInvalidContextType", err)
	}
}

func TestValidateRefreshesLastActive(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")
	clock.Advance(48 * time.Hour)

	got, err := m.Validate(ctx, s.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got == nil {
		t.Fatal("Validate returned nil for a live session")
	}
	if !got.LastActiveAt.Equal(clock.Now()) {
		t.Errorf("LastActiveAt = %v, want %v", got.LastActiveAt, clock.Now())
	}
}

func TestValidateUnknownToken(t *testing.T) {
	m, _, _ := newTestManager(t)
	got, err := m.Validate(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != nil {
		t.Fatal("Validate returned a session for an unknown token")
	}
}

func TestValidateIdleExpiryBeforeAbsolute(t *testing.T) {
	m, repo, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")

	// 8 idle days: inside the 30d absolute window, outside the 7d idle window.
	clock.Advance(8 * 24 * time.Hour)
	got, err := m.Validate(ctx, s.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != nil {
		t.Fatal("Validate returned an idle-expired session")
	}
	// The idle-expired row is physically deleted on the validate path.
	raw, _ := repo.GetByToken(ctx, s.Token)
	if raw != nil {
		t.Error("idle-expired row should be deleted by Validate")
	}
	// No resurrection even if activity resumes.
	if got, _ := m.Validate(ctx, s.Token); got != nil {
		t.Fatal("idle-expired session resurrected")
	}
}

func TestValidateAbsoluteExpiry(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")

	// Keep the session active daily so idle never triggers; absolute still must.
	for day := 0; day < 31; day++ {
		clock.Advance(24 * time.Hour)
		m.Validate(ctx, s.Token)
	}
	if got, _ := m.Validate(ctx, s.Token); got != nil {
		t.Fatal("Validate returned a session past its absolute deadline")
	}
}

func TestGetByTokenNoSideEffects(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")
	created := s.LastActiveAt

	clock.Advance(time.Hour)
	got, err := m.GetByToken(ctx, s.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got == nil {
		t.Fatal("GetByToken returned nil for an existing token")
	}
	if !got.LastActiveAt.Equal(created) {
		t.Error("GetByToken must not refresh LastActiveAt")
	}
}

func TestRevokeThenValidate(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")

	ok, err := m.Revoke(ctx, s.Token)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !ok {
		t.Fatal("Revoke = false for an existing session")
	}
	if got, _ := m.Validate(ctx, s.Token); got != nil {
		t.Fatal("Validate returned a revoked session")
	}
	if ok, _ := m.Revoke(ctx, s.Token); ok {
		t.Error("second Revoke should report false")
	}
}

func TestRevokeAllThenList(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")
	}
	other, _ := m.Create(ctx, accountdomain.TypeEnvironment, "acct-1", domain.ContextEnvironment, "ctx-2", "", "")

	n, err := m.RevokeAll(ctx, accountdomain.TypeTenant, "acct-1")
	if err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	if n != 3 {
		t.Errorf("RevokeAll = %d, want 3", n)
	}
	list, err := m.ListByAccount(ctx, accountdomain.TypeTenant, "acct-1")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListByAccount after RevokeAll = %d sessions, want 0", len(list))
	}
	// The same account id under the other namespace is untouched.
	if got, _ := m.Validate(ctx, other.Token); got == nil {
		t.Error("RevokeAll crossed the account-type boundary")
	}
}

func TestListByAccountOrderAndFiltering(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	first, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")
	clock.Advance(time.Hour)
	second, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")

	list, err := m.ListByAccount(ctx, accountdomain.TypeTenant, "acct-1")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("sessions not ordered most-recently-active first")
	}

	// Idle-expired sessions drop out of the listing without any write.
	clock.Advance(8 * 24 * time.Hour)
	list, _ = m.ListByAccount(ctx, accountdomain.TypeTenant, "acct-1")
	if len(list) != 0 {
		t.Errorf("idle-expired sessions listed: %d", len(list))
	}
}

func TestCleanupRemovesBothExpiryKinds(t *testing.T) {
	m, repo, clock := newTestManager(t)
	ctx := context.Background()

	idle, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-1", domain.ContextTenant, "ctx-1", "", "")
	live, _ := m.Create(ctx, accountdomain.TypeTenant, "acct-2", domain.ContextTenant, "ctx-1", "", "")

	clock.Advance(6 * 24 * time.Hour)
	m.Validate(ctx, live.Token) // keep live fresh
	clock.Advance(2 * 24 * time.Hour)

	n, err := m.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("Cleanup = %d, want 1", n)
	}
	if s, _ := repo.GetByToken(ctx, idle.Token); s != nil {
		t.Error("idle session survived Cleanup")
	}
	if s, _ := repo.GetByToken(ctx, live.Token); s == nil {
		t.Error("live session removed by Cleanup")
	}
}
