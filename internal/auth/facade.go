// Package auth is the boundary glue between the HTTP surface and the session
// and reset managers: it owns the signed-cookie contract and client
// provenance extraction, and nothing else.
package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	accountrepo "sump/backend/internal/account/repository"
	resetdomain "sump/backend/internal/reset/domain"
	resetservice "sump/backend/internal/reset/service"
	"sump/backend/internal/security"
	sessiondomain "sump/backend/internal/session/domain"
)

// CookieConfig is the session cookie policy applied on creation and clearing.
type CookieConfig struct {
	// Name is the cookie name (e.g. "sump_session").
	Name string
	// Secure marks the cookie Secure; true in production.
	Secure bool
	// SameSite is the SameSite attribute.
	SameSite http.SameSite
	// MaxAge is the cookie lifetime; matches the absolute session timeout.
	MaxAge time.Duration
}

// SessionManager is the slice of the session service the facade needs.
type SessionManager interface {
	Create(ctx context.Context, accountType accountdomain.Type, accountID string, contextType sessiondomain.ContextType, contextID, ipAddress, userAgent string) (*sessiondomain.Session, error)
	Validate(ctx context.Context, token string) (*sessiondomain.Session, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAll(ctx context.Context, accountType accountdomain.Type, accountID string) (int64, error)
	ListByAccount(ctx context.Context, accountType accountdomain.Type, accountID string) ([]*sessiondomain.Session, error)
}

// ResetManager is the slice of the reset service the facade needs.
type ResetManager interface {
	RequestReset(ctx context.Context, accountType accountdomain.Type, accountID string) (*resetdomain.Token, error)
	ValidateToken(ctx context.Context, token string) (*resetdomain.Token, error)
	ResetPassword(ctx context.Context, token, newPassword string, updateAccount resetservice.UpdateAccountFunc) (bool, error)
}

// DeliverTokenFunc hands a freshly issued reset token to the out-of-band
// delivery channel (email, SMS). Best-effort; delivery is outside this
// subsystem.
type DeliverTokenFunc func(ctx context.Context, accountType accountdomain.Type, identifier, token string)

// Facade wires the HTTP surface to the managers. It carries no state beyond
// configuration and holds no policy of its own.
type Facade struct {
	cookie       CookieConfig
	signer       *security.CookieSigner
	sessions     SessionManager
	resets       ResetManager
	hasher       *security.Hasher
	tenants      accountrepo.Store
	environments accountrepo.Store
	deliver      DeliverTokenFunc
}

// NewFacade returns a Facade. deliver may be nil; reset tokens are then
// issued but go nowhere, which is fine for environments without a mailer.
func NewFacade(cookie CookieConfig, signer *security.CookieSigner, sessions SessionManager, resets ResetManager, hasher *security.Hasher, tenants, environments accountrepo.Store, deliver DeliverTokenFunc) *Facade {
	if cookie.Name == "" {
		cookie.Name = "sump_session"
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return &Facade{
		cookie:       cookie,
		signer:       signer,
		sessions:     sessions,
		resets:       resets,
		hasher:       hasher,
		tenants:      tenants,
		environments: environments,
		deliver:      deliver,
	}
}

// SessionFromRequest extracts the signed session cookie, verifies its
// signature, and validates the embedded token against both deadlines.
// Returns (nil, nil) when the request carries no usable session.
func (f *Facade) SessionFromRequest(r *http.Request) (*sessiondomain.Session, error) {
	c, err := r.Cookie(f.cookie.Name)
	if err != nil {
		return nil, nil
	}
	token, ok := f.signer.Verify(c.Value)
	if !ok {
		return nil, nil
	}
	return f.sessions.Validate(r.Context(), token)
}

// SetSessionCookie writes the signed session cookie with the configured policy.
func (f *Facade) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     f.cookie.Name,
		Value:    f.signer.Sign(token),
		Path:     "/",
		MaxAge:   int(f.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   f.cookie.Secure,
		SameSite: f.cookie.SameSite,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func (f *Facade) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     f.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.cookie.Secure,
		SameSite: f.cookie.SameSite,
	})
}

// ClientIP returns the first X-Forwarded-For entry when present, otherwise
// the transport-level peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserAgent returns the User-Agent header verbatim, empty when absent.
func UserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

func (f *Facade) storeFor(t accountdomain.Type) accountrepo.Store {
	switch t {
	case accountdomain.TypeTenant:
		return f.tenants
	case accountdomain.TypeEnvironment:
		return f.environments
	default:
		return nil
	}
}
