package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	accountdomain "sump/backend/internal/account/domain"
	"sump/backend/internal/security"
	sessiondomain "sump/backend/internal/session/domain"
)

// resetRequestedMessage is returned for every reset request, whether or not
// the identifier names a real account. Identical responses keep account
// enumeration off the table.
const resetRequestedMessage = "if the account exists, reset instructions have been sent"

type signinRequest struct {
	AccountType string `json:"account_type"`
	ContextType string `json:"context_type"`
	ContextID   string `json:"context_id"`
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
}

type sessionView struct {
	ID           string    `json:"id"`
	ContextType  string    `json:"context_type"`
	ContextID    string    `json:"context_id"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func viewOf(s *sessiondomain.Session) sessionView {
	// The bearer token deliberately never appears in any response body.
	return sessionView{
		ID:           s.ID,
		ContextType:  string(s.ContextType),
		ContextID:    s.ContextID,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		ExpiresAt:    s.ExpiresAt,
		LastActiveAt: s.LastActiveAt,
		CreatedAt:    s.CreatedAt,
	}
}

// Routes returns the HTTP mux for the auth surface.
func (f *Facade) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/signin", f.Signin)
	mux.HandleFunc("POST /v1/auth/signout", f.Signout)
	mux.HandleFunc("POST /v1/auth/signout-all", f.SignoutAll)
	mux.HandleFunc("GET /v1/auth/sessions", f.Sessions)
	mux.HandleFunc("POST /v1/auth/reset/request", f.RequestReset)
	mux.HandleFunc("POST /v1/auth/reset/confirm", f.ConfirmReset)
	return mux
}

// Signin authenticates an identifier/password pair against the matching
// account store, creates a session, and sets the signed session cookie.
// Unknown identifiers and wrong passwords are indistinguishable to the caller.
func (f *Facade) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	accountType := accountdomain.Type(req.AccountType)
	store := f.storeFor(accountType)
	contextType := sessiondomain.ContextType(req.ContextType)
	if store == nil || req.Identifier == "" || req.Password == "" || req.ContextID == "" ||
		(contextType != sessiondomain.ContextTenant && contextType != sessiondomain.ContextEnvironment) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	cred, err := store.GetCredentialByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if cred == nil || !f.hasher.Verify(req.Password, cred.PasswordHash) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	s, err := f.sessions.Create(r.Context(), accountType, cred.AccountID, contextType, req.ContextID, ClientIP(r), UserAgent(r))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	f.SetSessionCookie(w, s.Token)
	writeJSON(w, http.StatusOK, viewOf(s))
}

// Signout revokes the current session, if any, and clears the cookie either way.
func (f *Facade) Signout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(f.cookie.Name); err == nil {
		if token, ok := f.signer.Verify(c.Value); ok {
			if _, err := f.sessions.Revoke(r.Context(), token); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
	}
	f.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// SignoutAll revokes every session for the authenticated principal ("log out
// everywhere") and clears the cookie.
func (f *Facade) SignoutAll(w http.ResponseWriter, r *http.Request) {
	s, err := f.SessionFromRequest(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if s == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	count, err := f.sessions.RevokeAll(r.Context(), s.AccountType, s.AccountID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	f.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]int64{"revoked": count})
}

// Sessions lists the authenticated principal's live sessions, most recently
// active first.
func (f *Facade) Sessions(w http.ResponseWriter, r *http.Request) {
	s, err := f.SessionFromRequest(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if s == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	list, err := f.sessions.ListByAccount(r.Context(), s.AccountType, s.AccountID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	views := make([]sessionView, len(list))
	for i, item := range list {
		views[i] = viewOf(item)
	}
	writeJSON(w, http.StatusOK, views)
}

// RequestReset starts the recovery flow. The response is byte-identical
// whether or not the identifier names an account; when it does, a token is
// issued and handed to the delivery channel.
func (f *Facade) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountType string `json:"account_type"`
		Identifier  string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	accountType := accountdomain.Type(req.AccountType)
	store := f.storeFor(accountType)
	if store == nil || req.Identifier == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cred, err := store.GetCredentialByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if cred != nil {
		t, err := f.resets.RequestReset(r.Context(), accountType, cred.AccountID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if f.deliver != nil {
			f.deliver(r.Context(), accountType, req.Identifier, t.Token)
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": resetRequestedMessage})
}

// ConfirmReset consumes a reset token and installs the new password. Policy
// violations carry the violated rules and a 422; invalid or spent tokens get
// an undifferentiated 400.
func (f *Facade) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	t, err := f.resets.ValidateToken(r.Context(), req.Token)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "invalid or expired token", http.StatusBadRequest)
		return
	}
	store := f.storeFor(t.AccountType)
	if store == nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	ok, err := f.resets.ResetPassword(r.Context(), req.Token, req.Password, store.UpdatePasswordHash)
	if err != nil {
		var serr *security.StrengthError
		if errors.As(err, &serr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "password does not meet requirements",
				"violations": serr.Violations,
			})
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "invalid or expired token", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
