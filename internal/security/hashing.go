// Package security holds the credential primitives: password hashing and
// strength rules, bearer token generation, and the signed-cookie codec.
package security

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// StrengthPolicy holds the password strength rules enforced by ValidateStrength.
type StrengthPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultStrengthPolicy is min 8 / max 72; 72 is the bcrypt input limit.
var DefaultStrengthPolicy = StrengthPolicy{MinLength: 8, MaxLength: 72}

// StrengthError reports every strength rule a password violated. It is
// distinguishable from credential failures so the boundary layer can map it
// to a different response.
type StrengthError struct {
	Violations []string
}

func (e *StrengthError) Error() string {
	return "password rejected: " + strings.Join(e.Violations, "; ")
}

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost   int
	Policy StrengthPolicy
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31) and the default
// strength policy. Cost 12 is a reasonable default for interactive login.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost, Policy: DefaultStrengthPolicy}
}

// Hash produces a bcrypt hash of password with a per-call random salt.
// Returns the hash as a string suitable for storage.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches the stored hash. A malformed or
// empty hash yields false, never an error; bcrypt performs the comparison in
// constant time.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateStrength checks password against the policy and returns a
// *StrengthError listing every violated rule, or nil when the password passes.
// The Hasher enforces no business policy beyond these length rules.
func (h *Hasher) ValidateStrength(password string) *StrengthError {
	policy := h.Policy
	if policy.MinLength <= 0 {
		policy = DefaultStrengthPolicy
	}
	var violations []string
	if len(password) < policy.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", policy.MinLength))
	}
	if len(password) > policy.MaxLength {
		violations = append(violations, fmt.Sprintf("must be at most %d characters", policy.MaxLength))
	}
	if len(violations) == 0 {
		return nil
	}
	return &StrengthError{Violations: violations}
}
