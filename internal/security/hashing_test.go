package security

import (
	"strings"
	"testing"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if !h.Verify("secret-password", hash) {
		t.Fatal("Verify rejected the original password")
	}
	if h.Verify("wrong-password", hash) {
		t.Fatal("Verify accepted a wrong password")
	}
}

func TestHasher_SaltVaries(t *testing.T) {
	h := NewHasher(4)
	h1, _ := h.Hash("secret-password")
	h2, _ := h.Hash("secret-password")
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (per-call salt)")
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(4)
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if h.Verify("anything", hash) {
			t.Errorf("Verify accepted malformed hash %q", hash)
		}
	}
}

func TestHasher_CostClamped(t *testing.T) {
	if h := NewHasher(0); h.Cost < 4 {
		t.Errorf("zero cost should be clamped, got %d", h.Cost)
	}
	if h := NewHasher(99); h.Cost > 31 {
		t.Errorf("oversized cost should be clamped, got %d", h.Cost)
	}
}

func TestValidateStrength_AllViolations(t *testing.T) {
	h := NewHasher(4)
	err := h.ValidateStrength("short")
	if err == nil {
		t.Fatal("ValidateStrength accepted a 5-char password")
	}
	if len(err.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly the min-length rule", err.Violations)
	}
	if !strings.Contains(err.Error(), "at least 8") {
		t.Errorf("error = %q, want min-length mention", err.Error())
	}

	long := strings.Repeat("x", 80)
	err = h.ValidateStrength(long)
	if err == nil {
		t.Fatal("ValidateStrength accepted an 80-char password")
	}
	if !strings.Contains(err.Error(), "at most 72") {
		t.Errorf("error = %q, want max-length mention", err.Error())
	}
}

func TestValidateStrength_OK(t *testing.T) {
	h := NewHasher(4)
	if err := h.ValidateStrength("Str0ng!Pass"); err != nil {
		t.Fatalf("ValidateStrength rejected a valid password: %v", err)
	}
}

func TestRoundTrip_StrongPasswords(t *testing.T) {
	h := NewHasher(4)
	for _, pw := range []string{"Str0ng!Pass", "correct horse battery", "12345678"} {
		if err := h.ValidateStrength(pw); err != nil {
			t.Fatalf("ValidateStrength(%q): %v", pw, err)
		}
		hash, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("Hash(%q): %v", pw, err)
		}
		if !h.Verify(pw, hash) {
			t.Errorf("Verify(%q, Hash(%q)) = false", pw, pw)
		}
	}
}
