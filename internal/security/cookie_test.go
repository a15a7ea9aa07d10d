package security

import "testing"

func TestCookieSigner_RoundTrip(t *testing.T) {
	s := NewCookieSigner([]byte("test-key"))
	token, _ := GenerateToken()
	value := s.Sign(token)
	got, ok := s.Verify(value)
	if !ok {
		t.Fatal("Verify rejected a value it signed")
	}
	if got != token {
		t.Errorf("Verify = %q, want %q", got, token)
	}
}

func TestCookieSigner_RejectsTampering(t *testing.T) {
	s := NewCookieSigner([]byte("test-key"))
	value := s.Sign("aabbcc")

	if _, ok := s.Verify("ffbbcc" + value[6:]); ok {
		t.Error("Verify accepted a tampered token")
	}
	if _, ok := s.Verify(value[:len(value)-1] + "0"); ok {
		t.Error("Verify accepted a tampered signature")
	}
}

func TestCookieSigner_RejectsMalformed(t *testing.T) {
	s := NewCookieSigner([]byte("test-key"))
	for _, value := range []string{"", "no-separator", ".sig-only", "token-only."} {
		if _, ok := s.Verify(value); ok {
			t.Errorf("Verify accepted malformed value %q", value)
		}
	}
}

func TestCookieSigner_KeyMatters(t *testing.T) {
	a := NewCookieSigner([]byte("key-a"))
	b := NewCookieSigner([]byte("key-b"))
	if _, ok := b.Verify(a.Sign("token")); ok {
		t.Error("signer with a different key verified the cookie")
	}
}
