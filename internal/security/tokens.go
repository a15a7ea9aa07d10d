package security

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenLength is the byte length of generated bearer tokens before hex encoding.
const TokenLength = 32

// GenerateToken returns a cryptographically secure random bearer token:
// 32 bytes from crypto/rand, hex-encoded to 64 characters. Collisions across
// the process lifetime are negligible; the value doubles as a unique index key.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
