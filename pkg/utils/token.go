package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const tokenByteSize = 32

// GenerateToken returns a fresh random token and its sha256 digest.
// Only the digest is ever persisted; the raw token goes out by mail and
// is never seen again. An error here means the entropy source is broken
// and callers should treat it as fatal.
func GenerateToken() (raw string, digest string, err error) {
	b := make([]byte, tokenByteSize)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}

// HashToken computes the stored form of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
