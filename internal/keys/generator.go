// Package keys implements the API key lifecycle: secret generation,
// hashed storage, tenant-scoped listing, revocation, and bearer-credential
// authentication. Raw keys exist in memory only; the store sees the
// SHA-256 digest and a short display prefix.
package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// Namespace is the product literal every key starts with.
	Namespace = "sme_live_"

	// randomBytes gives 256 bits of entropy, hex-encoded to 64 characters.
	randomBytes = 32

	// prefixChars is how much of the random segment the display prefix
	// exposes. 8 of 64 hex chars leaves brute force infeasible.
	prefixChars = 8
)

// RawKeyLen is the exact length of a well-formed plaintext key.
const RawKeyLen = len(Namespace) + randomBytes*2

// Secret is a freshly generated credential and its storage artifacts.
// Plaintext is returned to the caller exactly once and never persisted.
type Secret struct {
	Plaintext string
	Hash      string
	Prefix    string
}

// Generate produces a new high-entropy key. It fails only if the
// system's secure random source is unavailable.
func Generate() (Secret, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return Secret{}, fmt.Errorf("read random bytes: %w", err)
	}

	segment := hex.EncodeToString(buf)
	plaintext := Namespace + segment

	return Secret{
		Plaintext: plaintext,
		Hash:      HashKey(plaintext),
		Prefix:    Namespace + segment[:prefixChars] + "...",
	}, nil
}

// HashKey returns the hex-encoded SHA-256 digest of a plaintext key.
// The same digest is the stored representation and the authenticator's
// lookup key.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
