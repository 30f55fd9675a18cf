// Package token finds, provisions, and rotates the daemon API token stored
// in the daemon's JSON config.
package token //nolint:revive // intentional: does not conflict at import path level

import (
	"crypto/rand"
	"encoding/base64"
)

// TokenBytes is the number of random bytes used for token generation.
const TokenBytes = 32

// Generate creates a new cryptographically secure random token: 32 random
// bytes as unpadded URL-safe base64, 43 characters from [A-Za-z0-9_-].
func Generate() string {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read should never fail on modern systems.
		// If it does, it indicates a critical system failure.
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
