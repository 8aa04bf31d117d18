package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenIssuer produces opaque bearer token keys.
type TokenIssuer interface {
	NewKey() (string, error)
}

// RandomTokenIssuer returns 40 hex characters from crypto/rand.
type RandomTokenIssuer struct{}

func (RandomTokenIssuer) NewKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
