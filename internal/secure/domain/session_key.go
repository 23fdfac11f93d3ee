package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/kabourne/wordmatch/internal/errors"
)

// SessionKey is a one-time-use 256-bit symmetric key generated by the client
// for a single payload request.
//
// A session key must never be reused across two requests, even for the same
// resource: nonce/key reuse under GCM breaks the authenticity guarantees of
// the mode. Neither side persists the key beyond the request's lifetime.
//
// When the key crosses the asymmetric wrap boundary it is serialized as a
// lowercase hex string. The hex form exists so the key can be embedded into a
// string-oriented RSA encryption API without ambiguity across platforms.
type SessionKey []byte

// NewSessionKey generates a fresh random session key using crypto/rand.
func NewSessionKey() (SessionKey, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return key, nil
}

// Hex returns the lowercase hex serialization of the key, the form that is
// wrapped under the server's public key.
func (k SessionKey) Hex() string {
	return hex.EncodeToString(k)
}

// SessionKeyFromHex reconstructs a session key from its lowercase hex
// serialization, validating the decoded length.
func SessionKeyFromHex(s string) (SessionKey, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidWrappedKey, "session key is not valid hex")
	}
	if len(key) != SessionKeySize {
		return nil, errors.Wrapf(ErrInvalidWrappedKey, "session key must be %d bytes, got %d", SessionKeySize, len(key))
	}
	return key, nil
}
