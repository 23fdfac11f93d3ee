// Package service implements the cryptographic services of the secure
// vocabulary exchange: authenticated payload encryption and RSA session key
// agreement. The wire algorithms are fixed (AES-256-GCM, 16-byte nonce,
// 16-byte tag, SHA-256, RSA PKCS#1 v1.5) to match the browser counterpart.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/kabourne/wordmatch/internal/errors"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// PayloadCipher performs authenticated symmetric encryption and decryption of
// payloads using per-request session keys, plus an independent content hash
// for an application-level integrity cross-check.
//
// Security properties:
//   - AES-256 in GCM mode keyed by a one-time 256-bit session key
//   - 16-byte nonce, randomly generated per encryption
//   - 16-byte authentication tag, carried separately from the ciphertext
//   - SHA-256 digest of the plaintext recorded before encryption
//
// Thread safety:
//
//	The cipher is stateless and safe for concurrent use from multiple
//	goroutines. Every call constructs its AEAD from the supplied session key
//	and generates its nonce independently, so requests never interact.
type PayloadCipher struct{}

// NewPayloadCipher creates a new payload cipher instance.
func NewPayloadCipher() *PayloadCipher {
	return &PayloadCipher{}
}

// Encrypt encrypts plaintext under the given session key and returns the
// resulting envelope.
//
// A fresh 16-byte nonce is generated with crypto/rand for each call, so
// encrypting the same plaintext twice with the same key never produces the
// same nonce or ciphertext (collision probability is negligible at 128 random
// bits). The GCM authentication tag is split off the ciphertext so the two
// travel as separate envelope fields, and the SHA-256 digest of the plaintext
// is computed before encryption.
//
// Returns an error if the session key has the wrong size or nonce generation
// fails.
func (p *PayloadCipher) Encrypt(
	plaintext []byte,
	key secureDomain.SessionKey,
) (*secureDomain.Envelope, error) {
	aead, err := newPayloadAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, secureDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	hash := sha256.Sum256(plaintext)

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(sealed) - secureDomain.TagSize

	return &secureDomain.Envelope{
		Ciphertext: sealed[:tagStart],
		Nonce:      nonce,
		Tag:        sealed[tagStart:],
		Hash:       hash[:],
	}, nil
}

// Decrypt verifies and decrypts an envelope under the given session key.
//
// The envelope is structurally validated first, then the ciphertext and tag
// are recombined and opened. If the authentication tag does not verify
// (tampered ciphertext, wrong key, or wrong nonce) the call fails with
// ErrAuthenticationFailed before any plaintext is returned to the caller.
func (p *PayloadCipher) Decrypt(
	envelope *secureDomain.Envelope,
	key secureDomain.SessionKey,
) ([]byte, error) {
	if envelope == nil {
		return nil, errors.Wrap(secureDomain.ErrProtocol, "envelope is nil")
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	aead, err := newPayloadAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(envelope.Ciphertext)+len(envelope.Tag))
	sealed = append(sealed, envelope.Ciphertext...)
	sealed = append(sealed, envelope.Tag...)

	plaintext, err := aead.Open(nil, envelope.Nonce, sealed, nil)
	if err != nil {
		return nil, secureDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// VerifyIntegrity recomputes the SHA-256 digest of the received plaintext and
// compares it in constant time against the digest carried in the envelope.
//
// This check is independent of the GCM tag on purpose: it catches transport
// or caching layers that substitute a differently-encrypted-but-validly-tagged
// payload, and gives callers an integrity check that does not depend on the
// cipher implementation.
func (p *PayloadCipher) VerifyIntegrity(plaintext, expectedHash []byte) bool {
	hash := sha256.Sum256(plaintext)
	return hmac.Equal(hash[:], expectedHash)
}

// newPayloadAEAD builds the AES-256-GCM AEAD for a session key. The nonce
// size is forced to 16 bytes to match the wire contract.
func newPayloadAEAD(key secureDomain.SessionKey) (cipher.AEAD, error) {
	if len(key) != secureDomain.SessionKeySize {
		return nil, errors.Wrapf(
			errors.ErrInvalidInput,
			"session key must be exactly %d bytes",
			secureDomain.SessionKeySize,
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, secureDomain.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
