package domain

import (
	"github.com/kabourne/wordmatch/internal/errors"
)

// Envelope is the bundle returned for every secure payload request: the
// AES-256-GCM ciphertext, the per-encryption nonce, the authentication tag
// kept separate from the ciphertext, and a SHA-256 digest of the plaintext
// computed before encryption.
//
// The content hash is deliberately redundant with the GCM tag. It protects
// against a class of bugs where a transport or caching layer silently
// substitutes a differently-encrypted-but-validly-tagged payload (for example
// a stale cached envelope for a different key), and gives callers an explicit
// integrity check that is independent of the cipher implementation.
//
// The nonce must be freshly random per envelope; reusing a nonce with the
// same key is a correctness violation, not merely a weakness.
type Envelope struct {
	// Ciphertext is the encrypted payload, excluding the authentication tag.
	Ciphertext []byte
	// Nonce is the 16-byte random GCM nonce used for this envelope.
	Nonce []byte
	// Tag is the 16-byte GCM authentication tag.
	Tag []byte
	// Hash is the SHA-256 digest of the plaintext, computed pre-encryption.
	Hash []byte
}

// Validate checks the structural invariants of a received envelope. It fails
// closed: any missing field or wrong-length nonce/tag is ErrProtocol. An
// empty ciphertext is legitimate (GCM seals an empty plaintext into a
// tag-only output), so only the nonce, tag, and hash lengths are enforced.
func (e *Envelope) Validate() error {
	if len(e.Nonce) != NonceSize {
		return errors.Wrapf(ErrProtocol, "nonce must be %d bytes, got %d", NonceSize, len(e.Nonce))
	}
	if len(e.Tag) != TagSize {
		return errors.Wrapf(ErrProtocol, "authentication tag must be %d bytes, got %d", TagSize, len(e.Tag))
	}
	if len(e.Hash) == 0 {
		return errors.Wrap(ErrProtocol, "envelope has no content hash")
	}
	return nil
}
