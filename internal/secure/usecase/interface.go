// Package usecase provides the server-side orchestration of the secure
// vocabulary exchange: unwrap the client's session key, load the requested
// payload, and return it sealed in an envelope.
package usecase

import (
	"context"

	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// KeyAgreement defines the asymmetric operations the exchange depends on.
type KeyAgreement interface {
	// PublicKeyPEM returns the PEM-encoded server public key.
	PublicKeyPEM() string

	// UnwrapSessionKey decrypts a client-submitted wrapped session key.
	UnwrapSessionKey(wrappedKey string) (secureDomain.SessionKey, error)
}

// PayloadCipher defines the symmetric seal operation the exchange depends on.
type PayloadCipher interface {
	// Encrypt seals plaintext under a session key into an envelope.
	Encrypt(plaintext []byte, key secureDomain.SessionKey) (*secureDomain.Envelope, error)
}

// PayloadProvider supplies the plaintext payload for a resource locator.
type PayloadProvider interface {
	// GetUnitPayload returns the payload bytes for one book/unit pair.
	GetUnitPayload(ctx context.Context, book, unit string) ([]byte, error)
}

// ExchangeUseCase defines the interface for secure exchange operations.
type ExchangeUseCase interface {
	// PublicKeyPEM returns the PEM-encoded server public key.
	PublicKeyPEM() string

	// IssueEnvelope performs one full server-side exchange: unwraps the
	// session key, loads the requested unit payload, and seals it.
	IssueEnvelope(ctx context.Context, book, unit, wrappedKey string) (*secureDomain.Envelope, error)
}
