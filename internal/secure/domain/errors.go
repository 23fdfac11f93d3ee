package domain

import (
	"github.com/kabourne/wordmatch/internal/errors"
)

// Secure exchange error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for protocol failures. All cryptographic failures are
// terminal for the request that produced them: no partial plaintext is ever
// surfaced and there is no fallback to an unencrypted exchange.
var (
	// ErrInvalidWrappedKey indicates the server could not unwrap a
	// client-submitted session key.
	//
	// This can occur due to:
	//   - Malformed or truncated wrapped key material
	//   - A key wrapped under a different public key
	//   - Corrupted ciphertext
	//
	// This is a client error, not a server fault.
	//
	// HTTP Status: 400 Bad Request
	ErrInvalidWrappedKey = errors.Wrap(errors.ErrInvalidInput, "invalid wrapped session key")

	// ErrAuthenticationFailed indicates the GCM authentication tag did not verify.
	//
	// Tampered ciphertext, a wrong session key, or a wrong nonce all surface
	// here. Decryption aborts before any plaintext reaches the caller.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrIntegrityViolation indicates the content hash did not match the
	// decrypted plaintext. Treated exactly like an authentication failure:
	// the plaintext is discarded.
	ErrIntegrityViolation = errors.Wrap(errors.ErrInvalidInput, "integrity violation")

	// ErrProtocol indicates a malformed envelope: a missing field, or a nonce
	// or tag of the wrong length. The decode step fails closed rather than
	// degrading to partial data.
	ErrProtocol = errors.Wrap(errors.ErrInvalidInput, "protocol error")

	// ErrKeyAgreementUnavailable indicates the server public key could not be
	// obtained. Fatal to any subsequent request until the caller retries
	// initialization.
	ErrKeyAgreementUnavailable = errors.Wrap(errors.ErrUnavailable, "key agreement unavailable")

	// ErrTransport indicates a network-level failure while talking to the
	// server, distinct from a 404 so callers can choose different recovery.
	ErrTransport = errors.Wrap(errors.ErrUnavailable, "transport failure")

	// ErrResourceNotFound indicates the server reported the requested
	// resource does not exist (HTTP 404 passthrough).
	ErrResourceNotFound = errors.Wrap(errors.ErrNotFound, "resource not found")
)
