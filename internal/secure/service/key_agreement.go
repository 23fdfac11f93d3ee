package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kabourne/wordmatch/internal/errors"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// KeyAgreementService holds the server's long-lived RSA keypair and unwraps
// client-submitted session keys.
//
// The private half never leaves the service; only the PEM-encoded public half
// crosses the network. The keypair is immutable for the process lifetime, so
// the service carries no mutable state and is safe for concurrent use.
//
// Unwrapping uses RSA PKCS#1 v1.5 padding. This is a deliberate
// interoperability trade-off, not a security-optimal default: the widely
// deployed browser-side RSA libraries the counterpart uses do not support
// OAEP well, and switching padding breaks the wire contract.
type KeyAgreementService struct {
	privateKey   *rsa.PrivateKey
	publicKeyPEM string
}

// NewKeyAgreementService creates the key agreement service from a configured
// PEM keypair, or generates a fresh 2048-bit keypair when either half is
// missing.
//
// Generation logs a warning: an ephemeral keypair is unsuitable for any
// deployment that must survive a process restart while clients hold a cached
// public key.
func NewKeyAgreementService(
	privateKeyPEM, publicKeyPEM string,
	logger *slog.Logger,
) (*KeyAgreementService, error) {
	if privateKeyPEM != "" && publicKeyPEM != "" {
		privateKey, err := parsePrivateKeyPEM(privateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to load configured private key: %w", err)
		}
		return &KeyAgreementService{
			privateKey:   privateKey,
			publicKeyPEM: publicKeyPEM,
		}, nil
	}

	if logger != nil {
		logger.Warn("no RSA keypair configured, generating an ephemeral keypair",
			slog.Int("bits", secureDomain.RSAKeyBits),
		)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, secureDomain.RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	publicKeyPEM, err = MarshalPublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	return &KeyAgreementService{
		privateKey:   privateKey,
		publicKeyPEM: publicKeyPEM,
	}, nil
}

// PublicKeyPEM returns the PEM-encoded public key. It never fails once the
// service is constructed.
func (s *KeyAgreementService) PublicKeyPEM() string {
	return s.publicKeyPEM
}

// UnwrapSessionKey decrypts a wrapped session key using the private key.
//
// The wrapped key is base64 as produced by the browser-side library. The
// decrypted content is the session key's lowercase hex serialization (the
// canonical wire form); raw 32-byte key material is also accepted for
// binary-capable clients. Any decode or decryption failure surfaces as
// ErrInvalidWrappedKey, which the HTTP layer treats as a client error.
func (s *KeyAgreementService) UnwrapSessionKey(wrappedKey string) (secureDomain.SessionKey, error) {
	wrapped, err := base64.StdEncoding.DecodeString(strings.TrimSpace(wrappedKey))
	if err != nil {
		return nil, errors.Wrap(secureDomain.ErrInvalidWrappedKey, "wrapped key is not valid base64")
	}

	decrypted, err := rsa.DecryptPKCS1v15(rand.Reader, s.privateKey, wrapped)
	if err != nil {
		return nil, secureDomain.ErrInvalidWrappedKey
	}

	switch len(decrypted) {
	case secureDomain.SessionKeySize * 2:
		return secureDomain.SessionKeyFromHex(string(decrypted))
	case secureDomain.SessionKeySize:
		return secureDomain.SessionKey(decrypted), nil
	default:
		return nil, errors.Wrapf(
			secureDomain.ErrInvalidWrappedKey,
			"unexpected session key length %d",
			len(decrypted),
		)
	}
}

// WrapSessionKey encrypts a session key's hex serialization under the given
// public key with PKCS#1 v1.5 padding, producing the base64 wrapped form the
// server accepts. Used by the Go client and by tests; the browser counterpart
// performs the equivalent operation with its own RSA library.
func WrapSessionKey(publicKey *rsa.PublicKey, key secureDomain.SessionKey) (string, error) {
	wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, []byte(key.Hex()))
	if err != nil {
		return "", fmt.Errorf("failed to wrap session key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// ParsePublicKeyPEM parses a PEM-encoded RSA public key in PKIX or PKCS#1 form.
func ParsePublicKeyPEM(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("invalid public key PEM block")
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not an RSA key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return rsaKey, nil
}

// MarshalPublicKeyPEM serializes an RSA public key as a PKIX PEM block.
func MarshalPublicKeyPEM(publicKey *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})), nil
}

// MarshalPrivateKeyPEM serializes an RSA private key as a PKCS#8 PEM block.
func MarshalPrivateKeyPEM(privateKey *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	})), nil
}

// parsePrivateKeyPEM parses a PEM-encoded RSA private key in PKCS#8 or PKCS#1 form.
func parsePrivateKeyPEM(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("invalid private key PEM block")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not an RSA key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return rsaKey, nil
}
