package usecase

import (
	"context"
	"log/slog"

	apperrors "github.com/kabourne/wordmatch/internal/errors"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// DirectExchangeUseCase implements ExchangeUseCase against a key agreement
// service, a payload cipher, and a payload provider.
type DirectExchangeUseCase struct {
	keyAgreement KeyAgreement
	cipher       PayloadCipher
	provider     PayloadProvider
	logger       *slog.Logger
}

// NewDirectExchangeUseCase creates a new DirectExchangeUseCase.
func NewDirectExchangeUseCase(keyAgreement KeyAgreement, cipher PayloadCipher, provider PayloadProvider, logger *slog.Logger) *DirectExchangeUseCase {
	return &DirectExchangeUseCase{
		keyAgreement: keyAgreement,
		cipher:       cipher,
		provider:     provider,
		logger:       logger,
	}
}

// PublicKeyPEM returns the PEM-encoded server public key.
func (u *DirectExchangeUseCase) PublicKeyPEM() string {
	return u.keyAgreement.PublicKeyPEM()
}

// IssueEnvelope unwraps the session key before touching the payload so an
// invalid key fails fast without a disk read. The unwrapped key is zeroed
// once the envelope is sealed.
func (u *DirectExchangeUseCase) IssueEnvelope(ctx context.Context, book, unit, wrappedKey string) (*secureDomain.Envelope, error) {
	sessionKey, err := u.keyAgreement.UnwrapSessionKey(wrappedKey)
	if err != nil {
		u.logger.WarnContext(ctx, "session key unwrap rejected", "book", book, "unit", unit, "error", err)
		return nil, apperrors.Wrap(err, "unwrap session key")
	}
	defer secureDomain.Zero(sessionKey)

	plaintext, err := u.provider.GetUnitPayload(ctx, book, unit)
	if err != nil {
		return nil, apperrors.Wrapf(err, "load payload for book=%s unit=%s", book, unit)
	}

	envelope, err := u.cipher.Encrypt(plaintext, sessionKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "seal payload")
	}

	u.logger.InfoContext(ctx, "envelope issued", "book", book, "unit", unit, "payload_bytes", len(plaintext))

	return envelope, nil
}
