package service

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

func newTestService(t *testing.T) *KeyAgreementService {
	t.Helper()
	svc, err := NewKeyAgreementService("", "", slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return svc
}

func TestNewKeyAgreementService(t *testing.T) {
	t.Run("generates ephemeral keypair when unconfigured", func(t *testing.T) {
		svc := newTestService(t)
		assert.Contains(t, svc.PublicKeyPEM(), "BEGIN PUBLIC KEY")
	})

	t.Run("loads configured keypair", func(t *testing.T) {
		privateKey, err := rsa.GenerateKey(rand.Reader, secureDomain.RSAKeyBits)
		require.NoError(t, err)

		privatePEM, err := MarshalPrivateKeyPEM(privateKey)
		require.NoError(t, err)
		publicPEM, err := MarshalPublicKeyPEM(&privateKey.PublicKey)
		require.NoError(t, err)

		svc, err := NewKeyAgreementService(privatePEM, publicPEM, slog.New(slog.DiscardHandler))
		require.NoError(t, err)
		assert.Equal(t, publicPEM, svc.PublicKeyPEM())
	})

	t.Run("rejects malformed private key", func(t *testing.T) {
		_, err := NewKeyAgreementService("not a pem", "also not a pem", slog.New(slog.DiscardHandler))
		assert.Error(t, err)
	})
}

func TestKeyAgreementService_UnwrapSessionKey(t *testing.T) {
	svc := newTestService(t)
	publicKey, err := ParsePublicKeyPEM(svc.PublicKeyPEM())
	require.NoError(t, err)

	t.Run("recovers a wrapped key", func(t *testing.T) {
		key, err := secureDomain.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := WrapSessionKey(publicKey, key)
		require.NoError(t, err)

		unwrapped, err := svc.UnwrapSessionKey(wrapped)
		require.NoError(t, err)
		assert.Equal(t, key, unwrapped)
	})

	t.Run("recovers an all-zero key exactly", func(t *testing.T) {
		key := secureDomain.SessionKey(make([]byte, secureDomain.SessionKeySize))

		wrapped, err := WrapSessionKey(publicKey, key)
		require.NoError(t, err)

		unwrapped, err := svc.UnwrapSessionKey(wrapped)
		require.NoError(t, err)
		assert.Equal(t, key, unwrapped)
	})

	t.Run("accepts raw 32-byte key material", func(t *testing.T) {
		key, err := secureDomain.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, key)
		require.NoError(t, err)

		unwrapped, err := svc.UnwrapSessionKey(base64.StdEncoding.EncodeToString(wrapped))
		require.NoError(t, err)
		assert.Equal(t, key, unwrapped)
	})

	t.Run("accepts surrounding whitespace", func(t *testing.T) {
		key, err := secureDomain.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := WrapSessionKey(publicKey, key)
		require.NoError(t, err)

		unwrapped, err := svc.UnwrapSessionKey("  " + wrapped + "\n")
		require.NoError(t, err)
		assert.Equal(t, key, unwrapped)
	})

	t.Run("fails for a key wrapped under a different keypair", func(t *testing.T) {
		other := newTestService(t)
		otherPublicKey, err := ParsePublicKeyPEM(other.PublicKeyPEM())
		require.NoError(t, err)

		key, err := secureDomain.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := WrapSessionKey(otherPublicKey, key)
		require.NoError(t, err)

		_, err = svc.UnwrapSessionKey(wrapped)
		assert.ErrorIs(t, err, secureDomain.ErrInvalidWrappedKey)
	})

	t.Run("fails for invalid base64", func(t *testing.T) {
		_, err := svc.UnwrapSessionKey("%%%not base64%%%")
		assert.ErrorIs(t, err, secureDomain.ErrInvalidWrappedKey)
	})

	t.Run("fails for corrupted ciphertext", func(t *testing.T) {
		key, err := secureDomain.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := WrapSessionKey(publicKey, key)
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(wrapped)
		require.NoError(t, err)
		raw[0] ^= 0x01

		_, err = svc.UnwrapSessionKey(base64.StdEncoding.EncodeToString(raw))
		assert.ErrorIs(t, err, secureDomain.ErrInvalidWrappedKey)
	})

	t.Run("fails for wrong-length key material", func(t *testing.T) {
		wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, []byte("short"))
		require.NoError(t, err)

		_, err = svc.UnwrapSessionKey(base64.StdEncoding.EncodeToString(wrapped))
		assert.ErrorIs(t, err, secureDomain.ErrInvalidWrappedKey)
	})
}

func TestParsePublicKeyPEM(t *testing.T) {
	t.Run("parses PKIX PEM", func(t *testing.T) {
		svc := newTestService(t)
		publicKey, err := ParsePublicKeyPEM(svc.PublicKeyPEM())
		require.NoError(t, err)
		assert.Equal(t, secureDomain.RSAKeyBits, publicKey.N.BitLen())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParsePublicKeyPEM("garbage")
		assert.Error(t, err)
	})

	t.Run("rejects truncated PEM body", func(t *testing.T) {
		svc := newTestService(t)
		lines := strings.Split(svc.PublicKeyPEM(), "\n")
		truncated := strings.Join(append(lines[:2], "-----END PUBLIC KEY-----"), "\n")
		_, err := ParsePublicKeyPEM(truncated)
		assert.Error(t, err)
	})
}
