// Package client implements the consumer side of the secure vocabulary
// exchange: fetch the server public key once, then request payloads sealed
// under fresh per-request session keys.
package client

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/kabourne/wordmatch/internal/errors"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
	"github.com/kabourne/wordmatch/internal/secure/http/dto"
	"github.com/kabourne/wordmatch/internal/secure/service"
)

// SecureChannelClient fetches vocabulary payloads over the encrypted channel.
// Safe for concurrent use.
type SecureChannelClient struct {
	baseURL    string
	httpClient *http.Client
	cipher     *service.PayloadCipher
	logger     *slog.Logger

	// The server public key is fetched once, no matter how many goroutines
	// race on the first request.
	fetchGroup singleflight.Group
	mu         sync.RWMutex
	publicKey  *rsa.PublicKey
}

// NewSecureChannelClient creates a client for the server at baseURL.
func NewSecureChannelClient(baseURL string, timeout time.Duration, logger *slog.Logger) *SecureChannelClient {
	return &SecureChannelClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cipher:     service.NewPayloadCipher(),
		logger:     logger,
	}
}

// EnsureInitialized fetches and caches the server public key if it is not
// cached yet. Concurrent callers share a single fetch.
func (c *SecureChannelClient) EnsureInitialized(ctx context.Context) error {
	c.mu.RLock()
	initialized := c.publicKey != nil
	c.mu.RUnlock()
	if initialized {
		return nil
	}

	_, err, _ := c.fetchGroup.Do("publicKey", func() (interface{}, error) {
		c.mu.RLock()
		cached := c.publicKey
		c.mu.RUnlock()
		if cached != nil {
			return nil, nil
		}

		publicKey, err := c.fetchPublicKey(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.publicKey = publicKey
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "server public key cached", "key_bits", publicKey.N.BitLen())

		return nil, nil
	})

	return err
}

// RequestPayload fetches one vocabulary unit over the encrypted channel and
// returns the verified plaintext payload.
func (c *SecureChannelClient) RequestPayload(ctx context.Context, book, unit string) ([]byte, error) {
	if err := c.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	publicKey := c.publicKey
	c.mu.RUnlock()

	sessionKey, err := secureDomain.NewSessionKey()
	if err != nil {
		return nil, apperrors.Wrap(err, "generate session key")
	}
	defer secureDomain.Zero(sessionKey)

	wrappedKey, err := service.WrapSessionKey(publicKey, sessionKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "wrap session key")
	}

	envelope, err := c.fetchEnvelope(ctx, book, unit, wrappedKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.cipher.Decrypt(envelope, sessionKey)
	if err != nil {
		return nil, err
	}

	if !c.cipher.VerifyIntegrity(plaintext, envelope.Hash) {
		return nil, secureDomain.ErrIntegrityViolation
	}

	return plaintext, nil
}

// fetchPublicKey retrieves and parses the server public key.
func (c *SecureChannelClient) fetchPublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/publicKey", nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "build public key request")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(secureDomain.ErrKeyAgreementUnavailable, "fetch public key: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(secureDomain.ErrKeyAgreementUnavailable, "fetch public key: status %d", resp.StatusCode)
	}

	var response dto.PublicKeyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&response); err != nil {
		return nil, apperrors.Wrapf(secureDomain.ErrKeyAgreementUnavailable, "decode public key response: %v", err)
	}

	publicKey, err := service.ParsePublicKeyPEM(response.PublicKey)
	if err != nil {
		return nil, apperrors.Wrapf(secureDomain.ErrKeyAgreementUnavailable, "parse public key: %v", err)
	}

	return publicKey, nil
}

// maxResponseBytes bounds response bodies read by the client.
const maxResponseBytes = 8 << 20

// isTimeout reports whether err is a client timeout or an expired deadline.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// fetchEnvelope posts the wrapped session key and decodes the returned envelope.
func (c *SecureChannelClient) fetchEnvelope(ctx context.Context, book, unit, wrappedKey string) (*secureDomain.Envelope, error) {
	body, err := json.Marshal(dto.SecureResourceRequest{EncryptedAesKey: wrappedKey})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal secure resource request")
	}

	url := fmt.Sprintf("%s/secure/vocabulary/%s/%s", c.baseURL, book, unit)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, "build secure resource request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.Wrapf(apperrors.ErrTimeout, "fetch envelope: %v", err)
		}
		return nil, apperrors.Wrapf(secureDomain.ErrTransport, "fetch envelope: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to envelope decoding.
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.Wrapf(secureDomain.ErrResourceNotFound, "book=%s unit=%s", book, unit)
	default:
		return nil, apperrors.Wrapf(secureDomain.ErrTransport, "fetch envelope: status %d", resp.StatusCode)
	}

	var response dto.EnvelopeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&response); err != nil {
		return nil, apperrors.Wrapf(secureDomain.ErrProtocol, "decode envelope response: %v", err)
	}

	return dto.MapResponseToEnvelope(&response)
}
