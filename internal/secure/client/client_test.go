package client_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/kabourne/wordmatch/internal/errors"
	"github.com/kabourne/wordmatch/internal/secure/client"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
	"github.com/kabourne/wordmatch/internal/secure/http/dto"
	"github.com/kabourne/wordmatch/internal/secure/service"
)

func TestMain(m *testing.M) {
	// http.Client keeps idle connections around; ignore the transport's
	// background readers.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// testServer runs the server side of the exchange against real crypto
// services so client tests exercise the full wire contract.
type testServer struct {
	server         *httptest.Server
	keyAgreement   *service.KeyAgreementService
	cipher         *service.PayloadCipher
	payloads       map[string][]byte
	publicKeyCalls atomic.Int64
	tamperEnvelope func(*dto.EnvelopeResponse)
	delayEnvelope  time.Duration
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	keyAgreement, err := service.NewKeyAgreementService("", "", slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ts := &testServer{
		keyAgreement: keyAgreement,
		cipher:       service.NewPayloadCipher(),
		payloads: map[string][]byte{
			"book1/unit1": []byte(`{"name":"unit1","words":[{"term":"apple","definition":"a fruit"}]}`),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /publicKey", func(w http.ResponseWriter, r *http.Request) {
		ts.publicKeyCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.PublicKeyResponse{PublicKey: keyAgreement.PublicKeyPEM()})
	})
	mux.HandleFunc("POST /secure/vocabulary/{book}/{unit}", func(w http.ResponseWriter, r *http.Request) {
		if ts.delayEnvelope > 0 {
			time.Sleep(ts.delayEnvelope)
		}

		var req dto.SecureResourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sessionKey, err := keyAgreement.UnwrapSessionKey(req.EncryptedAesKey)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		payload, ok := ts.payloads[r.PathValue("book")+"/"+r.PathValue("unit")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}

		envelope, err := ts.cipher.Encrypt(payload, sessionKey)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		response := dto.MapEnvelopeToResponse(envelope)
		if ts.tamperEnvelope != nil {
			ts.tamperEnvelope(&response)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})

	ts.server = httptest.NewServer(mux)
	t.Cleanup(ts.server.Close)

	return ts
}

func newTestClient(t *testing.T, baseURL string) *client.SecureChannelClient {
	t.Helper()
	c := client.NewSecureChannelClient(baseURL, 5*time.Second, slog.New(slog.DiscardHandler))
	return c
}

func TestSecureChannelClient_RequestPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RoundTrip", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL)

		payload, err := c.RequestPayload(ctx, "book1", "unit1")
		require.NoError(t, err)
		assert.Equal(t, ts.payloads["book1/unit1"], payload)
	})

	t.Run("Success_RepeatedRequestsFetchKeyOnce", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL)

		for range 3 {
			_, err := c.RequestPayload(ctx, "book1", "unit1")
			require.NoError(t, err)
		}

		assert.Equal(t, int64(1), ts.publicKeyCalls.Load())
	})

	t.Run("Error_UnknownResource", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL)

		payload, err := c.RequestPayload(ctx, "book1", "missing")
		assert.Nil(t, payload)
		assert.ErrorIs(t, err, secureDomain.ErrResourceNotFound)
	})

	t.Run("Error_ServerUnreachable", func(t *testing.T) {
		ts := newTestServer(t)
		url := ts.server.URL
		ts.server.Close()

		c := newTestClient(t, url)

		payload, err := c.RequestPayload(ctx, "book1", "unit1")
		assert.Nil(t, payload)
		assert.ErrorIs(t, err, secureDomain.ErrKeyAgreementUnavailable)
	})

	t.Run("Error_SlowServerIsTimeout", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL)

		// Cache the public key before the envelope endpoint starts stalling.
		require.NoError(t, c.EnsureInitialized(ctx))
		ts.delayEnvelope = 500 * time.Millisecond

		reqCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		payload, err := c.RequestPayload(reqCtx, "book1", "unit1")
		assert.Nil(t, payload)
		assert.ErrorIs(t, err, apperrors.ErrTimeout)
	})

	t.Run("Error_TamperedCiphertextFailsAuthentication", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tamperEnvelope = func(response *dto.EnvelopeResponse) {
			// Valid base64, wrong bytes.
			response.EncryptedData = response.AuthTag + response.EncryptedData
		}
		c := newTestClient(t, ts.server.URL)

		payload, err := c.RequestPayload(ctx, "book1", "unit1")
		assert.Nil(t, payload)
		assert.ErrorIs(t, err, secureDomain.ErrAuthenticationFailed)
	})

	t.Run("Error_MalformedEnvelopeIsProtocolError", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tamperEnvelope = func(response *dto.EnvelopeResponse) {
			response.IV = ""
		}
		c := newTestClient(t, ts.server.URL)

		payload, err := c.RequestPayload(ctx, "book1", "unit1")
		assert.Nil(t, payload)
		assert.ErrorIs(t, err, secureDomain.ErrProtocol)
	})
}

func TestSecureChannelClient_EnsureInitialized(t *testing.T) {
	ctx := context.Background()

	t.Run("ConcurrentCallersShareOneFetch", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = c.EnsureInitialized(ctx)
			}()
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, int64(1), ts.publicKeyCalls.Load())
	})

	t.Run("FailedFetchRetriesOnNextCall", func(t *testing.T) {
		ts := newTestServer(t)
		c := newTestClient(t, ts.server.URL+"/wrong-prefix")

		err := c.EnsureInitialized(ctx)
		assert.ErrorIs(t, err, secureDomain.ErrKeyAgreementUnavailable)

		// A client pointed at the right URL succeeds; the failed attempt
		// must not have poisoned a cache on the server side.
		good := newTestClient(t, ts.server.URL)
		assert.NoError(t, good.EnsureInitialized(ctx))
	})
}
