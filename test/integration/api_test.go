// Package integration provides end-to-end tests for the secure vocabulary
// exchange: the full server assembled through the DI container, driven by the
// real channel client over a live HTTP listener.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabourne/wordmatch/internal/app"
	"github.com/kabourne/wordmatch/internal/config"
	secureClient "github.com/kabourne/wordmatch/internal/secure/client"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
	"github.com/kabourne/wordmatch/internal/secure/http/dto"
	"github.com/kabourne/wordmatch/internal/secure/service"
	vocabularyDomain "github.com/kabourne/wordmatch/internal/vocabulary/domain"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	server    *httptest.Server
	words     []vocabularyDomain.Word
}

// setupIntegrationTest assembles the full application against a temporary
// vocabulary directory and exposes it on a live listener.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	words := []vocabularyDomain.Word{
		{Term: "apple", Definition: "a fruit", Phonetic: "/ˈæp.əl/"},
		{Term: "run", Definition: "to move fast"},
	}

	vocabularyDir := t.TempDir()
	bookDir := filepath.Join(vocabularyDir, "CET4")
	require.NoError(t, os.MkdirAll(bookDir, 0o755))

	data, err := json.Marshal(words)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(bookDir, "unit1.json"), data, 0o644))

	cfg := &config.Config{
		ServerHost:    "127.0.0.1",
		ServerPort:    0,
		LogLevel:      "error",
		VocabularyDir: vocabularyDir,
	}

	container := app.NewContainer(cfg)

	server, err := container.HTTPServer()
	require.NoError(t, err)

	testServer := httptest.NewServer(server.GetHandler())
	t.Cleanup(func() {
		testServer.Close()
		require.NoError(t, container.Shutdown(context.Background()))
	})

	return &integrationTestContext{
		container: container,
		server:    testServer,
		words:     words,
	}
}

func (ctx *integrationTestContext) newClient(t *testing.T) *secureClient.SecureChannelClient {
	t.Helper()
	return secureClient.NewSecureChannelClient(ctx.server.URL, 10*time.Second, ctx.container.Logger())
}

func TestIntegration_SecureExchange(t *testing.T) {
	testCtx := setupIntegrationTest(t)
	ctx := context.Background()

	t.Run("FullRoundTripThroughClient", func(t *testing.T) {
		client := testCtx.newClient(t)

		payload, err := client.RequestPayload(ctx, "CET4", "unit1")
		require.NoError(t, err)

		var unit vocabularyDomain.Unit
		require.NoError(t, json.Unmarshal(payload, &unit))
		assert.Equal(t, "unit1", unit.Name)
		assert.Equal(t, testCtx.words, unit.Words)
	})

	t.Run("EachRequestUsesAFreshSessionKey", func(t *testing.T) {
		// Two fetches must both succeed; stale session state on either
		// side would break the second exchange.
		client := testCtx.newClient(t)

		first, err := client.RequestPayload(ctx, "CET4", "unit1")
		require.NoError(t, err)
		second, err := client.RequestPayload(ctx, "CET4", "unit1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("UnknownUnitIsResourceNotFound", func(t *testing.T) {
		client := testCtx.newClient(t)

		_, err := client.RequestPayload(ctx, "CET4", "unit99")
		assert.ErrorIs(t, err, secureDomain.ErrResourceNotFound)
	})

	t.Run("TraversalLocatorIsRejected", func(t *testing.T) {
		// Drive the raw wire contract: the server must refuse locators
		// with path separators before touching the filesystem.
		resp, err := http.Post(
			testCtx.server.URL+"/secure/vocabulary/..%2F..%2Fetc/passwd",
			"application/json",
			bytes.NewReader([]byte(`{"encryptedAesKey":"QUFBQQ=="}`)),
		)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Contains(t, []int{http.StatusBadRequest, http.StatusNotFound}, resp.StatusCode)
	})

	t.Run("WrongKeypairWrapIsRejected", func(t *testing.T) {
		// Wrap a session key under a keypair the server does not hold.
		logger := testCtx.container.Logger()
		otherKeyAgreement, err := service.NewKeyAgreementService("", "", logger)
		require.NoError(t, err)
		otherPublicKey, err := service.ParsePublicKeyPEM(otherKeyAgreement.PublicKeyPEM())
		require.NoError(t, err)

		sessionKey, err := secureDomain.NewSessionKey()
		require.NoError(t, err)
		wrappedKey, err := service.WrapSessionKey(otherPublicKey, sessionKey)
		require.NoError(t, err)

		body, err := json.Marshal(dto.SecureResourceRequest{EncryptedAesKey: wrappedKey})
		require.NoError(t, err)

		resp, err := http.Post(
			testCtx.server.URL+"/secure/vocabulary/CET4/unit1",
			"application/json",
			bytes.NewReader(body),
		)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIntegration_PublicKeyStableAcrossRequests(t *testing.T) {
	testCtx := setupIntegrationTest(t)

	fetchKey := func() string {
		resp, err := http.Get(testCtx.server.URL + "/publicKey")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response dto.PublicKeyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		return response.PublicKey
	}

	first := fetchKey()
	second := fetchKey()
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestIntegration_BooksCatalog(t *testing.T) {
	testCtx := setupIntegrationTest(t)

	resp, err := http.Get(testCtx.server.URL + "/vocabulary/books")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response dto.BooksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.Len(t, response.Books, 1)
	assert.Equal(t, "CET4", response.Books[0].Name)
	assert.Equal(t, []string{"unit1"}, response.Books[0].Units)
}
