package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabourne/wordmatch/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerHost:    "127.0.0.1",
		ServerPort:    8080,
		LogLevel:      "error",
		VocabularyDir: t.TempDir(),
		ClientBaseURL: "http://127.0.0.1:8080",
		ClientTimeout: 5 * time.Second,
	}
}

func TestContainer_Logger(t *testing.T) {
	container := NewContainer(testConfig(t))

	logger := container.Logger()
	require.NotNil(t, logger)

	// Same instance on repeated access
	assert.Same(t, logger, container.Logger())
}

func TestContainer_KeyAgreementService(t *testing.T) {
	container := NewContainer(testConfig(t))

	// No configured keypair: an ephemeral one is generated.
	keyAgreement, err := container.KeyAgreementService()
	require.NoError(t, err)
	require.NotNil(t, keyAgreement)
	assert.NotEmpty(t, keyAgreement.PublicKeyPEM())

	again, err := container.KeyAgreementService()
	require.NoError(t, err)
	assert.Same(t, keyAgreement, again)
}

func TestContainer_ExchangeUseCase(t *testing.T) {
	container := NewContainer(testConfig(t))

	useCase, err := container.ExchangeUseCase()
	require.NoError(t, err)
	require.NotNil(t, useCase)
	assert.NotEmpty(t, useCase.PublicKeyPEM())
}

func TestContainer_HTTPServer(t *testing.T) {
	container := NewContainer(testConfig(t))

	server, err := container.HTTPServer()
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NotNil(t, server.GetHandler())
}

func TestContainer_MetricsDisabled(t *testing.T) {
	container := NewContainer(testConfig(t))

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)

	// Disabled metrics still yield a usable no-op recorder.
	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestContainer_MetricsEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsEnabled = true
	cfg.MetricsNamespace = "wordmatch"
	cfg.MetricsPort = 9090
	container := NewContainer(cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	require.NotNil(t, metricsServer)

	require.NoError(t, container.Shutdown(context.Background()))
}

func TestContainer_VocabularyRepositoryRequiresDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.VocabularyDir = ""
	container := NewContainer(cfg)

	_, err := container.VocabularyRepository()
	require.Error(t, err)

	// The failure is sticky across accesses.
	_, err = container.VocabularyRepository()
	require.Error(t, err)

	// And propagates to dependents.
	_, err = container.VocabularyUseCase()
	require.Error(t, err)
}

func TestContainer_SecureChannelClient(t *testing.T) {
	container := NewContainer(testConfig(t))

	client := container.SecureChannelClient()
	require.NotNil(t, client)
	assert.Same(t, client, container.SecureChannelClient())
}

func TestContainer_Shutdown(t *testing.T) {
	container := NewContainer(testConfig(t))

	// Shutdown with nothing initialized is a no-op.
	assert.NoError(t, container.Shutdown(context.Background()))
}
