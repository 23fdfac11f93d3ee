// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/kabourne/wordmatch/internal/config"
	"github.com/kabourne/wordmatch/internal/http"
	"github.com/kabourne/wordmatch/internal/metrics"
	secureClient "github.com/kabourne/wordmatch/internal/secure/client"
	secureHTTP "github.com/kabourne/wordmatch/internal/secure/http"
	"github.com/kabourne/wordmatch/internal/secure/service"
	secureUseCase "github.com/kabourne/wordmatch/internal/secure/usecase"
	"github.com/kabourne/wordmatch/internal/vocabulary/repository"
	vocabularyUseCase "github.com/kabourne/wordmatch/internal/vocabulary/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	keyAgreement *service.KeyAgreementService
	cipher       *service.PayloadCipher

	// Repositories
	vocabularyRepo vocabularyUseCase.VocabularyRepository

	// Use Cases
	vocabularyUC vocabularyUseCase.UseCase
	exchangeUC   secureUseCase.ExchangeUseCase

	// Servers and clients
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	channelClient *secureClient.SecureChannelClient

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	keyAgreementInit    sync.Once
	cipherInit          sync.Once
	vocabularyRepoInit  sync.Once
	vocabularyUCInit    sync.Once
	exchangeUCInit      sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	channelClientInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled it returns a no-op implementation so use cases stay unconditional.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// KeyAgreementService returns the RSA key agreement service.
func (c *Container) KeyAgreementService() (*service.KeyAgreementService, error) {
	var err error
	c.keyAgreementInit.Do(func() {
		c.keyAgreement, err = service.NewKeyAgreementService(
			c.config.RSAPrivateKeyPEM,
			c.config.RSAPublicKeyPEM,
			c.Logger(),
		)
		if err != nil {
			c.initErrors["keyAgreement"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyAgreement"]; exists {
		return nil, storedErr
	}
	return c.keyAgreement, nil
}

// PayloadCipher returns the AES-GCM payload cipher.
func (c *Container) PayloadCipher() *service.PayloadCipher {
	c.cipherInit.Do(func() {
		c.cipher = service.NewPayloadCipher()
	})
	return c.cipher
}

// VocabularyRepository returns the vocabulary repository instance.
func (c *Container) VocabularyRepository() (vocabularyUseCase.VocabularyRepository, error) {
	var err error
	c.vocabularyRepoInit.Do(func() {
		if c.config.VocabularyDir == "" {
			err = fmt.Errorf("vocabulary directory is not configured")
			c.initErrors["vocabularyRepo"] = err
			return
		}
		c.vocabularyRepo = repository.NewFileVocabularyRepository(c.config.VocabularyDir)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vocabularyRepo"]; exists {
		return nil, storedErr
	}
	return c.vocabularyRepo, nil
}

// VocabularyUseCase returns the vocabulary use case instance.
func (c *Container) VocabularyUseCase() (vocabularyUseCase.UseCase, error) {
	var err error
	c.vocabularyUCInit.Do(func() {
		c.vocabularyUC, err = c.initVocabularyUseCase()
		if err != nil {
			c.initErrors["vocabularyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vocabularyUseCase"]; exists {
		return nil, storedErr
	}
	return c.vocabularyUC, nil
}

// ExchangeUseCase returns the secure exchange use case instance.
func (c *Container) ExchangeUseCase() (secureUseCase.ExchangeUseCase, error) {
	var err error
	c.exchangeUCInit.Do(func() {
		c.exchangeUC, err = c.initExchangeUseCase()
		if err != nil {
			c.initErrors["exchangeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["exchangeUseCase"]; exists {
		return nil, storedErr
	}
	return c.exchangeUC, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		var provider *metrics.Provider
		provider, err = c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}

		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// SecureChannelClient returns the client side of the secure exchange, used by
// the fetch command.
func (c *Container) SecureChannelClient() *secureClient.SecureChannelClient {
	c.channelClientInit.Do(func() {
		c.channelClient = secureClient.NewSecureChannelClient(
			c.config.ClientBaseURL,
			c.config.ClientTimeout,
			c.Logger(),
		)
	})
	return c.channelClient
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush the metrics pipeline if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return businessMetrics, nil
}

// initVocabularyUseCase creates the vocabulary use case with its repository.
func (c *Container) initVocabularyUseCase() (vocabularyUseCase.UseCase, error) {
	repo, err := c.VocabularyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary repository for vocabulary use case: %w", err)
	}

	return vocabularyUseCase.NewVocabularyUseCase(repo), nil
}

// initExchangeUseCase creates the exchange use case with all its dependencies.
func (c *Container) initExchangeUseCase() (secureUseCase.ExchangeUseCase, error) {
	keyAgreement, err := c.KeyAgreementService()
	if err != nil {
		return nil, fmt.Errorf("failed to get key agreement service for exchange use case: %w", err)
	}

	vocabularyUC, err := c.VocabularyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary use case for exchange use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for exchange use case: %w", err)
	}

	useCase := secureUseCase.NewDirectExchangeUseCase(keyAgreement, c.PayloadCipher(), vocabularyUC, c.Logger())

	return secureUseCase.NewExchangeUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	exchangeUC, err := c.ExchangeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange use case for http server: %w", err)
	}

	vocabularyUC, err := c.VocabularyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary use case for http server: %w", err)
	}

	handler := secureHTTP.NewHandler(exchangeUC, vocabularyUC, logger)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	if provider != nil {
		return http.NewServer(c.config, logger, handler, provider.MeterProvider()), nil
	}

	return http.NewServer(c.config, logger, handler, nil), nil
}
