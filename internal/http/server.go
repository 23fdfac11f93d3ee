// Package http provides the HTTP server hosting the secure vocabulary exchange.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/kabourne/wordmatch/internal/config"
	"github.com/kabourne/wordmatch/internal/metrics"
	secureHTTP "github.com/kabourne/wordmatch/internal/secure/http"
)

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger

	// stopBackground cancels the middleware housekeeping goroutines.
	stopBackground context.CancelFunc
}

// NewServer creates a new HTTP server with all routes and middleware wired.
// meterProvider may be nil to disable HTTP metrics instrumentation.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	handler *secureHTTP.Handler,
	meterProvider metric.MeterProvider,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	// Health and readiness endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Key publication and the plaintext catalog
	router.GET("/publicKey", handler.PublicKeyHandler)
	router.GET("/vocabulary/books", handler.BooksHandler)

	backgroundCtx, stopBackground := context.WithCancel(context.Background())

	// The encrypted exchange endpoint carries per-IP rate limiting since it
	// performs an RSA private key operation per request.
	secureGroup := router.Group("/secure")
	if cfg.RateLimitEnabled {
		secureGroup.Use(RateLimitMiddleware(backgroundCtx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}
	secureGroup.POST("/vocabulary/:book/:unit", handler.SecureVocabularyHandler)

	return &Server{
		logger:         logger,
		stopBackground: stopBackground,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server and stops the middleware
// housekeeping goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.stopBackground()
	return s.server.Shutdown(ctx)
}
