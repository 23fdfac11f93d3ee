package usecase

import (
	"context"
	"time"

	"github.com/kabourne/wordmatch/internal/metrics"
	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// exchangeUseCaseWithMetrics decorates ExchangeUseCase with metrics instrumentation.
type exchangeUseCaseWithMetrics struct {
	next    ExchangeUseCase
	metrics metrics.BusinessMetrics
}

// NewExchangeUseCaseWithMetrics wraps an ExchangeUseCase with metrics recording.
func NewExchangeUseCaseWithMetrics(useCase ExchangeUseCase, m metrics.BusinessMetrics) ExchangeUseCase {
	return &exchangeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// PublicKeyPEM returns the PEM-encoded server public key. Key publication is
// a static read and is not instrumented.
func (e *exchangeUseCaseWithMetrics) PublicKeyPEM() string {
	return e.next.PublicKeyPEM()
}

// IssueEnvelope records metrics for envelope issuance operations.
func (e *exchangeUseCaseWithMetrics) IssueEnvelope(
	ctx context.Context,
	book, unit, wrappedKey string,
) (*secureDomain.Envelope, error) {
	start := time.Now()
	envelope, err := e.next.IssueEnvelope(ctx, book, unit, wrappedKey)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "secure", "issue_envelope", status)
	e.metrics.RecordDuration(ctx, "secure", "issue_envelope", time.Since(start), status)

	return envelope, err
}
