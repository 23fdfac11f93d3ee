// Package usecase provides the vocabulary business logic.
package usecase

import (
	"context"

	"github.com/kabourne/wordmatch/internal/vocabulary/domain"
)

// VocabularyRepository defines the interface for vocabulary content access.
type VocabularyRepository interface {
	// GetUnit loads the words of one unit of a book.
	GetUnit(ctx context.Context, book, unit string) ([]domain.Word, error)

	// ListBooks returns the available books and their unit names.
	ListBooks(ctx context.Context) ([]domain.Book, error)
}

// UseCase defines the interface for vocabulary operations.
type UseCase interface {
	// GetUnitPayload returns the canonical JSON payload for one unit, the
	// bytes that the secure exchange encrypts and the client decrypts.
	GetUnitPayload(ctx context.Context, book, unit string) ([]byte, error)

	// ListBooks returns the available books and their unit names.
	ListBooks(ctx context.Context) ([]domain.Book, error)
}
