package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kabourne/wordmatch/internal/vocabulary/domain"
)

// vocabularyUseCase implements UseCase on top of a VocabularyRepository.
type vocabularyUseCase struct {
	repository VocabularyRepository
}

// NewVocabularyUseCase creates the vocabulary use case.
func NewVocabularyUseCase(repository VocabularyRepository) UseCase {
	return &vocabularyUseCase{repository: repository}
}

// GetUnitPayload loads a unit and marshals it into the payload form carried
// through the secure exchange: a Unit object with its word list.
func (u *vocabularyUseCase) GetUnitPayload(ctx context.Context, book, unit string) ([]byte, error) {
	words, err := u.repository.GetUnit(ctx, book, unit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(domain.Unit{Name: unit, Words: words})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit payload: %w", err)
	}

	return payload, nil
}

// ListBooks returns the available books and their unit names.
func (u *vocabularyUseCase) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return u.repository.ListBooks(ctx)
}
