// Package repository provides the file-backed vocabulary store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/kabourne/wordmatch/internal/errors"
	"github.com/kabourne/wordmatch/internal/vocabulary/domain"
)

// FileVocabularyRepository reads vocabulary content from a directory tree of
// JSON files: <dir>/<book>/<unit>.json, where each unit file holds an array
// of word objects.
//
// The repository is read-only and safe for concurrent use. Book and unit
// names are constrained to single path segments before being joined, so a
// crafted locator cannot escape the vocabulary directory.
type FileVocabularyRepository struct {
	dir string
}

// NewFileVocabularyRepository creates a repository rooted at dir.
func NewFileVocabularyRepository(dir string) *FileVocabularyRepository {
	return &FileVocabularyRepository{dir: dir}
}

// GetUnit loads the words of one unit. Returns ErrNotFound when the book or
// unit does not exist, and ErrInvalidInput when a name is not a safe path
// segment.
func (r *FileVocabularyRepository) GetUnit(
	ctx context.Context,
	book, unit string,
) ([]domain.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !isSafeSegment(book) || !isSafeSegment(unit) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "book and unit must be plain names")
	}

	path := filepath.Join(r.dir, book, unit+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "unit %s/%s", book, unit)
		}
		return nil, fmt.Errorf("failed to read unit file: %w", err)
	}

	var words []domain.Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse unit file %s: %w", path, err)
	}

	return words, nil
}

// ListBooks returns the available books and their unit names, sorted for
// stable output.
func (r *FileVocabularyRepository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "vocabulary directory")
		}
		return nil, fmt.Errorf("failed to read vocabulary directory: %w", err)
	}

	var books []domain.Book
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		units, err := r.listUnits(entry.Name())
		if err != nil {
			return nil, err
		}
		books = append(books, domain.Book{Name: entry.Name(), Units: units})
	}

	sort.Slice(books, func(i, j int) bool { return books[i].Name < books[j].Name })
	return books, nil
}

// listUnits returns the unit names of one book directory.
func (r *FileVocabularyRepository) listUnits(book string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.dir, book))
	if err != nil {
		return nil, fmt.Errorf("failed to read book directory %s: %w", book, err)
	}

	var units []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		units = append(units, strings.TrimSuffix(entry.Name(), ".json"))
	}

	sort.Strings(units)
	return units, nil
}

// isSafeSegment reports whether name can be used as a single path segment.
func isSafeSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
