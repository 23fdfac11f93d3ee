// Package http provides HTTP handlers for the secure vocabulary exchange.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/kabourne/wordmatch/internal/httputil"
	"github.com/kabourne/wordmatch/internal/secure/http/dto"
	secureUseCase "github.com/kabourne/wordmatch/internal/secure/usecase"
	customValidation "github.com/kabourne/wordmatch/internal/validation"
	vocabularyUseCase "github.com/kabourne/wordmatch/internal/vocabulary/usecase"
)

// Handler handles HTTP requests for the secure exchange: key publication,
// encrypted resource delivery, and the plaintext book catalog.
type Handler struct {
	exchangeUseCase   secureUseCase.ExchangeUseCase
	vocabularyUseCase vocabularyUseCase.UseCase
	logger            *slog.Logger
}

// NewHandler creates a new secure exchange handler with required dependencies.
func NewHandler(
	exchangeUseCase secureUseCase.ExchangeUseCase,
	vocabularyUseCase vocabularyUseCase.UseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		exchangeUseCase:   exchangeUseCase,
		vocabularyUseCase: vocabularyUseCase,
		logger:            logger,
	}
}

// PublicKeyHandler publishes the server public key.
// GET /publicKey - Returns 200 OK with the PEM-encoded key.
func (h *Handler) PublicKeyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.PublicKeyResponse{
		PublicKey: h.exchangeUseCase.PublicKeyPEM(),
	})
}

// SecureVocabularyHandler delivers one vocabulary unit sealed under the
// client's session key.
// POST /secure/vocabulary/:book/:unit - Returns 200 OK with an envelope.
func (h *Handler) SecureVocabularyHandler(c *gin.Context) {
	book := c.Param("book")
	unit := c.Param("unit")

	// Reject locators that could escape the vocabulary directory before
	// anything touches the filesystem.
	if err := validation.Validate(book, validation.Required, customValidation.ResourceName); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid book name: %w", err), h.logger)
		return
	}
	if err := validation.Validate(unit, validation.Required, customValidation.ResourceName); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid unit name: %w", err), h.logger)
		return
	}

	var req dto.SecureResourceRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Call use case
	envelope, err := h.exchangeUseCase.IssueEnvelope(c.Request.Context(), book, unit, req.EncryptedAesKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEnvelopeToResponse(envelope))
}

// BooksHandler lists the vocabulary books available on the server. The
// catalog is not sensitive and is served in the clear.
// GET /vocabulary/books - Returns 200 OK with the book list.
func (h *Handler) BooksHandler(c *gin.Context) {
	books, err := h.vocabularyUseCase.ListBooks(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.BooksResponse{Books: make([]dto.BookResponse, 0, len(books))}
	for _, book := range books {
		response.Books = append(response.Books, dto.BookResponse{
			Name:  book.Name,
			Units: book.Units,
		})
	}

	c.JSON(http.StatusOK, response)
}
