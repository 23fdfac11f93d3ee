// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/hex"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/kabourne/wordmatch/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// LowercaseHex validates that a string is lowercase hex-encoded data.
var LowercaseHex = validation.NewStringRuleWithError(
	func(s string) bool {
		if s != strings.ToLower(s) {
			return false
		}
		_, err := hex.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_lowercase_hex", "must be lowercase hex-encoded data"),
)

// ResourceName validates that a string is safe to use as a path segment when
// resolving vocabulary resources on disk.
var ResourceName = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" || s == "." || s == ".." {
			return false
		}
		return !strings.ContainsAny(s, "/\\")
	},
	validation.NewError("validation_resource_name", "must not contain path separators"),
)
