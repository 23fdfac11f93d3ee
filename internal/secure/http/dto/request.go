// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/kabourne/wordmatch/internal/validation"
)

// SecureResourceRequest carries the client's wrapped session key for one
// secure resource fetch.
type SecureResourceRequest struct {
	EncryptedAesKey string `json:"encryptedAesKey"` // Base64-encoded RSA-wrapped session key
}

// Validate checks if the secure resource request is valid.
func (r *SecureResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EncryptedAesKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}
