// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
)

// PublicKeyResponse carries the PEM-encoded server public key.
type PublicKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// EnvelopeResponse represents a sealed payload in API responses. All four
// fields are base64-encoded raw bytes.
type EnvelopeResponse struct {
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	AuthTag       string `json:"authTag"`
	Hash          string `json:"hash"`
}

// MapEnvelopeToResponse converts a domain envelope to an API response.
func MapEnvelopeToResponse(envelope *secureDomain.Envelope) EnvelopeResponse {
	return EnvelopeResponse{
		EncryptedData: base64.StdEncoding.EncodeToString(envelope.Ciphertext),
		IV:            base64.StdEncoding.EncodeToString(envelope.Nonce),
		AuthTag:       base64.StdEncoding.EncodeToString(envelope.Tag),
		Hash:          base64.StdEncoding.EncodeToString(envelope.Hash),
	}
}

// MapResponseToEnvelope converts an API response back to a domain envelope.
// Used by the client side of the channel.
func MapResponseToEnvelope(response *EnvelopeResponse) (*secureDomain.Envelope, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(response.EncryptedData)
	if err != nil {
		return nil, secureDomain.ErrProtocol
	}
	nonce, err := base64.StdEncoding.DecodeString(response.IV)
	if err != nil {
		return nil, secureDomain.ErrProtocol
	}
	tag, err := base64.StdEncoding.DecodeString(response.AuthTag)
	if err != nil {
		return nil, secureDomain.ErrProtocol
	}
	hash, err := base64.StdEncoding.DecodeString(response.Hash)
	if err != nil {
		return nil, secureDomain.ErrProtocol
	}

	envelope := &secureDomain.Envelope{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Tag:        tag,
		Hash:       hash,
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return envelope, nil
}

// BooksResponse lists the vocabulary books available on the server.
type BooksResponse struct {
	Books []BookResponse `json:"books"`
}

// BookResponse represents one vocabulary book and its units.
type BookResponse struct {
	Name  string   `json:"name"`
	Units []string `json:"units"`
}
