package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyVerifier implements TokenVerifier for a single static API key,
// stored as a bcrypt hash so the plaintext key never lives in config.
// Hashes are produced by cmd/keygen.
type APIKeyVerifier struct {
	keyHash []byte
}

var _ TokenVerifier = (*APIKeyVerifier)(nil)

// NewAPIKeyVerifier creates an APIKeyVerifier from a bcrypt hash of the key.
func NewAPIKeyVerifier(keyHash string) *APIKeyVerifier {
	return &APIKeyVerifier{keyHash: []byte(keyHash)}
}

// Verify compares the presented credential against the configured key hash.
func (v *APIKeyVerifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	if err := bcrypt.CompareHashAndPassword(v.keyHash, []byte(credential)); err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{Subject: "api-key"}, nil
}
