// Package auth provides credential verification for the API. Credential
// issuance (login, refresh) is out of scope: the server only needs to decide
// whether a presented bearer credential is valid.
package auth

import (
	"context"
	"errors"
	"time"
)

// Common verification errors.
var (
	// ErrInvalidToken is returned when a credential is malformed, has an
	// invalid signature, or otherwise fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a credential has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a credential is not yet valid.
	ErrTokenNotYetValid = errors.New("token not yet valid")
)

// TokenVerifier validates a bearer credential and yields its claims.
// Implementations must return one of the sentinel errors above on failure so
// callers can map them to responses without inspecting error strings.
type TokenVerifier interface {
	// Verify validates the credential and returns the claims it carries,
	// or an error if verification fails.
	Verify(ctx context.Context, credential string) (*Claims, error)
}

// Claims represents the verified identity information carried by a credential.
type Claims struct {
	// Subject identifies the credential holder.
	Subject string `json:"sub,omitempty"`

	// Standard registered claims, populated when the credential carries them.
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
