// Package auth issues and verifies bearer tokens. Local users sign in with a
// bcrypt credential table and receive HS256 tokens; OIDC ID tokens from the
// configured issuer are accepted as well.
package auth

import (
	"context"
	"errors"

	"crimestats/internal/models"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for a missing, malformed, expired or
	// foreign bearer token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier turns a bearer token into the principal it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Principal, error)
}

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

// Verify implements Verifier.
func (c Chain) Verify(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	for _, v := range c {
		if v == nil {
			continue
		}
		if p, err := v.Verify(ctx, token); err == nil {
			return p, nil
		}
	}
	return nil, ErrInvalidToken
}
