package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"

	"crimestats/internal/models"
)

// TokenIssuer is the iss claim of locally issued tokens.
const TokenIssuer = "crimestats"

// Tokens issues and verifies HS256 access tokens for local users.
type Tokens struct {
	key    []byte
	signer jose.Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens derives the signing key from secret.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	sum := sha256.Sum256([]byte(secret))
	key := sum[:]

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	return &Tokens{key: key, signer: signer, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for subject.
func (t *Tokens) Issue(subject string) (string, error) {
	now := t.now()
	claims := jwt.Claims{
		ID:       uuid.NewString(),
		Issuer:   TokenIssuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.Signed(t.signer).Claims(claims).Serialize()
}

// Verify implements Verifier.
func (t *Tokens) Verify(_ context.Context, raw string) (*models.Principal, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims jwt.Claims
	if err := tok.Claims(t.key, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Issuer: TokenIssuer, Time: t.now()}, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &models.Principal{Subject: claims.Subject, Source: models.SourceLocal}, nil
}
