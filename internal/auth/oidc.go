package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"crimestats/internal/models"
)

// OIDC runs the authorization code flow against an external issuer and
// verifies the ID tokens it returns.
type OIDC struct {
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// OIDCConfig holds the client registration.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewOIDC discovers the issuer and builds the client.
func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer: %w", err)
	}

	return &OIDC{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// NewOIDCWithVerifier builds a client around an existing verifier.
func NewOIDCWithVerifier(oauth2Config oauth2.Config, verifier *oidc.IDTokenVerifier) *OIDC {
	return &OIDC{oauth2Config: oauth2Config, verifier: verifier}
}

// AuthCodeURL returns the issuer's login URL for state.
func (o *OIDC) AuthCodeURL(state string) string {
	return o.oauth2Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified raw ID token.
func (o *OIDC) Exchange(ctx context.Context, code string) (string, *models.Principal, error) {
	token, err := o.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", nil, errors.New("missing id_token")
	}

	p, err := o.Verify(ctx, rawIDToken)
	if err != nil {
		return "", nil, err
	}
	return rawIDToken, p, nil
}

// Verify implements Verifier.
func (o *OIDC) Verify(ctx context.Context, raw string) (*models.Principal, error) {
	idToken, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &models.Principal{Subject: idToken.Subject, Source: models.SourceOIDC}, nil
}
