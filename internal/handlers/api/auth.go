package api

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"crimestats/internal/auth"
	"crimestats/internal/models"
	"crimestats/internal/validation"
)

const stateCookie = "oauth_state"

// AuthHandler issues bearer tokens.
type AuthHandler struct {
	creds         *auth.Credentials
	tokens        *auth.Tokens
	oidc          *auth.OIDC
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. oidc may be nil.
func NewAuthHandler(creds *auth.Credentials, tokens *auth.Tokens, oidc *auth.OIDC, secureCookies bool) *AuthHandler {
	return &AuthHandler{creds: creds, tokens: tokens, oidc: oidc, secureCookies: secureCookies}
}

// OIDCEnabled reports whether the OIDC routes should be registered.
func (h *AuthHandler) OIDCEnabled() bool {
	return h.oidc != nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks local credentials and returns an access token.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body loginRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.Credentials(body.Username, body.Password); err != nil {
		return writeError(c, err)
	}

	p, err := h.creds.Authenticate(body.Username, body.Password)
	if err != nil {
		slog.Info("login rejected", "username", body.Username)
		return writeError(c, err)
	}

	token, err := h.tokens.Issue(p.Subject)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(models.TokenResponse{AccessToken: token})
}

// OIDCLogin redirects to the identity provider.
func (h *AuthHandler) OIDCLogin(c fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		return writeError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((5 * time.Minute).Seconds()),
		Secure:   h.secureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().To(h.oidc.AuthCodeURL(state))
}

// OIDCCallback completes the code flow and returns the ID token as the
// access token.
func (h *AuthHandler) OIDCCallback(c fiber.Ctx) error {
	saved := c.Cookies(stateCookie)
	c.ClearCookie(stateCookie)
	if saved == "" || saved != c.Query("state") {
		return jsonError(c, fiber.StatusBadRequest, "invalid state")
	}

	rawIDToken, p, err := h.oidc.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		slog.Warn("oidc callback failed", "error", err)
		return jsonError(c, fiber.StatusUnauthorized, "authentication failed")
	}

	slog.Info("oidc login", "subject", p.Subject)
	return c.JSON(models.TokenResponse{AccessToken: rawIDToken})
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
