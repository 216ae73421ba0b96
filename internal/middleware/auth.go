package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"crimestats/internal/auth"
	"crimestats/internal/models"
)

// PrincipalKey is the Locals key holding the authenticated *models.Principal.
const PrincipalKey = "principal"

// AuthMiddleware handles bearer token authentication.
type AuthMiddleware struct {
	verifier auth.Verifier
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(verifier auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	token := ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return unauthorized(c, "missing bearer token")
	}

	p, err := m.verifier.Verify(c.Context(), token)
	if err != nil {
		return unauthorized(c, auth.ErrInvalidToken.Error())
	}

	c.Locals(PrincipalKey, p)
	return c.Next()
}

// PrincipalFrom returns the principal stored by RequireAuth, or nil.
func PrincipalFrom(c fiber.Ctx) *models.Principal {
	p, _ := c.Locals(PrincipalKey).(*models.Principal)
	return p
}

// ExtractBearerToken returns the token from an Authorization header value, or
// "" when the scheme is not Bearer.
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(c fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="crimestats"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
