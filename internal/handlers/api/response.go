package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"crimestats/internal/auth"
	"crimestats/internal/engine"
	"crimestats/internal/store"
	"crimestats/internal/validation"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, engine.ErrAggregation),
		errors.Is(err, engine.ErrZeroBaseline),
		errors.Is(err, engine.ErrAmbiguousStateTotal),
		errors.Is(err, engine.ErrColumnCollision):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, store.ErrLoad):
		return fiber.StatusBadGateway
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// writeError renders err with the status StatusFor assigns. Server-side
// failures are logged and their details withheld from the client.
func writeError(c fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		if status == fiber.StatusBadGateway {
			return jsonError(c, status, "dataset unavailable")
		}
		return jsonError(c, status, "internal server error")
	}
	return jsonError(c, status, err.Error())
}

// ErrorHandler is the app-level Fiber error handler.
func ErrorHandler(c fiber.Ctx, err error) error {
	return writeError(c, err)
}
