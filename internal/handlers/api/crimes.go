package api

import (
	"github.com/gofiber/fiber/v3"

	"crimestats/internal/query"
	"crimestats/internal/validation"
)

// CrimeHandler serves the dashboard queries.
type CrimeHandler struct {
	svc *query.Service
}

// NewCrimeHandler creates a new crime query handler.
func NewCrimeHandler(svc *query.Service) *CrimeHandler {
	return &CrimeHandler{svc: svc}
}

// Heatmap returns the boundary collection with per-state totals.
func (h *CrimeHandler) Heatmap(c fiber.Ctx) error {
	year, err := validation.ParseOptionalYear(c.Query("year"))
	if err != nil {
		return writeError(c, err)
	}
	crimeType, err := validation.Dimension("type", c.Query("type"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.svc.Heatmap(c.Context(), query.HeatmapParams{Year: year, Type: crimeType})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Trends returns totals per date.
func (h *CrimeHandler) Trends(c fiber.Ctx) error {
	state, err := validation.Dimension("state", c.Query("state"))
	if err != nil {
		return writeError(c, err)
	}
	crimeType, err := validation.Dimension("type", c.Query("type"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.svc.Trends(c.Context(), query.TrendsParams{State: state, Type: crimeType})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Filters returns the distinct states and types.
func (h *CrimeHandler) Filters(c fiber.Ctx) error {
	out, err := h.svc.Filters(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MostDistricts returns the district breakdown for one state and year.
func (h *CrimeHandler) MostDistricts(c fiber.Ctx) error {
	year, err := validation.ParseYear(c.Query("year"))
	if err != nil {
		return writeError(c, err)
	}
	state, err := validation.RequiredDimension("state", c.Query("state"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.svc.MostDistricts(c.Context(), query.DistrictsParams{Year: year, State: state})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Distribution returns totals per crime type.
func (h *CrimeHandler) Distribution(c fiber.Ctx) error {
	year, err := validation.ParseOptionalYear(c.Query("year"))
	if err != nil {
		return writeError(c, err)
	}
	crimeType, err := validation.Dimension("type", c.Query("type"))
	if err != nil {
		return writeError(c, err)
	}
	state, err := validation.Dimension("state", c.Query("state"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.svc.Distribution(c.Context(), query.DistributionParams{Year: year, Type: crimeType, State: state})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RateChange returns the year over year percent change series.
func (h *CrimeHandler) RateChange(c fiber.Ctx) error {
	state, err := validation.Dimension("state", c.Query("state"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.svc.RateChange(c.Context(), state)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
