package server

import (
	"crimestats/internal/auth"
	"crimestats/internal/handlers/api"
	"crimestats/internal/metrics"
	"crimestats/internal/middleware"
	"crimestats/internal/query"
)

// Deps are the collaborators the routes are built from. OIDC and DB may be nil.
type Deps struct {
	Query       *query.Service
	Credentials *auth.Credentials
	Tokens      *auth.Tokens
	OIDC        *auth.OIDC
	DB          api.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	verifier := auth.Chain{d.Tokens}
	if d.OIDC != nil {
		verifier = append(verifier, d.OIDC)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	crimeHandler := api.NewCrimeHandler(d.Query)
	authHandler := api.NewAuthHandler(d.Credentials, d.Tokens, d.OIDC, s.Cfg.TLSEnabled || !s.Cfg.IsDev())
	healthHandler := api.NewHealthHandler(d.Query.TemplateFeatures(), d.DB)

	// Auth routes
	s.App.Post("/login", authHandler.Login)
	if authHandler.OIDCEnabled() {
		s.App.Get("/auth/login", authHandler.OIDCLogin)
		s.App.Get("/auth/callback", authHandler.OIDCCallback)
	}

	// Public dashboard routes
	s.App.Get("/crime-trends", crimeHandler.Trends)
	s.App.Get("/api/filters", crimeHandler.Filters)
	s.App.Get("/crime-rate-change", crimeHandler.RateChange)

	// Protected dashboard routes
	s.App.Get("/crime-heatmap", authMiddleware.RequireAuth, crimeHandler.Heatmap)
	s.App.Get("/most-districts", authMiddleware.RequireAuth, crimeHandler.MostDistricts)
	s.App.Get("/crime-distribution", authMiddleware.RequireAuth, crimeHandler.Distribution)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Healthz)
	s.App.Get("/metrics", metrics.Handler())
}
