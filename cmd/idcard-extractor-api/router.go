package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spherical/idcard-extractor/cmd/idcard-extractor-api/handlers"
	"github.com/spherical/idcard-extractor/cmd/idcard-extractor-api/middleware"
	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, processor handlers.Processor) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.WithOperation("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}

	health := handlers.NewHealthHandler(cfg.Observability.ServiceName)
	extraction := handlers.NewExtractionHandler(logger, processor, cfg.Server.MaxUploadBytes)

	r.Get("/", health.Root)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	r.Post("/extract-id-data", extraction.Extract)
	// path used by earlier clients
	r.Post("/extract-aadhaar-data/", extraction.Extract)

	return r
}
