// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/meetingbot/internal/api/middleware"
	"github.com/ManuGH/meetingbot/internal/api/problem"
)

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         s.metricsEnabled,
		TracingService:        s.stack.tracingService,
		EnableLogging:         true,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "system/not_found", "Not Found", problem.CodeNotFound, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, "system/method_not_allowed", "Method Not Allowed", problem.CodeMethodNotAllowed, "")
	})

	s.registerPublicRoutes(r)

	r.Group(func(r chi.Router) {
		if s.stack.rateLimit {
			r.Use(middleware.APIRateLimit(s.stack.rateLimitRPS, s.stack.rateLimitBurst))
		}
		r.Use(s.authMiddleware)
		r.Post("/v1/fulfillment", s.handleFulfillment)
	})

	return r
}

func (s *Server) registerPublicRoutes(r chi.Router) {
	r.Get("/healthz", s.healthManager.ServeHealth)
	r.Get("/readyz", s.healthManager.ServeReady)
	r.Get("/openapi.yaml", serveOpenAPI)
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
}
