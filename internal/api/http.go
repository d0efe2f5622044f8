// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api provides the HTTP webhook server for meetingbot.
package api

import (
	"context"
	"net/http"

	"github.com/ManuGH/meetingbot/internal/audit"
	"github.com/ManuGH/meetingbot/internal/config"
	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/health"
)

// maxRequestBody bounds the size of one fulfillment event.
const maxRequestBody = 1 << 20

// Dispatcher answers intent requests.
// Implemented by fulfillment.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error)
}

// ConfigSource returns the current configuration.
// Implemented by config.Holder.
type ConfigSource interface {
	Get() config.AppConfig
}

// staticConfig serves a fixed configuration.
type staticConfig config.AppConfig

func (c staticConfig) Get() config.AppConfig { return config.AppConfig(c).Clone() }

// Server represents the HTTP webhook server.
type Server struct {
	cfg           ConfigSource
	dispatcher    Dispatcher
	healthManager *health.Manager
	audit         *audit.Logger

	// settings fixed at construction; route and stack shape do not hot-reload
	metricsEnabled bool
	stack          stackSettings
}

type stackSettings struct {
	tracingService string
	rateLimit      bool
	rateLimitRPS   int
	rateLimitBurst int
}

// ServerOption allows functional configuration of the Server.
type ServerOption func(*Server)

// WithHealthManager replaces the default health manager.
func WithHealthManager(m *health.Manager) ServerOption {
	return func(s *Server) {
		if m != nil {
			s.healthManager = m
		}
	}
}

// WithConfigSource makes the server read the API token from src on every
// request, so token rotation applies without restart.
func WithConfigSource(src ConfigSource) ServerOption {
	return func(s *Server) {
		if src != nil {
			s.cfg = src
		}
	}
}

// New creates a webhook server. cfg fixes the middleware stack and routes.
func New(cfg config.AppConfig, dispatcher Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		cfg:            staticConfig(cfg.Clone()),
		dispatcher:     dispatcher,
		healthManager:  health.NewManager(cfg.Version),
		audit:          audit.NewLogger(),
		metricsEnabled: cfg.MetricsEnabled,
		stack: stackSettings{
			rateLimit:      cfg.RateLimitEnabled,
			rateLimitRPS:   cfg.RateLimitRPS,
			rateLimitBurst: cfg.RateLimitBurst,
		},
	}
	if cfg.TracingEnabled {
		s.stack.tracingService = "meetingbot"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HealthManager returns the health manager so callers can register checkers.
func (s *Server) HealthManager() *health.Manager {
	return s.healthManager
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
