// SPDX-License-Identifier: MIT

// Package daemon provides the core bootstrapping and lifecycle management
// shared by the webhook server and the Lambda handler.
package daemon

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ManuGH/meetingbot/internal/api"
	"github.com/ManuGH/meetingbot/internal/config"
	"github.com/ManuGH/meetingbot/internal/fulfillment"
	"github.com/ManuGH/meetingbot/internal/health"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/platform/tz"
	"github.com/ManuGH/meetingbot/internal/telemetry"
)

// Options controls Bootstrap.
type Options struct {
	// Version is the build version
	Version string

	// ConfigPath is the path to the YAML config file; empty means ENV only
	ConfigPath string

	// LogOutput overrides the log writer (defaults to stdout)
	LogOutput io.Writer

	// Getenv is used for telemetry defaults (defaults to os.Getenv)
	Getenv func(string) string
}

// Runtime is the wired application: configuration, dispatcher and server.
type Runtime struct {
	Config     *config.Holder
	Dispatcher *fulfillment.Dispatcher
	Server     *api.Server
	Telemetry  *telemetry.Provider
	Logger     zerolog.Logger
}

// Bootstrap loads configuration, pins the time zone, configures logging and
// tracing, and wires the BookMeeting dispatcher and the webhook server.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	loader := config.NewLoader(opts.ConfigPath, opts.Version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := tz.Apply(cfg.Timezone); err != nil {
		return nil, err
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Output:  opts.LogOutput,
		Service: "meetingbot",
		Version: cfg.Version,
	})
	logger := log.WithComponent("daemon")

	telCfg := telemetry.ConfigFromEnv(telemetry.Config{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    "meetingbot",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.TracingExporter,
		Endpoint:       cfg.TracingEndpoint,
		SamplingRate:   cfg.TracingSamplingRate,
	}, getenv)
	provider, err := telemetry.NewProvider(ctx, telCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}
	if telCfg.Enabled {
		logger.Info().
			Str("exporter", telCfg.ExporterType).
			Str("endpoint", telCfg.Endpoint).
			Float64("sampling_rate", telCfg.SamplingRate).
			Msg("Telemetry initialized")
	}

	holder := config.NewHolder(cfg, loader)
	dispatcher := fulfillment.NewBookMeetingDispatcher([]fulfillment.BookMeetingOption{
		fulfillment.WithPrompts(holder.Prompts),
	})

	server := api.New(cfg, dispatcher, api.WithConfigSource(holder))
	hm := server.HealthManager()
	hm.RegisterChecker(health.NewIntentsChecker(dispatcher.Intents))
	hm.RegisterChecker(health.NewTimezoneChecker(func() string { return holder.Get().Timezone }))
	if path := loader.ConfigPath(); path != "" {
		hm.RegisterChecker(health.NewFileChecker("config", path))
	}

	logger.Info().
		Str(log.FieldVersion, cfg.Version).
		Str("timezone", cfg.Timezone).
		Strs("intents", dispatcher.Intents()).
		Msg("meetingbot initialised")

	return &Runtime{
		Config:     holder,
		Dispatcher: dispatcher,
		Server:     server,
		Telemetry:  provider,
		Logger:     logger,
	}, nil
}

// Serve runs the webhook server until ctx is cancelled.
func (r *Runtime) Serve(ctx context.Context) error {
	cfg := r.Config.Get()
	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	mgr, err := NewManager(ServerConfigFrom(cfg), Deps{
		Logger:     r.Logger,
		APIHandler: r.Server.Handler(),
	})
	if err != nil {
		return err
	}
	mgr.RegisterShutdownHook("telemetry", r.Telemetry.Shutdown)

	return NewApp(r.Logger, mgr, r.Config).Run(ctx)
}

// Close releases what Bootstrap acquired when Serve is not used.
func (r *Runtime) Close(ctx context.Context) error {
	r.Config.Stop()
	return r.Telemetry.Shutdown(ctx)
}
