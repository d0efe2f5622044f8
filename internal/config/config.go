// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config provides configuration management for meetingbot.
package config

import (
	"maps"
	"time"
)

// FileConfig is the YAML representation of the configuration file.
// Pointer fields distinguish "unset" from the zero value.
type FileConfig struct {
	LogLevel        string        `yaml:"logLevel,omitempty"`
	Timezone        string        `yaml:"timezone,omitempty"`
	ShutdownTimeout string        `yaml:"shutdownTimeout,omitempty"`
	API             APIConfig     `yaml:"api,omitempty"`
	Metrics         MetricsConfig `yaml:"metrics,omitempty"`
	Tracing         TracingConfig `yaml:"tracing,omitempty"`
	Dialog          DialogConfig  `yaml:"dialog,omitempty"`
}

// APIConfig configures the HTTP webhook.
type APIConfig struct {
	ListenAddr string          `yaml:"listenAddr,omitempty"`
	Token      string          `yaml:"token,omitempty"`
	RateLimit  RateLimitConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	RPS     *int  `yaml:"rps,omitempty"`
	Burst   *int  `yaml:"burst,omitempty"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

// DialogConfig holds per-slot prompt overrides.
type DialogConfig struct {
	Prompts map[string]string `yaml:"prompts,omitempty"`
}

// AppConfig is the effective runtime configuration.
type AppConfig struct {
	Version string

	LogLevel        string
	Timezone        string
	ShutdownTimeout time.Duration

	ListenAddr string
	APIToken   string

	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int

	MetricsEnabled bool

	TracingEnabled      bool
	TracingExporter     string
	TracingEndpoint     string
	TracingSamplingRate float64

	Prompts map[string]string
}

// Clone returns a deep copy of cfg.
func (cfg AppConfig) Clone() AppConfig {
	out := cfg
	out.Prompts = maps.Clone(cfg.Prompts)
	return out
}

// Default values.
const (
	DefaultLogLevel        = "info"
	DefaultTimezone        = "America/New_York"
	DefaultListenAddr      = ":8088"
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 100
	DefaultTracingExporter = "grpc"
	DefaultTracingEndpoint = "localhost:4317"
	DefaultShutdownTimeout = 15 * time.Second
)

// Defaults returns the configuration used when neither file nor environment
// set a value.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:            DefaultLogLevel,
		Timezone:            DefaultTimezone,
		ShutdownTimeout:     DefaultShutdownTimeout,
		ListenAddr:          DefaultListenAddr,
		RateLimitEnabled:    true,
		RateLimitRPS:        DefaultRateLimitRPS,
		RateLimitBurst:      DefaultRateLimitBurst,
		MetricsEnabled:      true,
		TracingEnabled:      false,
		TracingExporter:     DefaultTracingExporter,
		TracingEndpoint:     DefaultTracingEndpoint,
		TracingSamplingRate: 1.0,
		Prompts:             map[string]string{},
	}
}

// ToFile maps an effective configuration back to its file form.
func ToFile(cfg AppConfig) FileConfig {
	fc := FileConfig{
		LogLevel:        cfg.LogLevel,
		Timezone:        cfg.Timezone,
		ShutdownTimeout: cfg.ShutdownTimeout.String(),
		API: APIConfig{
			ListenAddr: cfg.ListenAddr,
			Token:      cfg.APIToken,
			RateLimit: RateLimitConfig{
				Enabled: boolPtr(cfg.RateLimitEnabled),
				RPS:     intPtr(cfg.RateLimitRPS),
				Burst:   intPtr(cfg.RateLimitBurst),
			},
		},
		Metrics: MetricsConfig{Enabled: boolPtr(cfg.MetricsEnabled)},
		Tracing: TracingConfig{
			Enabled:      boolPtr(cfg.TracingEnabled),
			Exporter:     cfg.TracingExporter,
			Endpoint:     cfg.TracingEndpoint,
			SamplingRate: floatPtr(cfg.TracingSamplingRate),
		},
	}
	if len(cfg.Prompts) > 0 {
		fc.Dialog.Prompts = maps.Clone(cfg.Prompts)
	}
	return fc
}

func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
