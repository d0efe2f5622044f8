// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// ConfigPath returns the file this loader reads, or "" for env-only setups.
func (l *Loader) ConfigPath() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The result is validated before it is returned.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes one strict YAML document. An empty document yields an
// empty FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Timezone != "" {
		dst.Timezone = src.Timezone
	}
	if src.ShutdownTimeout != "" {
		d, err := time.ParseDuration(src.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdownTimeout %q: %w", src.ShutdownTimeout, err)
		}
		dst.ShutdownTimeout = d
	}

	if src.API.ListenAddr != "" {
		dst.ListenAddr = src.API.ListenAddr
	}
	if src.API.Token != "" {
		dst.APIToken = os.ExpandEnv(src.API.Token)
	}
	if rl := src.API.RateLimit; rl.Enabled != nil {
		dst.RateLimitEnabled = *rl.Enabled
	}
	if rl := src.API.RateLimit; rl.RPS != nil {
		dst.RateLimitRPS = *rl.RPS
	}
	if rl := src.API.RateLimit; rl.Burst != nil {
		dst.RateLimitBurst = *rl.Burst
	}

	if src.Metrics.Enabled != nil {
		dst.MetricsEnabled = *src.Metrics.Enabled
	}

	if src.Tracing.Enabled != nil {
		dst.TracingEnabled = *src.Tracing.Enabled
	}
	if src.Tracing.Exporter != "" {
		dst.TracingExporter = src.Tracing.Exporter
	}
	if src.Tracing.Endpoint != "" {
		dst.TracingEndpoint = src.Tracing.Endpoint
	}
	if src.Tracing.SamplingRate != nil {
		dst.TracingSamplingRate = *src.Tracing.SamplingRate
	}

	if len(src.Dialog.Prompts) > 0 {
		if dst.Prompts == nil {
			dst.Prompts = map[string]string{}
		}
		maps.Copy(dst.Prompts, src.Dialog.Prompts)
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Timezone = l.envString(EnvTimezone, cfg.Timezone)
	cfg.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.ListenAddr = l.envString(EnvListen, cfg.ListenAddr)
	cfg.APIToken = l.envString(EnvAPIToken, cfg.APIToken)
	cfg.RateLimitEnabled = l.envBool(EnvRateLimitEnabled, cfg.RateLimitEnabled)
	cfg.RateLimitRPS = l.envInt(EnvRateLimitRPS, cfg.RateLimitRPS)
	cfg.RateLimitBurst = l.envInt(EnvRateLimitBurst, cfg.RateLimitBurst)

	cfg.MetricsEnabled = l.envBool(EnvMetricsEnabled, cfg.MetricsEnabled)

	cfg.TracingEnabled = l.envBool(EnvTracingEnabled, cfg.TracingEnabled)
	cfg.TracingExporter = l.envString(EnvTracingExporter, cfg.TracingExporter)
	cfg.TracingEndpoint = l.envString(EnvTracingEndpoint, cfg.TracingEndpoint)
	cfg.TracingSamplingRate = l.envFloat(EnvTracingSamplingRate, cfg.TracingSamplingRate)
}
