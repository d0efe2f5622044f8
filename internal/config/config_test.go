// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/meetingbot/internal/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "v1.2.3"
	assert.Equal(t, want, cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
timezone: Europe/Berlin
shutdownTimeout: 5s
api:
  listenAddr: "127.0.0.1:9000"
  token: secret
  rateLimit:
    enabled: false
metrics:
  enabled: false
tracing:
  enabled: true
  exporter: http
  endpoint: "collector:4318"
  samplingRate: 0.25
dialog:
  prompts:
    meetingDate: "Which day?"
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, DefaultRateLimitRPS, cfg.RateLimitRPS)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "http", cfg.TracingExporter)
	assert.Equal(t, "collector:4318", cfg.TracingEndpoint)
	assert.InDelta(t, 0.25, cfg.TracingSamplingRate, 1e-9)
	assert.Equal(t, map[string]string{"meetingDate": "Which day?"}, cfg.Prompts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logLevel: debug\napi:\n  listenAddr: \":9000\"\n")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvListen, ":9100")
	t.Setenv(EnvRateLimitRPS, "7")
	t.Setenv(EnvMetricsEnabled, "no")
	t.Setenv(EnvShutdownTimeout, "3s")

	loader := NewLoader(path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, 7, cfg.RateLimitRPS)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Contains(t, loader.ConsumedEnvKeys, EnvTracingSamplingRate)
}

func TestLoad_InvalidEnvValueFallsBack(t *testing.T) {
	t.Setenv(EnvRateLimitBurst, "lots")
	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimitBurst, cfg.RateLimitBurst)
}

func TestParseEnv_InvalidValuesWarn(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.Config{Level: "debug", Output: &buf, Service: "test"})
	t.Cleanup(func() { log.Configure(log.Config{}) })

	t.Setenv(EnvRateLimitRPS, "fast")
	t.Setenv(EnvShutdownTimeout, "soon")
	t.Setenv(EnvMetricsEnabled, "maybe")
	t.Setenv(EnvTracingSamplingRate, "half")

	assert.Equal(t, 3, ParseInt(EnvRateLimitRPS, 3))
	assert.Equal(t, time.Second, ParseDuration(EnvShutdownTimeout, time.Second))
	assert.True(t, ParseBool(EnvMetricsEnabled, true))
	assert.Equal(t, 0.25, ParseFloat(EnvTracingSamplingRate, 0.25))

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, `"level":"warn"`))
	for _, key := range []string{EnvRateLimitRPS, EnvShutdownTimeout, EnvMetricsEnabled, EnvTracingSamplingRate} {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, `"component":"config"`)
}

func TestLoad_StrictParsing(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		path := writeConfig(t, "logLevel: info\ncalendar: outlook\n")
		_, err := NewLoader(path, "").Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownConfigField)
	})

	t.Run("multiple documents", func(t *testing.T) {
		path := writeConfig(t, "logLevel: info\n---\nlogLevel: debug\n")
		_, err := NewLoader(path, "").Load()
		assert.ErrorIs(t, err, ErrMultipleDocuments)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeConfig(t, "")
		_, err := NewLoader(path, "").Load()
		assert.NoError(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "config.json"), "").Load()
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeConfig(t, "shutdownTimeout: soon\n")
		_, err := NewLoader(path, "").Load()
		assert.ErrorContains(t, err, "shutdownTimeout")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*AppConfig) {}},
		{name: "invalid timezone", mutate: func(c *AppConfig) { c.Timezone = "Mars/Olympus_Mons" }, wantErr: "Timezone"},
		{name: "invalid log level", mutate: func(c *AppConfig) { c.LogLevel = "loud" }, wantErr: "LogLevel"},
		{name: "invalid listen addr", mutate: func(c *AppConfig) { c.ListenAddr = "8088" }, wantErr: "ListenAddr"},
		{name: "zero rps", mutate: func(c *AppConfig) { c.RateLimitRPS = 0 }, wantErr: "RateLimitRPS"},
		{name: "zero rps ignored when disabled", mutate: func(c *AppConfig) { c.RateLimitEnabled = false; c.RateLimitRPS = 0 }},
		{name: "bad exporter", mutate: func(c *AppConfig) { c.TracingEnabled = true; c.TracingExporter = "zipkin" }, wantErr: "TracingExporter"},
		{name: "sampling out of range", mutate: func(c *AppConfig) { c.TracingSamplingRate = 1.5 }, wantErr: "TracingSamplingRate"},
		{name: "unknown prompt slot", mutate: func(c *AppConfig) { c.Prompts = map[string]string{"room": "Where?"} }, wantErr: "Prompts.room"},
		{name: "empty prompt", mutate: func(c *AppConfig) { c.Prompts = map[string]string{"participant": "  "} }, wantErr: "Prompts.participant"},
		{name: "non-positive shutdown", mutate: func(c *AppConfig) { c.ShutdownTimeout = 0 }, wantErr: "ShutdownTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManager_WriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	m := NewManager(path)

	require.NoError(t, m.WriteDefault(false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	assert.ErrorIs(t, m.WriteDefault(false), ErrConfigExists)
	assert.NoError(t, m.WriteDefault(true))
}

func TestManager_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Defaults()
	cfg.LogLevel = "debug"
	cfg.Prompts = map[string]string{"meetingTitle": "What should we call it?"}

	require.NoError(t, NewManager(path).Save(cfg))

	got, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestAppConfig_CloneIsDeep(t *testing.T) {
	cfg := Defaults()
	cfg.Prompts["meetingDate"] = "Day?"

	c := cfg.Clone()
	c.Prompts["meetingDate"] = "changed"
	assert.Equal(t, "Day?", cfg.Prompts["meetingDate"])
}
