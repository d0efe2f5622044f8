// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys. Each overrides the matching file setting.
const (
	EnvLogLevel            = "MEETINGBOT_LOG_LEVEL"
	EnvTimezone            = "MEETINGBOT_TIMEZONE"
	EnvListen              = "MEETINGBOT_LISTEN"
	EnvAPIToken            = "MEETINGBOT_API_TOKEN"
	EnvRateLimitEnabled    = "MEETINGBOT_RATE_LIMIT_ENABLED"
	EnvRateLimitRPS        = "MEETINGBOT_RATE_LIMIT_RPS"
	EnvRateLimitBurst      = "MEETINGBOT_RATE_LIMIT_BURST"
	EnvMetricsEnabled      = "MEETINGBOT_METRICS_ENABLED"
	EnvTracingEnabled      = "MEETINGBOT_TRACING_ENABLED"
	EnvTracingExporter     = "MEETINGBOT_TRACING_EXPORTER"
	EnvTracingEndpoint     = "MEETINGBOT_TRACING_ENDPOINT"
	EnvTracingSamplingRate = "MEETINGBOT_TRACING_SAMPLING_RATE"
	EnvShutdownTimeout     = "MEETINGBOT_SHUTDOWN_TIMEOUT"

	// EnvConfigPath names the YAML file when no -config flag is given.
	EnvConfigPath = "MEETINGBOT_CONFIG"
)

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// Unparsable input falls back to the default with a warning.
func ParseInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	return f
}
