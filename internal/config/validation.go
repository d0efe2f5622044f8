// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"slices"
	"strings"

	"github.com/ManuGH/meetingbot/internal/fulfillment"
	"github.com/ManuGH/meetingbot/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("LogLevel", cfg.LogLevel)
	v.Timezone("Timezone", cfg.Timezone)
	v.ListenAddr("ListenAddr", cfg.ListenAddr)

	if cfg.ShutdownTimeout <= 0 {
		v.AddError("ShutdownTimeout", "must be positive", cfg.ShutdownTimeout.String())
	}

	if cfg.RateLimitEnabled {
		v.Positive("RateLimitRPS", cfg.RateLimitRPS)
		v.Positive("RateLimitBurst", cfg.RateLimitBurst)
	}

	if cfg.TracingEnabled {
		v.OneOf("TracingExporter", cfg.TracingExporter, []string{"grpc", "http"})
		v.NotEmpty("TracingEndpoint", cfg.TracingEndpoint)
	}
	v.FloatRange("TracingSamplingRate", cfg.TracingSamplingRate, 0, 1)

	keys := make([]string, 0, len(cfg.Prompts))
	for k := range cfg.Prompts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, slot := range keys {
		field := "Prompts." + slot
		if !fulfillment.IsSlot(slot) {
			v.AddError(field, "unknown slot (must be one of: "+strings.Join(fulfillment.SlotOrder, ", ")+")", slot)
			continue
		}
		v.NotEmpty(field, strings.TrimSpace(cfg.Prompts[slot]))
	}

	return v.Err()
}
