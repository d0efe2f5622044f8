// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ManuGH/meetingbot/internal/config"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the runtime environment before the webhook
// starts accepting requests.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str(log.FieldEvent, "startup.checks_begin").Msg("running pre-flight startup checks")

	if err := checkTimezone(logger, cfg.Timezone); err != nil {
		return fmt.Errorf("time zone check failed: %w", err)
	}
	if err := checkListenAddr(logger, cfg.ListenAddr); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}
	if cfg.APIToken == "" {
		logger.Warn().
			Str(log.FieldEvent, "startup.auth_disabled").
			Msg("no API token configured; fulfillment endpoint is unauthenticated")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info().Str(log.FieldEvent, "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkTimezone(logger zerolog.Logger, name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	_, offset := time.Now().In(loc).Zone()
	logger.Info().Str("zone", loc.String()).Int("offset_seconds", offset).Msg("time zone is loadable")
	return nil
}

func checkListenAddr(logger zerolog.Logger, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	logger.Info().Str("addr", addr).Msg("listen address is valid")
	return nil
}
