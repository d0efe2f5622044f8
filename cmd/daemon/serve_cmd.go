// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/ManuGH/meetingbot/internal/daemon"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/version"
)

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("meetingbot serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := daemon.Bootstrap(ctx, daemon.Options{
		Version:    version.Version,
		ConfigPath: resolveConfigPath(*configPath),
	})
	if err != nil {
		logger := log.WithComponent("daemon")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "startup.failed").
			Msg("failed to initialise meetingbot")
		return 1
	}

	rt.Logger.Info().
		Str(log.FieldEvent, "startup").
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", rt.Config.Get().ListenAddr).
		Msg("starting meetingbot webhook")

	if err := rt.Serve(ctx); err != nil {
		rt.Logger.Error().
			Err(err).
			Str(log.FieldEvent, "manager.failed").
			Msg("daemon app failed")
		return 1
	}

	rt.Logger.Info().Msg("server exiting")
	return 0
}
