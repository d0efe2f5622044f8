// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ManuGH/meetingbot/internal/daemon"
	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/version"
)

// runInvoke dispatches one event locally and prints the response JSON.
func runInvoke(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("meetingbot invoke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	eventPath := fs.String("event", "", "path to an intent request JSON file (default: stdin)")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw, err := readEvent(*eventPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading event: %v\n", err)
		return 1
	}

	var req dialog.IntentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(stderr, "Error decoding event: %v\n", err)
		return 1
	}

	ctx := context.Background()
	rt, err := daemon.Bootstrap(ctx, daemon.Options{
		Version:    version.Version,
		ConfigPath: resolveConfigPath(*configPath),
		LogOutput:  stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close(ctx) }()

	ctx = log.ContextWithRequestID(ctx, uuid.NewString())
	resp, err := rt.Dispatcher.Dispatch(ctx, &req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "Failed to encode response: %v\n", err)
		return 1
	}
	return 0
}

func readEvent(path string, stdin io.Reader) ([]byte, error) {
	if path = strings.TrimSpace(path); path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	// #nosec G304 -- operator supplied path
	return os.ReadFile(filepath.Clean(path))
}
