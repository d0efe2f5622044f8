// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command meetingbot serves the BookMeeting code hook over HTTP or under the
// AWS Lambda runtime.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/meetingbot/internal/config"
	"github.com/ManuGH/meetingbot/internal/version"
)

// envLambdaRuntime is set by the Lambda execution environment.
const envLambdaRuntime = "AWS_LAMBDA_RUNTIME_API"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if os.Getenv(envLambdaRuntime) != "" {
		cmd = "lambda"
	}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(args, stdout, stderr)
	case "lambda":
		return runLambda(args, stderr)
	case "invoke":
		return runInvoke(args, stdin, stdout, stderr)
	case "config":
		return runConfigCLI(args, stdout, stderr)
	case "healthcheck":
		return runHealthcheckCLI(args, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  meetingbot [serve] [-config config.yaml] [-version]")
	fmt.Fprintln(w, "  meetingbot lambda [-config config.yaml]")
	fmt.Fprintln(w, "  meetingbot invoke [-event event.json] [-config config.yaml]")
	fmt.Fprintln(w, "  meetingbot config init|validate|dump ...")
	fmt.Fprintln(w, "  meetingbot healthcheck [-port 8088] [-mode ready|live]")
}

// resolveConfigPath prefers the flag, then MEETINGBOT_CONFIG.
func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(config.EnvConfigPath))
}
