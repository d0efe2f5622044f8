// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/ManuGH/meetingbot/internal/daemon"
	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/version"
)

// dispatcher is the part of fulfillment.Dispatcher the Lambda handler needs.
type dispatcher interface {
	Dispatch(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error)
}

// lambdaHandler tags each invocation with the platform request id and
// dispatches it. Errors are returned to the runtime as invocation failures.
func lambdaHandler(d dispatcher) func(context.Context, dialog.IntentRequest) (dialog.Response, error) {
	return func(ctx context.Context, req dialog.IntentRequest) (dialog.Response, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
			ctx = log.ContextWithCorrelationID(ctx, lc.AwsRequestID)
		}
		resp, err := d.Dispatch(ctx, &req)
		if err != nil {
			logger := log.WithComponentFromContext(ctx, "lambda")
			logger.Error().
				Err(err).
				Str(log.FieldEvent, "lambda.invoke_failed").
				Str(log.FieldIntent, req.IntentName()).
				Msg("invocation failed")
			return dialog.Response{}, err
		}
		return resp, nil
	}
}

func runLambda(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("meetingbot lambda", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	rt, err := daemon.Bootstrap(ctx, daemon.Options{
		Version:    version.Version,
		ConfigPath: resolveConfigPath(*configPath),
	})
	if err != nil {
		logger := log.WithComponent("lambda")
		logger.Error().Err(err).Str(log.FieldEvent, "startup.failed").Msg("failed to initialise meetingbot")
		return 1
	}

	rt.Logger.Info().
		Str(log.FieldEvent, "lambda.start").
		Str("function", lambdacontext.FunctionName).
		Str("function_version", lambdacontext.FunctionVersion).
		Msg("starting Lambda handler")

	// lambda.StartWithOptions does not return on success.
	lambda.StartWithOptions(lambdaHandler(rt.Dispatcher),
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			_ = rt.Close(shutdownCtx)
		}),
	)
	return 0
}
