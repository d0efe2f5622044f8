// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	cfg := Config{
		Enabled:      false,
		ServiceName:  "meetingbot",
		ExporterType: "grpc",
	}

	provider, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if provider.tp != nil {
		t.Error("Expected noop provider (tp == nil)")
	}

	tracer := otel.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("Expected noop tracer span to be non-recording")
	}
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	cfg := Config{
		Enabled:      true,
		ServiceName:  "meetingbot",
		ExporterType: "invalid",
	}

	_, err := NewProvider(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for invalid exporter type")
	}

	expectedMsg := "unsupported exporter type: invalid (supported: grpc, http)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestProvider_ShutdownNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &Provider{tp: nil}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Expected no error on noop shutdown, got: %v", err)
	}
}

func TestTracer(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Enabled: false}); err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, span := Tracer("test-tracer").Start(context.Background(), "test-span")
	span.End()

	if trace.SpanFromContext(ctx) == nil {
		t.Error("Expected span in context")
	}
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
		"AWS_LAMBDA_FUNCTION_NAME":    "book-meeting",
	}
	getenv := func(k string) string { return env[k] }

	cfg := ConfigFromEnv(Config{}, getenv)
	if cfg.Endpoint != "collector:4317" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Environment != "lambda" {
		t.Errorf("Environment = %q", cfg.Environment)
	}

	cfg = ConfigFromEnv(Config{Endpoint: "explicit:4318", Environment: "staging"}, getenv)
	if cfg.Endpoint != "explicit:4318" || cfg.Environment != "staging" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}

	cfg = ConfigFromEnv(Config{}, func(string) string { return "" })
	if cfg.Environment != "webhook" {
		t.Errorf("Environment = %q, want webhook", cfg.Environment)
	}
}

func TestActionAttributes(t *testing.T) {
	attrs := ActionAttributes("ElicitSlot", "meetingDate", "")
	want := []attribute.KeyValue{
		attribute.String(DialogActionKey, "ElicitSlot"),
		attribute.String(SlotToElicitKey, "meetingDate"),
	}
	if len(attrs) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(attrs), len(want))
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("attr[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}

	closeAttrs := ActionAttributes("Close", "", "Fulfilled")
	if len(closeAttrs) != 2 || closeAttrs[1].Value.AsString() != "Fulfilled" {
		t.Errorf("unexpected close attributes: %v", closeAttrs)
	}
}

func TestRequestAttributes(t *testing.T) {
	if got := RequestAttributes("", "BookMeeting", "DialogCodeHook"); len(got) != 2 {
		t.Errorf("expected bot to be omitted, got %v", got)
	}
	if got := RequestAttributes("MeetingBot", "BookMeeting", "DialogCodeHook"); len(got) != 3 {
		t.Errorf("expected 3 attributes, got %v", got)
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("boom"), "unsupported_intent")
	if !attrs[0].Value.AsBool() || attrs[1].Value.AsString() != "unsupported_intent" {
		t.Errorf("unexpected error attributes: %v", attrs)
	}
}
