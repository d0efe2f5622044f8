// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fulfillment routes intent requests to intent handlers and builds
// the dialog action returned to the bot platform.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/metrics"
	"github.com/ManuGH/meetingbot/internal/telemetry"
)

// ErrUnsupportedIntent is wrapped by Dispatch when no handler is registered
// for the request's intent name.
var ErrUnsupportedIntent = errors.New("intent not supported")

type unsupportedIntentError struct {
	name string
}

func (e *unsupportedIntentError) Error() string {
	return fmt.Sprintf("intent with name %s not supported", e.name)
}

func (e *unsupportedIntentError) Unwrap() error { return ErrUnsupportedIntent }

// Handler answers one intent request.
type Handler interface {
	Handle(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error) {
	return f(ctx, req)
}

// Dispatcher routes requests by exact intent name.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracer overrides the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		tracer:   telemetry.Tracer("meetingbot/fulfillment"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a handler to an intent name, replacing any previous one.
func (d *Dispatcher) Register(intent string, h Handler) {
	d.mu.Lock()
	d.handlers[intent] = h
	d.mu.Unlock()
	metrics.RegisterIntentLabel(intent)
}

// Intents returns the registered intent names in sorted order.
func (d *Dispatcher) Intents() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch validates req and hands it to the handler registered for its
// intent name.
func (d *Dispatcher) Dispatch(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error) {
	start := time.Now()
	source := ""
	if req != nil {
		source = string(req.InvocationSource)
	}
	defer func() { metrics.ObserveDispatch(source, time.Since(start)) }()

	ctx, span := d.tracer.Start(ctx, "fulfillment.dispatch")
	defer span.End()

	logger := log.WithComponentFromContext(ctx, "fulfillment")

	if err := req.Validate(); err != nil {
		metrics.IncDispatchError("malformed_request")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(err, "malformed_request")...)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Str(log.FieldEvent, "dispatch.rejected").Msg("malformed intent request")
		return dialog.Response{}, err
	}

	intent := req.IntentName()
	span.SetAttributes(telemetry.RequestAttributes(req.Bot.Name, intent, source)...)
	metrics.RecordDialogRequest(intent, source)

	logger.Debug().
		Str(log.FieldEvent, "dispatch.received").
		Str(log.FieldUserID, req.UserID).
		Str(log.FieldBot, req.Bot.Name).
		Str(log.FieldIntent, intent).
		Str(log.FieldInvocationSource, source).
		Msg("dispatch")

	d.mu.RLock()
	h, ok := d.handlers[intent]
	d.mu.RUnlock()
	if !ok {
		err := &unsupportedIntentError{name: intent}
		metrics.IncDispatchError("unsupported_intent")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(err, "unsupported_intent")...)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().
			Str(log.FieldEvent, "dispatch.unsupported_intent").
			Str(log.FieldIntent, intent).
			Msg(err.Error())
		return dialog.Response{}, err
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		metrics.IncDispatchError("handler")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(err, "handler")...)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).
			Str(log.FieldEvent, "dispatch.failed").
			Str(log.FieldIntent, intent).
			Msg("intent handler failed")
		return dialog.Response{}, fmt.Errorf("handle %s: %w", intent, err)
	}

	action := resp.DialogAction
	metrics.RecordDialogAction(intent, string(action.Type))
	span.SetAttributes(telemetry.ActionAttributes(string(action.Type), action.SlotToElicit, string(action.FulfillmentState))...)
	return resp, nil
}
