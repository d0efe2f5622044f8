// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ManuGH/meetingbot/internal/api/problem"
	"github.com/ManuGH/meetingbot/internal/log"
)

func TestRecoverer_ReturnsProblem(t *testing.T) {
	r := NewRouter(StackConfig{})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, problem.ContentType, w.Header().Get("Content-Type"))

	var p problem.Details
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, problem.CodeInternal, p.Code)
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.NotEmpty(t, p.RequestID)
	assert.Equal(t, w.Header().Get(problem.HeaderRequestID), p.RequestID)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = log.RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get(problem.HeaderRequestID))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(problem.HeaderRequestID, "lex-abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "lex-abc-123", seen)
		assert.Equal(t, "lex-abc-123", w.Header().Get(problem.HeaderRequestID))
	})

	t.Run("rejects oversized and non printable", func(t *testing.T) {
		for _, bad := range []string{strings.Repeat("a", 200), "bad id\x01"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(problem.HeaderRequestID, bad)
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.NotEqual(t, bad, seen)
			assert.Len(t, seen, 36)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := NewRouter(StackConfig{EnableSecurityHeaders: true})
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestMetrics_PassesStatusThrough(t *testing.T) {
	r := NewRouter(StackConfig{EnableMetrics: true, EnableLogging: true})
	r.Post("/v1/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/things/42", strings.NewReader("{}")))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return rec
}

func TestTracing_SpanCarriesRouteAndStatus(t *testing.T) {
	rec := withRecorder(t)

	r := NewRouter(StackConfig{TracingService: "meetingbot"})
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	spans := rec.Ended()
	require.Len(t, spans, 1, "health probes are not traced")
	assert.Equal(t, "GET /items/{id}", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "/items/{id}", attrs["http.route"])
	assert.Equal(t, "503", attrs["http.status_code"])
}

func TestSpanNameFormatter(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/fulfillment/42", nil)
	assert.Equal(t, "POST /v1/fulfillment/42", spanNameFormatter("", req))

	rctx := chi.NewRouteContext()
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	assert.Equal(t, "POST /v1/fulfillment/42", spanNameFormatter("", req), "no route matched yet")

	rctx.RoutePatterns = []string{"/v1/fulfillment/{id}"}
	assert.Equal(t, "POST /v1/fulfillment/{id}", spanNameFormatter("", req))
}

func TestTracing_PropagatesIncomingContext(t *testing.T) {
	rec := withRecorder(t)

	var traceID string
	r := NewRouter(StackConfig{TracingService: "meetingbot"})
	r.Post("/v1/fulfillment", func(w http.ResponseWriter, req *http.Request) {
		traceID, _ = ExtractTraceContext(req)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/fulfillment", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", traceID)
	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, codes.Unset, rec.Ended()[0].Status().Code)
}

func TestExtractTraceContext_NoSpan(t *testing.T) {
	traceID, spanID := ExtractTraceContext(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)
}
