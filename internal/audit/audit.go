// SPDX-License-Identifier: MIT

// Package audit provides structured audit logging for security-sensitive operations.
// It follows the WHO/WHAT/WHEN pattern for compliance and forensics.
package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/meetingbot/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Configuration events
	EventConfigReload      EventType = "config.reload"
	EventConfigReloadError EventType = "config.reload.error"

	// Authentication events
	EventAuthFailure EventType = "auth.failure"
	EventAuthMissing EventType = "auth.missing"

	// API access events
	EventAPIRateLimit EventType = "api.ratelimit"
)

// Result values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: client IP or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // endpoint or config file
	Result     string            `json:"result"`            // success, failure, denied
	RemoteAddr string            `json:"remote_addr"`       // Client IP address
	UserAgent  string            `json:"user_agent"`        // Client user agent
	RequestID  string            `json:"request_id"`        // Correlation ID
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// Logger writes audit events through the global logger with a dedicated
// "audit" component. The zero value is ready to use.
type Logger struct{}

// NewLogger creates a new audit logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) base() zerolog.Logger {
	return log.WithComponent("audit").With().Str("log_type", "audit").Logger()
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	logger := l.base()
	logEvent := logger.Info().
		Time("timestamp", event.Timestamp).
		Str(log.FieldEvent, string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		logEvent.Str(log.FieldRemoteAddr, event.RemoteAddr)
	}
	if event.UserAgent != "" {
		logEvent.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		logEvent.Str(log.FieldRequestID, event.RequestID)
	}
	for key, value := range event.Details {
		logEvent.Str(key, value)
	}

	logEvent.Msg("audit event")
}

// LogRequest fills client metadata and the request id from r before logging.
func (l *Logger) LogRequest(r *http.Request, event Event) {
	if r != nil {
		if event.RemoteAddr == "" {
			event.RemoteAddr = r.RemoteAddr
		}
		if event.Actor == "" {
			event.Actor = event.RemoteAddr
		}
		if event.UserAgent == "" {
			event.UserAgent = r.UserAgent()
		}
		if event.Resource == "" {
			event.Resource = r.URL.Path
		}
		if event.RequestID == "" {
			event.RequestID = requestID(r.Context())
		}
	}
	l.Log(event)
}

// ConfigReload logs the outcome of a configuration reload.
func (l *Logger) ConfigReload(path string, err error) {
	event := Event{
		Type:     EventConfigReload,
		Actor:    "system",
		Action:   "reloaded configuration",
		Resource: path,
		Result:   ResultSuccess,
	}
	if err != nil {
		event.Type = EventConfigReloadError
		event.Action = "rejected configuration reload"
		event.Result = ResultFailure
		event.Details = map[string]string{"error": err.Error()}
	}
	l.Log(event)
}

// AuthFailure logs a request carrying a wrong token.
func (l *Logger) AuthFailure(r *http.Request, reason string) {
	l.LogRequest(r, Event{
		Type:    EventAuthFailure,
		Action:  "authentication failed",
		Result:  ResultFailure,
		Details: map[string]string{"reason": reason},
	})
}

// AuthMissing logs a request without a token on a protected endpoint.
func (l *Logger) AuthMissing(r *http.Request) {
	l.LogRequest(r, Event{
		Type:   EventAuthMissing,
		Action: "accessed endpoint without authentication",
		Result: ResultDenied,
	})
}

// RateLimitExceeded logs rate limit violations.
func (l *Logger) RateLimitExceeded(r *http.Request) {
	l.LogRequest(r, Event{
		Type:   EventAPIRateLimit,
		Action: "rate limit exceeded",
		Result: ResultDenied,
	})
}

func requestID(ctx context.Context) string {
	if id := log.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return log.CorrelationIDFromContext(ctx)
}
