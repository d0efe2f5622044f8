// SPDX-License-Identifier: MIT

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/meetingbot/internal/api/problem"
	"github.com/ManuGH/meetingbot/internal/audit"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int
	// WindowSize is the time window for rate limiting
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key from the request (e.g., IP address)
	// If nil, defaults to IP-based rate limiting
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit creates a rate limiting middleware using the httprate library.
// It uses a sliding window counter algorithm.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	auditLog := audit.NewLogger()
	retryAfter := int(cfg.WindowSize.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			auditLog.RateLimitExceeded(r)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			problem.Write(w, r, http.StatusTooManyRequests,
				"system/rate_limited", "Too Many Requests", problem.CodeRateLimited,
				"Too many requests. Please try again later.")
		}),
	)
}

// APIRateLimit allows burst requests per client in a window sized so the
// sustained rate is rps.
func APIRateLimit(rps, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 1
	}
	if burst < rps {
		burst = rps
	}
	return RateLimit(RateLimitConfig{
		RequestLimit: burst,
		WindowSize:   time.Duration(burst) * time.Second / time.Duration(rps),
	})
}
