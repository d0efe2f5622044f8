// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package problem writes RFC 7807 problem documents.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/meetingbot/internal/log"
)

const (
	// HeaderRequestID carries the request correlation id on requests and responses.
	HeaderRequestID = "X-Request-ID"
	// JSONKeyRequestID is the problem document key for the request id.
	JSONKeyRequestID = "requestId"
	// ContentType is the media type of problem documents.
	ContentType = "application/problem+json"
)

// Stable machine-readable codes.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUnsupportedIntent = "UNSUPPORTED_INTENT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeUnsupportedMedia  = "UNSUPPORTED_MEDIA_TYPE"
	CodeRequestTooLarge   = "REQUEST_TOO_LARGE"
)

// Details is the decoded form of a problem document.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"requestId"`
}

// Write writes an RFC 7807 problem details response.
//
//   - type: canonical machine identifier (e.g. "fulfillment/unsupported_intent").
//   - title: short human-readable label.
//   - code: stable machine-readable short code.
//   - detail: explanation of this occurrence.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string) {
	res := Details{
		Type:   problemType,
		Title:  title,
		Status: status,
		Code:   code,
		Detail: detail,
	}

	if r != nil {
		res.Instance = r.URL.EscapedPath()
		res.RequestID = log.RequestIDFromContext(r.Context())
	}
	if res.RequestID == "" {
		res.RequestID = w.Header().Get(HeaderRequestID)
	}
	if res.RequestID != "" {
		w.Header().Set(HeaderRequestID, res.RequestID)
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
