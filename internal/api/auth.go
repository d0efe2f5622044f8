// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/meetingbot/internal/api/problem"
	"github.com/ManuGH/meetingbot/internal/auth"
	"github.com/ManuGH/meetingbot/internal/log"
)

// authMiddleware enforces the shared API token when one is configured.
// Without a token the webhook is open; startup logs a warning about it.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.Get().APIToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.WithComponentFromContext(r.Context(), "auth")
		reqToken := auth.ExtractToken(r)
		if reqToken == "" {
			logger.Warn().Str(log.FieldEvent, "auth.missing_header").Msg("authorization header missing")
			s.audit.AuthMissing(r)
			writeUnauthorized(w, r)
			return
		}
		if !auth.AuthorizeToken(reqToken, token) {
			logger.Warn().Str(log.FieldEvent, "auth.invalid_token").Msg("invalid api token")
			s.audit.AuthFailure(r, "invalid token")
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="meetingbot"`)
	problem.Write(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized", problem.CodeUnauthorized,
		"a valid API token is required")
}
