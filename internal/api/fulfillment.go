// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/ManuGH/meetingbot/internal/api/problem"
	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/fulfillment"
	"github.com/ManuGH/meetingbot/internal/log"
)

// handleFulfillment decodes one intent request, dispatches it and writes the
// dialog action.
// POST /v1/fulfillment
func (s *Server) handleFulfillment(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			problem.Write(w, r, http.StatusUnsupportedMediaType,
				"fulfillment/unsupported_media_type", "Unsupported Media Type", problem.CodeUnsupportedMedia,
				fmt.Sprintf("content type %q is not application/json", ct))
			return
		}
	}

	var req dialog.IntentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge,
				"fulfillment/request_too_large", "Request Too Large", problem.CodeRequestTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		logger.Warn().Err(err).Str(log.FieldEvent, "fulfillment.decode_failed").Msg("malformed intent request")
		problem.Write(w, r, http.StatusBadRequest,
			"fulfillment/invalid_request", "Invalid Request", problem.CodeInvalidRequest,
			"request body is not a valid intent request: "+err.Error())
		return
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), &req)
	if err != nil {
		writeDispatchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dialog.ErrMissingCurrentIntent):
		problem.Write(w, r, http.StatusBadRequest,
			"fulfillment/invalid_request", "Invalid Request", problem.CodeInvalidRequest, err.Error())
	case errors.Is(err, fulfillment.ErrUnsupportedIntent):
		problem.Write(w, r, http.StatusUnprocessableEntity,
			"fulfillment/unsupported_intent", "Unsupported Intent", problem.CodeUnsupportedIntent, err.Error())
	default:
		log.FromContext(r.Context()).Error().Err(err).
			Str(log.FieldEvent, "fulfillment.failed").
			Msg("dispatch failed")
		problem.Write(w, r, http.StatusInternalServerError,
			"system/internal", "Internal Server Error", problem.CodeInternal, "fulfillment failed")
	}
}
