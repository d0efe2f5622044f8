// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/meetingbot/internal/api/problem"
	"github.com/ManuGH/meetingbot/internal/config"
	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/fulfillment"
	"github.com/ManuGH/meetingbot/internal/health"
)

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

func loadOpenAPIDoc(t *testing.T) *openapi3.T {
	t.Helper()
	openapiOnce.Do(func() {
		openapi3filter.RegisterBodyDecoder(problem.ContentType, openapi3filter.JSONBodyDecoder)

		doc, err := openapi3.NewLoader().LoadFromData(OpenAPIDocument())
		if err != nil {
			openapiErr = err
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			openapiErr = err
			return
		}
		openapiDoc = doc
	})
	if openapiErr != nil {
		t.Fatalf("openapi load failed: %v", openapiErr)
	}
	return openapiDoc
}

func validateOpenAPIResponse(t *testing.T, req *http.Request, rr *httptest.ResponseRecorder) {
	t.Helper()
	router, err := legacy.NewRouter(loadOpenAPIDoc(t))
	require.NoError(t, err, "openapi router init")

	route, pathParams, err := router.FindRoute(req)
	require.NoError(t, err, "openapi route lookup")

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: rr.Code,
		Header: rr.Header(),
	}
	input.SetBodyBytes(rr.Body.Bytes())

	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation")
}

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.RateLimitEnabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg config.AppConfig, opts ...ServerOption) (*Server, http.Handler) {
	t.Helper()
	s := New(cfg, fulfillment.NewBookMeetingDispatcher(nil), opts...)
	return s, s.Handler()
}

func postEvent(t *testing.T, h http.Handler, body string, mutate ...func(*http.Request)) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/fulfillment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return req, rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problem.Details {
	t.Helper()
	assert.Equal(t, problem.ContentType, rr.Header().Get("Content-Type"))
	var p problem.Details
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

const dialogEvent = `{
  "messageVersion": "1.0",
  "invocationSource": "DialogCodeHook",
  "userId": "u-1",
  "sessionAttributes": {"channel": "web"},
  "bot": {"name": "MeetingBot", "alias": null, "version": "$LATEST"},
  "outputDialogMode": "Text",
  "currentIntent": {
    "name": "BookMeeting",
    "slots": {"meetingDate": "2026-10-19", "meetingTime": null, "meetingDuration": null, "participant": null, "meetingTitle": null},
    "confirmationStatus": "None"
  }
}`

func TestFulfillment_ElicitsNextSlot(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	req, rr := postEvent(t, h, dialogEvent)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, req, rr)

	var resp dialog.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, dialog.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, fulfillment.SlotMeetingTime, resp.DialogAction.SlotToElicit)
	assert.Equal(t, "What time?", resp.DialogAction.Message.Content)
	assert.Equal(t, dialog.SessionAttributes{"channel": "web"}, resp.SessionAttributes)
	assert.NotEmpty(t, rr.Header().Get(problem.HeaderRequestID))
}

func TestFulfillment_DelegatesWhenComplete(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	body := `{"invocationSource":"DialogCodeHook","currentIntent":{"name":"BookMeeting","slots":{
		"meetingDate":"2026-10-19","meetingTime":"10:00","meetingDuration":"30","participant":"Ana","meetingTitle":"Sync"}}}`
	req, rr := postEvent(t, h, body)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, req, rr)

	assert.JSONEq(t, `{"sessionAttributes":{},"dialogAction":{"type":"Delegate","slots":{
		"meetingDate":"2026-10-19","meetingTime":"10:00","meetingDuration":"30","participant":"Ana","meetingTitle":"Sync"}}}`,
		rr.Body.String())
}

func TestFulfillment_ClosesAtFulfillment(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	body := `{"invocationSource":"FulfillmentCodeHook","currentIntent":{"name":"BookMeeting","slots":{
		"meetingDate":"2026-10-19","meetingTime":"10:00"}}}`
	req, rr := postEvent(t, h, body)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, req, rr)

	var resp dialog.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, dialog.ActionClose, resp.DialogAction.Type)
	assert.Equal(t, dialog.StateFulfilled, resp.DialogAction.FulfillmentState)
	assert.Equal(t, "Okay, I have scheduled your meeting.  We will see you at 10:00 on 2026-10-19",
		resp.DialogAction.Message.Content)
}

func TestFulfillment_Problems(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ctype  string
		status int
		code   string
	}{
		{
			name:   "malformed json",
			body:   `{"invocationSource":`,
			ctype:  "application/json",
			status: http.StatusBadRequest,
			code:   problem.CodeInvalidRequest,
		},
		{
			name:   "missing current intent",
			body:   `{"invocationSource":"DialogCodeHook"}`,
			ctype:  "application/json",
			status: http.StatusBadRequest,
			code:   problem.CodeInvalidRequest,
		},
		{
			name:   "unsupported intent",
			body:   `{"invocationSource":"DialogCodeHook","currentIntent":{"name":"OrderPizza","slots":{}}}`,
			ctype:  "application/json; charset=utf-8",
			status: http.StatusUnprocessableEntity,
			code:   problem.CodeUnsupportedIntent,
		},
		{
			name:   "empty intent name",
			body:   `{"invocationSource":"DialogCodeHook","currentIntent":{"name":"","slots":{}}}`,
			ctype:  "application/json",
			status: http.StatusUnprocessableEntity,
			code:   problem.CodeUnsupportedIntent,
		},
		{
			name:   "wrong media type",
			body:   dialogEvent,
			ctype:  "text/plain",
			status: http.StatusUnsupportedMediaType,
			code:   problem.CodeUnsupportedMedia,
		},
		{
			name:   "body too large",
			body:   `{"inputTranscript":"` + strings.Repeat("a", maxRequestBody) + `"}`,
			ctype:  "application/json",
			status: http.StatusRequestEntityTooLarge,
			code:   problem.CodeRequestTooLarge,
		},
	}

	_, h := newTestServer(t, testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rr := postEvent(t, h, tt.body, func(r *http.Request) {
				r.Header.Set("Content-Type", tt.ctype)
			})
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			validateOpenAPIResponse(t, req, rr)

			p := decodeProblem(t, rr)
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "/v1/fulfillment", p.Instance)
			assert.Equal(t, rr.Header().Get(problem.HeaderRequestID), p.RequestID)
		})
	}
}

func TestFulfillment_UnsupportedIntentNamesIntent(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	_, rr := postEvent(t, h, `{"invocationSource":"DialogCodeHook","currentIntent":{"name":"OrderPizza"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "intent with name OrderPizza not supported", decodeProblem(t, rr).Detail)
}

func TestFulfillment_Auth(t *testing.T) {
	cfg := testConfig()
	cfg.APIToken = "secret"
	_, h := newTestServer(t, cfg)

	t.Run("missing token", func(t *testing.T) {
		req, rr := postEvent(t, h, dialogEvent)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		validateOpenAPIResponse(t, req, rr)
		assert.Equal(t, problem.CodeUnauthorized, decodeProblem(t, rr).Code)
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("wrong token", func(t *testing.T) {
		_, rr := postEvent(t, h, dialogEvent, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer nope")
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		_, rr := postEvent(t, h, dialogEvent, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer secret")
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("header token", func(t *testing.T) {
		_, rr := postEvent(t, h, dialogEvent, func(r *http.Request) {
			r.Header.Set("X-API-Token", "secret")
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

type mutableConfig struct {
	mu  sync.Mutex
	cfg config.AppConfig
}

func (m *mutableConfig) Get() config.AppConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Clone()
}

func (m *mutableConfig) setToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.APIToken = token
}

func TestFulfillment_TokenRotation(t *testing.T) {
	src := &mutableConfig{cfg: testConfig()}
	src.setToken("old")
	_, h := newTestServer(t, testConfig(), WithConfigSource(src))

	withToken := func(tok string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
	}

	_, rr := postEvent(t, h, dialogEvent, withToken("old"))
	assert.Equal(t, http.StatusOK, rr.Code)

	src.setToken("new")
	_, rr = postEvent(t, h, dialogEvent, withToken("old"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	_, rr = postEvent(t, h, dialogEvent, withToken("new"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFulfillment_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	_, h := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		_, rr := postEvent(t, h, dialogEvent)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	req, rr := postEvent(t, h, dialogEvent)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	validateOpenAPIResponse(t, req, rr)
	assert.Equal(t, problem.CodeRateLimited, decodeProblem(t, rr).Code)

	// probes are not limited
	probe := httptest.NewRecorder()
	h.ServeHTTP(probe, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, probe.Code)
}

func TestRoutes_NotFoundAndMethod(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, problem.CodeNotFound, decodeProblem(t, rr).Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/fulfillment", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, problem.CodeMethodNotAllowed, decodeProblem(t, rr).Code)
}

func TestHealthEndpoints(t *testing.T) {
	s, h := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, req, rr)

	intents := []string{}
	s.HealthManager().RegisterChecker(health.NewIntentsChecker(func() []string { return intents }))

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	validateOpenAPIResponse(t, req, rr)

	intents = []string{fulfillment.IntentBookMeeting}
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, req, rr)

	var ready health.ReadinessResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.True(t, ready.Ready)
	assert.Equal(t, fulfillment.IntentBookMeeting, ready.Checks["intents"].Message)
}

func TestOpenAPIEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.Equal(OpenAPIDocument(), rr.Body.Bytes()))
	assert.NotNil(t, loadOpenAPIDoc(t).Paths.Find("/v1/fulfillment"))
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	_, rr := postEvent(t, h, dialogEvent)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "meetingbot_dialog_requests_total")
	assert.Contains(t, string(body), "meetingbot_http_request_duration_seconds")

	cfg := testConfig()
	cfg.MetricsEnabled = false
	_, h = newTestServer(t, cfg)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
