package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDialogRequest_NormalizesLabels(t *testing.T) {
	known := testutil.ToFloat64(dialogRequestsTotal.WithLabelValues("BookMeeting", "DialogCodeHook"))
	other := testutil.ToFloat64(dialogRequestsTotal.WithLabelValues("other", "other"))

	RecordDialogRequest("BookMeeting", "DialogCodeHook")
	RecordDialogRequest("OrderPizza", "SomethingElse")

	assert.Equal(t, known+1, testutil.ToFloat64(dialogRequestsTotal.WithLabelValues("BookMeeting", "DialogCodeHook")))
	assert.Equal(t, other+1, testutil.ToFloat64(dialogRequestsTotal.WithLabelValues("other", "other")))
}

func TestRegisterIntentLabel(t *testing.T) {
	RegisterIntentLabel("CancelMeeting")
	initial := testutil.ToFloat64(dialogActionsTotal.WithLabelValues("CancelMeeting", "Close"))

	RecordDialogAction("CancelMeeting", "Close")

	assert.Equal(t, initial+1, testutil.ToFloat64(dialogActionsTotal.WithLabelValues("CancelMeeting", "Close")))
}

func TestRecordDialogAction_UnknownAction(t *testing.T) {
	initial := testutil.ToFloat64(dialogActionsTotal.WithLabelValues("BookMeeting", "unknown"))
	RecordDialogAction("BookMeeting", "Teleport")
	assert.Equal(t, initial+1, testutil.ToFloat64(dialogActionsTotal.WithLabelValues("BookMeeting", "unknown")))
}

func TestRecordSlotElicitation(t *testing.T) {
	missing := testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("meetingDate", "missing"))
	invalid := testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("meetingDate", "invalid"))
	stray := testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("other", "missing"))

	RecordSlotElicitation("meetingDate", false)
	RecordSlotElicitation("meetingDate", true)
	RecordSlotElicitation("favouriteColour", false)

	assert.Equal(t, missing+1, testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("meetingDate", "missing")))
	assert.Equal(t, invalid+1, testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("meetingDate", "invalid")))
	assert.Equal(t, stray+1, testutil.ToFloat64(slotElicitationsTotal.WithLabelValues("other", "missing")))
}

func TestIncDispatchError(t *testing.T) {
	unsupported := testutil.ToFloat64(dispatchErrorsTotal.WithLabelValues("unsupported_intent"))
	other := testutil.ToFloat64(dispatchErrorsTotal.WithLabelValues("other"))

	IncDispatchError("unsupported_intent")
	IncDispatchError("cosmic_rays")

	assert.Equal(t, unsupported+1, testutil.ToFloat64(dispatchErrorsTotal.WithLabelValues("unsupported_intent")))
	assert.Equal(t, other+1, testutil.ToFloat64(dispatchErrorsTotal.WithLabelValues("other")))
}

func TestObserveDispatch(t *testing.T) {
	before := histogramCount(t, "FulfillmentCodeHook")
	ObserveDispatch("FulfillmentCodeHook", 3*time.Millisecond)
	assert.Equal(t, before+1, histogramCount(t, "FulfillmentCodeHook"))
}

func TestRecordConfigReload(t *testing.T) {
	ok := testutil.ToFloat64(configReloadsTotal.WithLabelValues("success"))
	failed := testutil.ToFloat64(configReloadsTotal.WithLabelValues("failure"))

	RecordConfigReload(nil)
	RecordConfigReload(errors.New("bad yaml"))

	assert.Equal(t, ok+1, testutil.ToFloat64(configReloadsTotal.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(configReloadsTotal.WithLabelValues("failure")))
}

func TestPromhttpExposure(t *testing.T) {
	RecordDialogRequest("BookMeeting", "DialogCodeHook")

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "meetingbot_dialog_requests_total"))
}

func histogramCount(t *testing.T, source string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs := dispatchDuration.WithLabelValues(source)
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}
