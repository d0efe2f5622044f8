// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for dialog fulfillment.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dialogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetingbot_dialog_requests_total",
		Help: "Intent requests received by intent and invocation source",
	}, []string{"intent", "source"})

	dialogActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetingbot_dialog_actions_total",
		Help: "Dialog actions returned to the platform by intent and action type",
	}, []string{"intent", "action"})

	slotElicitationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetingbot_slot_elicitations_total",
		Help: "Slot elicitations by slot and reason",
	}, []string{"slot", "reason"}) // reason=missing|invalid

	dispatchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetingbot_dispatch_errors_total",
		Help: "Failed dispatches by reason",
	}, []string{"reason"}) // reason=unsupported_intent|malformed_request|handler

	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meetingbot_dispatch_duration_seconds",
		Help:    "Time spent handling one intent request",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"source"})

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetingbot_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// Known label values. Anything else is reported as "other" to bound cardinality.
var (
	labelsMu     sync.RWMutex
	knownIntents = map[string]struct{}{"BookMeeting": {}}
	knownSlots   = map[string]struct{}{
		"meetingDate": {}, "meetingTime": {}, "meetingDuration": {}, "participant": {}, "meetingTitle": {},
	}
)

// RegisterIntentLabel allows an additional intent name as a metric label value.
func RegisterIntentLabel(name string) {
	labelsMu.Lock()
	knownIntents[name] = struct{}{}
	labelsMu.Unlock()
}

// RecordDialogRequest counts one received intent request.
func RecordDialogRequest(intent, source string) {
	dialogRequestsTotal.WithLabelValues(normalizeIntentLabel(intent), normalizeSourceLabel(source)).Inc()
}

// RecordDialogAction counts one dialog action sent back to the platform.
func RecordDialogAction(intent, action string) {
	dialogActionsTotal.WithLabelValues(normalizeIntentLabel(intent), normalizeActionLabel(action)).Inc()
}

// RecordSlotElicitation counts one ElicitSlot response.
func RecordSlotElicitation(slot string, invalid bool) {
	reason := "missing"
	if invalid {
		reason = "invalid"
	}
	slotElicitationsTotal.WithLabelValues(normalizeSlotLabel(slot), reason).Inc()
}

// IncDispatchError counts one failed dispatch.
func IncDispatchError(reason string) {
	switch reason {
	case "unsupported_intent", "malformed_request", "handler":
	default:
		reason = "other"
	}
	dispatchErrorsTotal.WithLabelValues(reason).Inc()
}

// ObserveDispatch records how long one dispatch took.
func ObserveDispatch(source string, d time.Duration) {
	dispatchDuration.WithLabelValues(normalizeSourceLabel(source)).Observe(d.Seconds())
}

// RecordConfigReload counts one configuration reload attempt.
func RecordConfigReload(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	configReloadsTotal.WithLabelValues(outcome).Inc()
}

func normalizeIntentLabel(intent string) string {
	labelsMu.RLock()
	defer labelsMu.RUnlock()
	if _, ok := knownIntents[intent]; ok {
		return intent
	}
	return "other"
}

func normalizeSlotLabel(slot string) string {
	if _, ok := knownSlots[slot]; ok {
		return slot
	}
	return "other"
}

func normalizeSourceLabel(source string) string {
	switch source {
	case "DialogCodeHook", "FulfillmentCodeHook":
		return source
	case "":
		return "unknown"
	default:
		return "other"
	}
}

func normalizeActionLabel(action string) string {
	switch strings.TrimSpace(action) {
	case "ElicitSlot", "ConfirmIntent", "Close", "Delegate", "ElicitIntent":
		return action
	default:
		return "unknown"
	}
}
