// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Dialog attributes
	BotNameKey          = "dialog.bot"
	IntentNameKey       = "dialog.intent"
	InvocationSourceKey = "dialog.invocation_source"
	DialogActionKey     = "dialog.action"
	SlotToElicitKey     = "dialog.slot_to_elicit"
	FulfillmentStateKey = "dialog.fulfillment_state"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// RequestAttributes describes an incoming intent request.
func RequestAttributes(bot, intent, source string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if bot != "" {
		attrs = append(attrs, attribute.String(BotNameKey, bot))
	}
	attrs = append(attrs,
		attribute.String(IntentNameKey, intent),
		attribute.String(InvocationSourceKey, source),
	)
	return attrs
}

// ActionAttributes describes the dialog action returned to the platform.
// Empty slot and state values are omitted.
func ActionAttributes(action, slot, state string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(DialogActionKey, action)}
	if slot != "" {
		attrs = append(attrs, attribute.String(SlotToElicitKey, slot))
	}
	if state != "" {
		attrs = append(attrs, attribute.String(FulfillmentStateKey, state))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
