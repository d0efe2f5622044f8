// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService       = "service"
	FieldVersion       = "version"
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldUserID        = "user_id"
	FieldEvent         = "event"

	// Dialog fields
	FieldBot              = "bot"
	FieldIntent           = "intent"
	FieldInvocationSource = "invocation_source"
	FieldDialogAction     = "dialog_action"
	FieldSlot             = "slot"
	FieldFulfillmentState = "fulfillment_state"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldRemoteAddr = "remote_addr"
)
