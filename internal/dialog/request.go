// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dialog models the fulfillment contract of the managed bot platform:
// the intent request delivered to a code hook and the dialog action returned
// to the platform.
package dialog

import (
	"errors"
	"maps"
)

// ErrMissingCurrentIntent is returned when a request carries no intent to act on.
var ErrMissingCurrentIntent = errors.New("request has no current intent")

// InvocationSource tells whether the hook runs mid-dialog or at fulfillment.
type InvocationSource string

const (
	SourceDialogCodeHook      InvocationSource = "DialogCodeHook"
	SourceFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

// Slots maps slot names to their (possibly absent) values.
type Slots map[string]*string

// Value returns the slot value or "" when the slot is absent or null.
func (s Slots) Value(name string) string {
	if v, ok := s[name]; ok && v != nil {
		return *v
	}
	return ""
}

// Has reports whether the slot holds a non-empty value.
func (s Slots) Has(name string) bool {
	return s.Value(name) != ""
}

// Clone returns a shallow copy; value pointers are shared.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// SessionAttributes is opaque state owned by the platform and echoed back.
type SessionAttributes map[string]string

// Normalize returns attrs, or an empty map when attrs is nil.
func (a SessionAttributes) Normalize() SessionAttributes {
	if a == nil {
		return SessionAttributes{}
	}
	return a
}

// Bot identifies the bot that produced the request.
type Bot struct {
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Version string `json:"version,omitempty"`
}

// SlotDetail carries the resolutions the platform computed for a slot.
type SlotDetail struct {
	Resolutions   []map[string]string `json:"resolutions,omitempty"`
	OriginalValue string              `json:"originalValue,omitempty"`
}

// CurrentIntent is the intent the platform believes the user expressed.
type CurrentIntent struct {
	Name               string                `json:"name"`
	Slots              Slots                 `json:"slots"`
	SlotDetails        map[string]SlotDetail `json:"slotDetails,omitempty"`
	ConfirmationStatus string                `json:"confirmationStatus,omitempty"`
}

// IntentRequest is the event delivered to a fulfillment code hook.
type IntentRequest struct {
	MessageVersion    string            `json:"messageVersion,omitempty"`
	InvocationSource  InvocationSource  `json:"invocationSource"`
	UserID            string            `json:"userId,omitempty"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
	SessionAttributes SessionAttributes `json:"sessionAttributes"`
	RequestAttributes map[string]string `json:"requestAttributes,omitempty"`
	Bot               Bot               `json:"bot"`
	OutputDialogMode  string            `json:"outputDialogMode,omitempty"`
	CurrentIntent     *CurrentIntent    `json:"currentIntent"`
}

// Validate checks the minimum structure needed to dispatch the request. An
// empty intent name is structurally valid and is left to intent routing.
func (r *IntentRequest) Validate() error {
	if r == nil || r.CurrentIntent == nil {
		return ErrMissingCurrentIntent
	}
	return nil
}

// IntentName returns the current intent name, or "" when absent.
func (r *IntentRequest) IntentName() string {
	if r == nil || r.CurrentIntent == nil {
		return ""
	}
	return r.CurrentIntent.Name
}

// Slots returns the current intent slots, or nil when absent.
func (r *IntentRequest) Slots() Slots {
	if r == nil || r.CurrentIntent == nil {
		return nil
	}
	return r.CurrentIntent.Slots
}
