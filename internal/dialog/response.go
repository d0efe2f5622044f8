// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dialog

import (
	"encoding/json"
	"fmt"
)

// DialogActionType tells the platform what to do next.
type DialogActionType string

const (
	ActionElicitSlot    DialogActionType = "ElicitSlot"
	ActionConfirmIntent DialogActionType = "ConfirmIntent"
	ActionClose         DialogActionType = "Close"
	ActionDelegate      DialogActionType = "Delegate"
	// ActionElicitIntent is part of the platform contract but never produced here.
	ActionElicitIntent DialogActionType = "ElicitIntent"
)

// FulfillmentState is reported with a Close action.
type FulfillmentState string

const (
	StateFulfilled FulfillmentState = "Fulfilled"
	StateFailed    FulfillmentState = "Failed"
)

// Message content types accepted by the platform.
const (
	ContentPlainText     = "PlainText"
	ContentSSML          = "SSML"
	ContentCustomPayload = "CustomPayload"
)

// Message is a prompt or statement shown to the user.
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// PlainText builds a plain text message.
func PlainText(content string) *Message {
	return &Message{ContentType: ContentPlainText, Content: content}
}

// DialogAction is the tagged variant returned to the platform. Only the
// fields belonging to Type are serialized.
type DialogAction struct {
	Type             DialogActionType `json:"type"`
	IntentName       string           `json:"intentName,omitempty"`
	Slots            Slots            `json:"slots,omitempty"`
	SlotToElicit     string           `json:"slotToElicit,omitempty"`
	FulfillmentState FulfillmentState `json:"fulfillmentState,omitempty"`
	Message          *Message         `json:"message,omitempty"`
	ResponseCard     *ResponseCard    `json:"responseCard,omitempty"`
}

type elicitSlotWire struct {
	Type         DialogActionType `json:"type"`
	IntentName   string           `json:"intentName"`
	Slots        Slots            `json:"slots"`
	SlotToElicit string           `json:"slotToElicit"`
	Message      *Message         `json:"message,omitempty"`
	ResponseCard *ResponseCard    `json:"responseCard,omitempty"`
}

type confirmIntentWire struct {
	Type         DialogActionType `json:"type"`
	IntentName   string           `json:"intentName"`
	Slots        Slots            `json:"slots"`
	Message      *Message         `json:"message,omitempty"`
	ResponseCard *ResponseCard    `json:"responseCard,omitempty"`
}

type closeWire struct {
	Type             DialogActionType `json:"type"`
	FulfillmentState FulfillmentState `json:"fulfillmentState"`
	Message          *Message         `json:"message,omitempty"`
	ResponseCard     *ResponseCard    `json:"responseCard,omitempty"`
}

type delegateWire struct {
	Type  DialogActionType `json:"type"`
	Slots Slots            `json:"slots"`
}

// MarshalJSON emits the field set of the action's variant.
func (a DialogAction) MarshalJSON() ([]byte, error) {
	switch a.Type {
	case ActionElicitSlot:
		return json.Marshal(elicitSlotWire{
			Type:         a.Type,
			IntentName:   a.IntentName,
			Slots:        a.Slots,
			SlotToElicit: a.SlotToElicit,
			Message:      a.Message,
			ResponseCard: a.ResponseCard,
		})
	case ActionConfirmIntent:
		return json.Marshal(confirmIntentWire{
			Type:         a.Type,
			IntentName:   a.IntentName,
			Slots:        a.Slots,
			Message:      a.Message,
			ResponseCard: a.ResponseCard,
		})
	case ActionClose:
		return json.Marshal(closeWire{
			Type:             a.Type,
			FulfillmentState: a.FulfillmentState,
			Message:          a.Message,
			ResponseCard:     a.ResponseCard,
		})
	case ActionDelegate:
		return json.Marshal(delegateWire{Type: a.Type, Slots: a.Slots})
	default:
		return nil, fmt.Errorf("unsupported dialog action type %q", a.Type)
	}
}

// Response is the complete reply of a code hook.
type Response struct {
	SessionAttributes SessionAttributes `json:"sessionAttributes"`
	DialogAction      DialogAction      `json:"dialogAction"`
}

// ElicitSlot asks the platform to prompt the user for slot.
func ElicitSlot(attrs SessionAttributes, intentName string, slots Slots, slot string, msg *Message, card *ResponseCard) Response {
	return Response{
		SessionAttributes: attrs.Normalize(),
		DialogAction: DialogAction{
			Type:         ActionElicitSlot,
			IntentName:   intentName,
			Slots:        slots,
			SlotToElicit: slot,
			Message:      msg,
			ResponseCard: card,
		},
	}
}

// ConfirmIntent asks the user to confirm the intent before fulfillment.
func ConfirmIntent(attrs SessionAttributes, intentName string, slots Slots, msg *Message, card *ResponseCard) Response {
	return Response{
		SessionAttributes: attrs.Normalize(),
		DialogAction: DialogAction{
			Type:         ActionConfirmIntent,
			IntentName:   intentName,
			Slots:        slots,
			Message:      msg,
			ResponseCard: card,
		},
	}
}

// Close ends the conversation with the given fulfillment state.
func Close(attrs SessionAttributes, state FulfillmentState, msg *Message) Response {
	return Response{
		SessionAttributes: attrs.Normalize(),
		DialogAction: DialogAction{
			Type:             ActionClose,
			FulfillmentState: state,
			Message:          msg,
		},
	}
}

// Delegate hands control back to the platform's own slot filling.
func Delegate(attrs SessionAttributes, slots Slots) Response {
	return Response{
		SessionAttributes: attrs.Normalize(),
		DialogAction: DialogAction{
			Type:  ActionDelegate,
			Slots: slots,
		},
	}
}
