// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package fulfillment

import (
	"context"
	"fmt"

	"github.com/ManuGH/meetingbot/internal/dialog"
	"github.com/ManuGH/meetingbot/internal/log"
	"github.com/ManuGH/meetingbot/internal/metrics"
)

// IntentBookMeeting is the only intent this service fulfills.
const IntentBookMeeting = "BookMeeting"

// Slot names of the BookMeeting intent.
const (
	SlotMeetingDate     = "meetingDate"
	SlotMeetingTime     = "meetingTime"
	SlotMeetingDuration = "meetingDuration"
	SlotParticipant     = "participant"
	SlotMeetingTitle    = "meetingTitle"
)

// SlotOrder is the order in which missing slots are elicited.
var SlotOrder = []string{
	SlotMeetingDate,
	SlotMeetingTime,
	SlotMeetingDuration,
	SlotParticipant,
	SlotMeetingTitle,
}

// DefaultPrompts returns the elicitation prompt of every slot.
func DefaultPrompts() map[string]string {
	return map[string]string{
		SlotMeetingDate:     "What date?",
		SlotMeetingTime:     "What time?",
		SlotMeetingDuration: "For how long?",
		SlotParticipant:     "Who with?",
		SlotMeetingTitle:    "Meeting Title?",
	}
}

// IsSlot reports whether name is a BookMeeting slot.
func IsSlot(name string) bool {
	for _, s := range SlotOrder {
		if s == name {
			return true
		}
	}
	return false
}

// PromptSource returns per-slot prompt overrides. It is called once per
// request so overrides can change at runtime.
type PromptSource func() map[string]string

// ConfirmationMessage is the text sent when the meeting is booked.
func ConfirmationMessage(date, clock string) string {
	return fmt.Sprintf("Okay, I have scheduled your meeting.  We will see you at %s on %s", clock, date)
}

// BookingRequest is a typed view of the BookMeeting slots.
type BookingRequest struct {
	Date        string
	Time        string
	Duration    string
	Participant string
	Title       string
}

// BookingFromSlots extracts the booking fields; absent slots stay empty.
func BookingFromSlots(s dialog.Slots) BookingRequest {
	return BookingRequest{
		Date:        s.Value(SlotMeetingDate),
		Time:        s.Value(SlotMeetingTime),
		Duration:    s.Value(SlotMeetingDuration),
		Participant: s.Value(SlotParticipant),
		Title:       s.Value(SlotMeetingTitle),
	}
}

// SlotValidator checks the slots supplied so far.
type SlotValidator interface {
	Validate(ctx context.Context, b BookingRequest) dialog.ValidationResult
}

// SlotValidatorFunc adapts a function to SlotValidator.
type SlotValidatorFunc func(ctx context.Context, b BookingRequest) dialog.ValidationResult

func (f SlotValidatorFunc) Validate(ctx context.Context, b BookingRequest) dialog.ValidationResult {
	return f(ctx, b)
}

// PlaceholderValidator accepts every booking.
//
// TODO: reject dates outside the bookable window, check calendar availability
// for date/time/duration and resolve the participant against the employee
// directory. Until then every slot value is accepted as given.
type PlaceholderValidator struct{}

func (PlaceholderValidator) Validate(context.Context, BookingRequest) dialog.ValidationResult {
	return dialog.Valid()
}

// BookMeeting fulfills the BookMeeting intent.
type BookMeeting struct {
	validator SlotValidator
	prompts   PromptSource
}

// BookMeetingOption configures a BookMeeting handler.
type BookMeetingOption func(*BookMeeting)

// WithValidator replaces the placeholder slot validator.
func WithValidator(v SlotValidator) BookMeetingOption {
	return func(b *BookMeeting) {
		if v != nil {
			b.validator = v
		}
	}
}

// WithPrompts sets the source of prompt overrides.
func WithPrompts(src PromptSource) BookMeetingOption {
	return func(b *BookMeeting) { b.prompts = src }
}

// NewBookMeeting returns a handler using the placeholder validator and the
// default prompts.
func NewBookMeeting(opts ...BookMeetingOption) *BookMeeting {
	b := &BookMeeting{validator: PlaceholderValidator{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Prompt returns the elicitation prompt for slot, preferring a non-empty override.
func (b *BookMeeting) Prompt(slot string) string {
	if b.prompts != nil {
		if p := b.prompts()[slot]; p != "" {
			return p
		}
	}
	return DefaultPrompts()[slot]
}

// Handle implements Handler.
func (b *BookMeeting) Handle(ctx context.Context, req *dialog.IntentRequest) (dialog.Response, error) {
	if err := req.Validate(); err != nil {
		return dialog.Response{}, err
	}

	logger := log.WithComponentFromContext(ctx, "bookmeeting")
	attrs := req.SessionAttributes.Normalize()
	slots := req.Slots()

	if req.InvocationSource != dialog.SourceDialogCodeHook {
		logger.Info().
			Str(log.FieldEvent, "fulfillment.closed").
			Str(log.FieldFulfillmentState, string(dialog.StateFulfilled)).
			Msg("meeting scheduled")
		msg := ConfirmationMessage(slots.Value(SlotMeetingDate), slots.Value(SlotMeetingTime))
		return dialog.Close(attrs, dialog.StateFulfilled, dialog.PlainText(msg)), nil
	}

	result := b.validator.Validate(ctx, BookingFromSlots(slots))
	if !result.IsValid {
		cleared := slots.Clone()
		if cleared == nil {
			cleared = dialog.Slots{}
		}
		cleared[result.ViolatedSlot] = nil

		metrics.RecordSlotElicitation(result.ViolatedSlot, true)
		logger.Info().
			Str(log.FieldEvent, "dialog.elicit_slot").
			Str(log.FieldSlot, result.ViolatedSlot).
			Str("reason", "invalid").
			Msg("slot failed validation")
		return dialog.ElicitSlot(attrs, req.IntentName(), cleared, result.ViolatedSlot, result.Message, nil), nil
	}

	for _, slot := range SlotOrder {
		if slots.Has(slot) {
			continue
		}
		metrics.RecordSlotElicitation(slot, false)
		logger.Debug().
			Str(log.FieldEvent, "dialog.elicit_slot").
			Str(log.FieldSlot, slot).
			Str("reason", "missing").
			Msg("eliciting slot")
		return dialog.ElicitSlot(attrs, req.IntentName(), slots, slot, dialog.PlainText(b.Prompt(slot)), nil), nil
	}

	logger.Debug().Str(log.FieldEvent, "dialog.delegate").Msg("all slots filled")
	return dialog.Delegate(attrs, slots), nil
}

// NewBookMeetingDispatcher returns a dispatcher with the BookMeeting handler
// registered.
func NewBookMeetingDispatcher(handlerOpts []BookMeetingOption, opts ...Option) *Dispatcher {
	d := NewDispatcher(opts...)
	d.Register(IntentBookMeeting, NewBookMeeting(handlerOpts...))
	return d
}
