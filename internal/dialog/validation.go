// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dialog

// ValidationResult is the outcome of checking the slots of one request.
type ValidationResult struct {
	IsValid      bool     `json:"isValid"`
	ViolatedSlot string   `json:"violatedSlot,omitempty"`
	Message      *Message `json:"message,omitempty"`
}

// Valid reports that every supplied slot is acceptable.
func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

// Invalid reports that slot must be asked for again with the given prompt.
func Invalid(slot, prompt string) ValidationResult {
	return ValidationResult{
		IsValid:      false,
		ViolatedSlot: slot,
		Message:      PlainText(prompt),
	}
}
