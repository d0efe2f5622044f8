// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dialog

const (
	// GenericCardContentType is the only response card type the platform renders.
	GenericCardContentType = "application/vnd.amazonaws.card.generic"

	// MaxCardButtons is the platform limit on buttons per attachment.
	MaxCardButtons = 5
)

// Button is a selectable option on a response card.
type Button struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// GenericAttachment is one card in a response card.
type GenericAttachment struct {
	Title             string   `json:"title,omitempty"`
	SubTitle          string   `json:"subTitle,omitempty"`
	ImageURL          string   `json:"imageUrl,omitempty"`
	AttachmentLinkURL string   `json:"attachmentLinkUrl,omitempty"`
	Buttons           []Button `json:"buttons"`
}

// ResponseCard renders options next to a prompt on channels that support it.
type ResponseCard struct {
	Version            int                 `json:"version"`
	ContentType        string              `json:"contentType"`
	GenericAttachments []GenericAttachment `json:"genericAttachments"`
}

// BuildResponseCard builds a single-attachment card. Buttons stay nil when
// options is nil; otherwise the first MaxCardButtons options are kept.
func BuildResponseCard(title, subtitle string, options []Button) *ResponseCard {
	var buttons []Button
	if options != nil {
		n := min(len(options), MaxCardButtons)
		buttons = make([]Button, n)
		copy(buttons, options[:n])
	}

	return &ResponseCard{
		Version:     1,
		ContentType: GenericCardContentType,
		GenericAttachments: []GenericAttachment{{
			Title:    title,
			SubTitle: subtitle,
			Buttons:  buttons,
		}},
	}
}
