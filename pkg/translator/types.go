// Copyright 2024-2026 Aiku AI

package translator

import (
	"github.com/mattermost/mattermost/server/public/model"
)

// Block kinds understood by the walker. Anything else is skipped without
// output so newer Slack block types degrade gracefully.
const (
	BlockSection = "section"
	BlockHeader  = "header"
	BlockContext = "context"
	BlockDivider = "divider"
	BlockImage   = "image"
)

// Text object discriminators.
const (
	TextMrkdwn = "mrkdwn"
	TextPlain  = "plain_text"
)

// Payload is one deserialized Slack webhook request body. Every field is
// optional; JSON parsing of the raw bytes is the router's job.
//
// Attachments reuse the Mattermost model types, which mirror the legacy
// Slack attachment record field for field, including the loosely typed
// field values.
type Payload struct {
	Text        string                   `json:"text,omitempty"`
	Username    string                   `json:"username,omitempty"`
	Blocks      []*Block                 `json:"blocks,omitempty"`
	Attachments []*model.SlackAttachment `json:"attachments,omitempty"`
}

// Block is one node of the modern structured-content sequence. Which
// fields are populated depends on Type.
type Block struct {
	Type     string        `json:"type"`
	Text     *TextObject   `json:"text,omitempty"`
	Fields   []*TextObject `json:"fields,omitempty"`
	Elements []*TextObject `json:"elements,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
	AltText  string        `json:"alt_text,omitempty"`
}

// TextObject is an inline text element with a markup discriminator.
type TextObject struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// Message is the translated output relayed to the destination. Text is
// always non-empty; HTML and Username are omitted from the JSON encoding
// when absent.
type Message struct {
	Text     string `json:"text"`
	HTML     string `json:"html,omitempty"`
	Username string `json:"username,omitempty"`
}
