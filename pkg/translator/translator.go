// Copyright 2024-2026 Aiku AI

package translator

import (
	"strings"

	"github.com/aiku/slack-to-matrix/pkg/translator/mrkdwn"
)

// EmptyPayloadText is the plain-text sentinel substituted when a payload
// produced no usable content. The relayed message body is never empty.
const EmptyPayloadText = "Received empty Slack payload"

// Translate converts one Slack payload into the relayed message.
//
// Blocks and attachments are additive: both sequences are walked in order
// and their output concatenated. The top-level fallback text (itself
// mrkdwn) is used only when both sequences left both buffers empty. The
// HTML field is dropped entirely when no structured content produced
// markup, and the username passes through only when the payload had one;
// defaults are the relay layer's business.
func Translate(p *Payload) *Message {
	var html, plain strings.Builder
	if p != nil {
		for _, b := range p.Blocks {
			r := renderBlock(b)
			html.WriteString(r.html)
			plain.WriteString(r.plain)
		}
		for _, a := range p.Attachments {
			r := renderAttachment(a)
			html.WriteString(r.html)
			plain.WriteString(r.plain)
		}
	}

	h, text := html.String(), plain.String()
	if h == "" && text == "" && p != nil && p.Text != "" {
		text = p.Text
		h = mrkdwn.ToHTML(p.Text)
	}

	msg := &Message{
		Text: strings.TrimSpace(text),
		HTML: strings.TrimSpace(h),
	}
	if msg.Text == "" {
		msg.Text = EmptyPayloadText
	}
	if p != nil {
		msg.Username = p.Username
	}
	return msg
}
