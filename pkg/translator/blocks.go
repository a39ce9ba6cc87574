// Copyright 2024-2026 Aiku AI

package translator

import (
	"strings"

	"github.com/aiku/slack-to-matrix/pkg/translator/mrkdwn"
)

// rendered holds the two parallel output buffers one content node
// contributes to the running totals.
type rendered struct {
	html  string
	plain string
}

// renderText converts a text object to HTML. Plain-text objects are only
// entity-escaped; everything else is treated as mrkdwn, matching Slack's
// default for webhook senders that omit the discriminator.
func renderText(t *TextObject) string {
	if t == nil {
		return ""
	}
	if t.Type == TextPlain {
		return mrkdwn.Escape(t.Text)
	}
	return mrkdwn.ToHTML(t.Text)
}

// renderBlock converts one block into its HTML and plain-text fragments.
// Unrecognized block kinds contribute nothing.
func renderBlock(b *Block) rendered {
	var out rendered
	if b == nil {
		return out
	}
	switch b.Type {
	case BlockSection:
		if b.Text != nil && b.Text.Text != "" {
			out.html += "<p>" + renderText(b.Text) + "</p>"
			out.plain += b.Text.Text + "\n"
		}
		if len(b.Fields) > 0 {
			out.html += "<ul>"
			for _, f := range b.Fields {
				if f == nil || f.Text == "" {
					continue
				}
				// Section fields are always bolded, titled or not.
				out.html += "<li><b>" + renderText(f) + "</b></li>"
				out.plain += "- " + f.Text + "\n"
			}
			out.html += "</ul>"
		}
	case BlockHeader:
		// Header text is plain by definition and never markup-processed.
		if b.Text != nil && b.Text.Text != "" {
			out.html += "<h3>" + mrkdwn.Escape(b.Text.Text) + "</h3>"
			out.plain += "## " + b.Text.Text + "\n"
		}
	case BlockContext:
		var html, plain strings.Builder
		for _, el := range b.Elements {
			if el == nil || el.Text == "" {
				continue
			}
			html.WriteString(renderText(el))
			html.WriteString(" ")
			plain.WriteString(el.Text)
			plain.WriteString(" ")
		}
		if html.Len() > 0 {
			out.html = "<br><small>" + html.String() + "</small>"
			out.plain = plain.String()
		}
	case BlockDivider:
		out.html = "<hr>"
		out.plain = "---\n"
	case BlockImage:
		if b.ImageURL != "" {
			alt := b.AltText
			if alt == "" {
				alt = "Image"
			}
			out.html = `<img src="` + mrkdwn.Escape(b.ImageURL) + `" alt="` + mrkdwn.Escape(alt) + `"><br>`
			out.plain = "[Image: " + alt + "]\n"
		}
	}
	return out
}
