// Copyright 2024-2026 Aiku AI

package translator

import (
	"regexp"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/aiku/slack-to-matrix/pkg/translator/mrkdwn"
)

// Status icons prefixed to attachment titles based on the color field.
const (
	iconDanger  = "\U0001F534" // red circle
	iconGood    = "\U0001F7E2" // green circle
	iconWarning = "⚠️"
	iconInfo    = "\U0001F535" // blue circle
)

// Rough hue families for hex colors: reds sit high in the first channel,
// greens in the second. The #ff… range is shared between the danger and
// warning families; danger is checked first, so the tie breaks toward the
// red circle.
var (
	dangerHexRe  = regexp.MustCompile(`(?i)^#(f|e0|d0|c00)`)
	goodHexRe    = regexp.MustCompile(`(?i)^#(0[0-9a-f]?f|2e|36|4c)`)
	warningHexRe = regexp.MustCompile(`(?i)^#(ff?[0-9a-f]?c|daa|eed)`)
)

// colorIcon maps an attachment color (semantic token or hex string) to a
// status icon. An absent color yields no icon at all, not the info
// default.
func colorIcon(color string) string {
	switch {
	case color == "":
		return ""
	case color == "danger" || dangerHexRe.MatchString(color):
		return iconDanger
	case color == "good" || goodHexRe.MatchString(color):
		return iconGood
	case color == "warning" || warningHexRe.MatchString(color):
		return iconWarning
	default:
		return iconInfo
	}
}

// stringValue extracts a string from a loosely typed attachment field
// value. Slack clients send numbers and nulls here; anything that is not
// a string degrades to empty instead of failing the payload.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// renderAttachment converts one legacy attachment into its HTML and
// plain-text fragments. Fixed rendering order: title (with color icon),
// preceded by pretext, then body text, then fields; each part is skipped
// when absent. The timestamp is accepted but not rendered.
func renderAttachment(a *model.SlackAttachment) rendered {
	var out rendered
	if a == nil {
		return out
	}
	prefix := ""
	if icon := colorIcon(a.Color); icon != "" {
		prefix = icon + " "
	}
	if a.Pretext != "" {
		out.html += "<p>" + mrkdwn.ToHTML(a.Pretext) + "</p>"
		out.plain += a.Pretext + "\n"
	}
	if a.Title != "" {
		title := mrkdwn.Escape(a.Title)
		if a.TitleLink != "" {
			title = `<a href="` + mrkdwn.Escape(a.TitleLink) + `">` + title + `</a>`
		}
		out.html += "<h4>" + prefix + title + "</h4>"
		out.plain += prefix + a.Title + "\n"
	}
	if a.Text != "" {
		out.html += "<p>" + mrkdwn.ToHTML(a.Text) + "</p>"
		out.plain += a.Text + "\n"
	}
	if len(a.Fields) > 0 {
		out.html += "<ul>"
		for _, f := range a.Fields {
			if f == nil {
				continue
			}
			value := stringValue(f.Value)
			out.html += "<li>"
			if f.Title != "" {
				out.html += "<b>" + mrkdwn.Escape(f.Title) + ":</b> "
			}
			out.html += mrkdwn.ToHTML(value) + "</li>"
			// An absent title leaves the leading ": " in place.
			out.plain += f.Title + ": " + value + "\n"
		}
		out.html += "</ul>"
	}
	return out
}
