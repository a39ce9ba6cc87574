// Copyright 2024-2026 Aiku AI

// Package mrkdwn converts Slack mrkdwn markup to a safe HTML subset.
package mrkdwn

import (
	"regexp"
	"strconv"
	"strings"
)

// escapes lists the HTML entity substitutions in application order. The
// ampersand must be replaced first so the ampersands of freshly generated
// entities are not escaped a second time.
var escapes = []struct{ raw, entity string }{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#39;"},
}

// Escape replaces the five HTML metacharacters with entities. It is not
// idempotent: escaping twice double-encodes ampersands, so every string
// must pass through exactly once, before any markup is inserted.
func Escape(raw string) string {
	for _, e := range escapes {
		raw = strings.ReplaceAll(raw, e.raw, e.entity)
	}
	return raw
}

var (
	// Link tokens are matched on already-escaped text, so the angle
	// brackets appear as entities. The scheme allowlist is deliberately
	// stricter than a guard on Slack's special tokens (<!here>, <@U123>,
	// <#C123>): those stay literal because they carry no scheme, and
	// javascript:/data: tokens can never become an href. Other schemes
	// (ftp: etc.) also stay literal text.
	labeledLinkRe = regexp.MustCompile(`&lt;((?:https?|mailto):[^|\s]*?)\|(.*?)&gt;`)
	bareLinkRe    = regexp.MustCompile(`&lt;((?:https?|mailto):[^|\s]*?)&gt;`)

	// anchorRe matches a complete generated anchor. The label is escaped
	// text at this point, so it cannot contain a bare angle bracket.
	anchorRe = regexp.MustCompile(`<a href="[^"]*">[^<]*</a>`)

	// Bold and italic delimiters only count when they are not glued to a
	// word character on the outside and the span content does not start or
	// end with whitespace. That keeps multiplication asterisks
	// ("2 * 4 = 8") and snake_case identifiers literal.
	boldRe   = regexp.MustCompile(`(^|[^\w])\*([^\s*](?:[^*\n]*[^\s*])?)\*($|[^\w])`)
	italicRe = regexp.MustCompile(`(^|[^\w])_([^\s_](?:[^_\n]*[^\s_])?)_($|[^\w])`)

	strikeRe = regexp.MustCompile(`~([^~\n]+?)~`)
	codeRe   = regexp.MustCompile("`([^`\n]+)`")
)

// ToHTML converts one paragraph of Slack mrkdwn to an HTML fragment.
// Empty input yields an empty string. All patterns are RE2, so conversion
// time stays linear in the input size.
//
// The pass order is load-bearing: escaping must come first so user text
// can never smuggle markup in, links run next and their finished anchors
// are stashed behind placeholders so URLs and labels containing * _ ~ `
// survive the delimiter passes intact, and line breaks run last so
// newlines inside substituted tags are left alone.
func ToHTML(markup string) string {
	if markup == "" {
		return ""
	}
	markup = Escape(markup)
	markup = labeledLinks(markup)
	markup = bareLinks(markup)

	var anchors []string
	markup = anchorRe.ReplaceAllStringFunc(markup, func(match string) string {
		idx := len(anchors)
		anchors = append(anchors, match)
		return "\x00LINK" + strconv.Itoa(idx) + "\x00"
	})

	markup = bold(markup)
	markup = italic(markup)
	markup = strike(markup)
	markup = code(markup)
	markup = lineBreaks(markup)

	for i, anchor := range anchors {
		markup = strings.Replace(markup, "\x00LINK"+strconv.Itoa(i)+"\x00", anchor, 1)
	}
	return markup
}

func labeledLinks(s string) string {
	return labeledLinkRe.ReplaceAllString(s, `<a href="$1">$2</a>`)
}

func bareLinks(s string) string {
	return bareLinkRe.ReplaceAllString(s, `<a href="$1">$1</a>`)
}

func bold(s string) string {
	return replaceDelimited(s, boldRe, "$1<b>$2</b>$3")
}

func italic(s string) string {
	return replaceDelimited(s, italicRe, "$1<i>$2</i>$3")
}

func strike(s string) string {
	return strikeRe.ReplaceAllString(s, "<s>$1</s>")
}

func code(s string) string {
	return codeRe.ReplaceAllString(s, "<code>$1</code>")
}

func lineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

// replaceDelimited applies a boundary-guarded delimiter rule twice. The
// trailing boundary character is consumed by each match, so adjacent spans
// like "*a* *b*" need a second sweep to convert the span whose leading
// boundary was eaten by the previous match.
func replaceDelimited(s string, re *regexp.Regexp, repl string) string {
	s = re.ReplaceAllString(s, repl)
	return re.ReplaceAllString(s, repl)
}
