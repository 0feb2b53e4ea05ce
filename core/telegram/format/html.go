// Package format renders text for Telegram's HTML parse mode.
package format

import (
	"html"
	"strings"
)

// Escape makes s safe to embed in an HTML-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Bold wraps the escaped s in <b>.
func Bold(s string) string {
	return "<b>" + Escape(s) + "</b>"
}

// Field renders "<b>label:</b> value" with both parts escaped.
func Field(label, value string) string {
	return Bold(label+":") + " " + Escape(value)
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
