// Package callbacks decodes inline button presses.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse returns the unique key and payload of a button press.
// telebot fills Unique only when an endpoint is registered for the button;
// otherwise Data still holds the raw "\f<unique>|<payload>" encoding.
func Parse(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// Normalize rewrites cb in place so Unique and Data hold the decoded key and payload.
func Normalize(cb *tele.Callback) {
	if cb == nil || cb.Unique != "" {
		return
	}
	cb.Unique, cb.Data = Parse(cb)
}

// Key returns the unique key of the current callback.
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}

// Payload returns the payload of the current callback.
func Payload(c tele.Context) string {
	_, payload := Parse(c.Callback())
	return payload
}

// PayloadInt parses the callback payload as a decimal int.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(strings.TrimSpace(Payload(c)))
}
