package middleware

import (
	"github.com/m3rciful/filmbot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

const (
	messagesKey = "messages"
	keyboardKey = "kb"
)

// metricsContext wraps tele.Context to count outbound messages and keyboard usage.
type metricsContext struct{ tele.Context }

func (m metricsContext) record(what interface{}, opts []interface{}) {
	n, kb := GetCounters(m.Context)
	m.Set(messagesKey, n+1)
	if kb || hasKeyboard(opts) {
		m.Set(keyboardKey, true)
	}
	metrics.MessagesSent.WithLabelValues(payloadType(what)).Inc()
}

func payloadType(what interface{}) string {
	switch what.(type) {
	case string:
		return "text"
	case *tele.Photo:
		return "photo"
	}
	return "other"
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.record(what, opts)
	}
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.record(what, opts)
	}
	return err
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.record(what, opts)
	}
	return err
}

// MessageMetricsMiddleware instruments the context to count replies per update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(messagesKey, 0)
		c.Set(keyboardKey, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads the reply count and keyboard flag recorded for the current update.
func GetCounters(c tele.Context) (int, bool) {
	n, _ := c.Get(messagesKey).(int)
	kb, _ := c.Get(keyboardKey).(bool)
	return n, kb
}
