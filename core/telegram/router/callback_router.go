package router

import (
	"log/slog"

	tg "github.com/m3rciful/filmbot/core/telegram"
	"github.com/m3rciful/filmbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound runs when neither the registry nor its fallback knows the key.
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches every inline button press through the registry by unique key.
// Handlers see the decoded key in Callback().Unique and the payload in Callback().Data.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		callbacks.Normalize(cb)
		key := cb.Unique
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		if h, ok := reg.GetCallback(key); ok && h != nil {
			_ = c.Respond()
			return handleWithSummary(c, name, func() error { return h(c) }, extras...)
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		extras = append(extras, slog.String("reason", "not_found"))
		return handleWithSummary(c, name, func() error {
			if fallback == nil {
				return c.Respond()
			}
			return fallback(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
