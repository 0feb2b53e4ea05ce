package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/filmbot/core/logger"
	tg "github.com/m3rciful/filmbot/core/telegram"
	"github.com/m3rciful/filmbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

func (o CommandRouteOptions) admin() middleware.AdminOptions {
	return middleware.AdminOptions{AdminID: o.AdminID, OnReject: o.OnAdminReject}
}

// CommandRoutes binds every registered command (and alias) to its handler.
// Admin-only commands reject other users before the handler runs.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: commandHandler(cmd, def.AdminOnly, def.Handler, opts.admin())})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + alias, Handler: commandHandler(cmd, def.AdminOnly, def.Handler, opts.admin())})
		}
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func commandHandler(cmd string, adminOnly bool, h tele.HandlerFunc, admin middleware.AdminOptions) tele.HandlerFunc {
	name := normalizeHandlerName(cmd)
	guarded := middleware.WithAdminCheck(admin, adminOnly, h)
	return func(c tele.Context) error {
		return handleWithSummary(c, name, func() error { return guarded(c) })
	}
}
