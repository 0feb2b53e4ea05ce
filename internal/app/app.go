package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/filmbot/core/bootstrap"
	coreconfig "github.com/m3rciful/filmbot/core/config"
	"github.com/m3rciful/filmbot/core/logger"
	"github.com/m3rciful/filmbot/core/metrics"
	tg "github.com/m3rciful/filmbot/core/telegram"
	"github.com/m3rciful/filmbot/core/telegram/router"
	tgsender "github.com/m3rciful/filmbot/core/telegram/sender"
	"github.com/m3rciful/filmbot/core/telegram/state"
	"github.com/m3rciful/filmbot/internal/catalog"
	"github.com/m3rciful/filmbot/internal/form"
	"github.com/m3rciful/filmbot/internal/handlers"
)

const metricsShutdownTimeout = 5 * time.Second

// App holds the wired bot.
type App struct {
	cfg      *Config
	store    *catalog.Store
	sessions state.Manager
	registry *tg.Registry

	metricsSrv *metrics.Server
}

// Options overrides parts of Bootstrap.
type Options struct {
	// LoggerInit replaces logger.InitLogger.
	LoggerInit func(*coreconfig.Config) error
}

// Bootstrap initializes logging, prepares the catalog and registers every handler.
func Bootstrap(ctx context.Context, cfg *Config, opts ...Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	store := catalog.NewStore(cfg.Catalog.Path)
	bopts := bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Storage:    store,
		Modules:    bootstrap.Modules{Seeders: seeders(cfg)},
		LoggerInit: o.LoggerInit,
	}
	if _, err := bootstrap.Run(ctx, bopts); err != nil {
		return nil, err
	}

	if cfg.Telegram.AdminID == 0 {
		logger.Warn(ctx, "app", "admin.missing",
			slog.String("status", "skip"),
			slog.String("reason", "telegram.admin_id not set; /add_film is disabled"),
		)
	}

	sessions := state.NewMemoryManager()
	forms := form.NewMachine(sessions, store, cfg.Telegram.AdminID)
	reg := tg.NewRegistry()
	if err := handlers.New(store, forms).Register(reg, sessions); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return &App{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		registry: reg,
	}, nil
}

func seeders(cfg *Config) []bootstrap.Seeder {
	var out []bootstrap.Seeder
	if cfg.Catalog.CreateIfMissing {
		out = append(out, bootstrap.SeederFunc(func(ctx context.Context, s bootstrap.Storage) error {
			return s.(*catalog.Store).EnsureExists(ctx)
		}))
	}
	out = append(out, bootstrap.SeederFunc(probeCatalog))
	return out
}

// probeCatalog reports the catalog size at start-up. An unreadable catalog is
// logged, not fatal: /films reports the error until the file is fixed.
func probeCatalog(ctx context.Context, s bootstrap.Storage) error {
	store := s.(*catalog.Store)
	films, err := store.List(ctx)
	if err != nil {
		logger.Warn(ctx, "app", "catalog.probe",
			slog.String("status", "fail"),
			slog.String("path", store.Path()),
			slog.String("err", err.Error()),
		)
		return nil
	}
	logger.Info(ctx, "app", "catalog.probe",
		slog.String("status", "ok"),
		slog.String("path", store.Path()),
		slog.Int("count", len(films)),
	)
	return nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// Sessions exposes the dialogue session manager.
func (a *App) Sessions() state.Manager { return a.sessions }

// TelegramRunOptions assembles middleware, routes and lifecycle hooks for tg.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: handlers.RejectAdmin,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, router.TextOptions{})...)

	return tg.RunOptions{
		Config:            core,
		Registry:          a.registry,
		DispatcherOptions: tgsender.Options{MaxRetries: 2},
		Middlewares:       tg.DefaultMiddlewares(core, nil),
		Routes:            routes,
		OnStart:           a.start,
		OnStop:            a.stop,
	}, nil
}

func (a *App) start(_ context.Context, _ tg.Runtime) error {
	addr := a.cfg.Metrics.Listen
	if addr == "" {
		return nil
	}
	srv, err := metrics.Listen(addr)
	if err != nil {
		return err
	}
	a.metricsSrv = srv
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	if a.metricsSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
	defer cancel()
	err := a.metricsSrv.Shutdown(ctx)
	a.metricsSrv = nil
	logger.Info(ctx, "metrics", "metrics.shutdown", slog.String("status", logger.Status(err)))
	return err
}
