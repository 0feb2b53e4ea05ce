package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/filmbot/core/config"
	coretelegram "github.com/m3rciful/filmbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct {
	opts coretelegram.RunOptions
	err  error
}

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, a.err }

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("FILMBOT_TEST_CONFIG", "custom.yaml")

	var (
		loadedPath   string
		loggerClosed bool
		hooks        []string
	)
	err := Run(Options{
		ConfigEnvVar:      "FILMBOT_TEST_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error { hooks = append(hooks, "start"); return nil },
				OnStop:  func(context.Context, coretelegram.Runtime) error { hooks = append(hooks, "stop"); return nil },
			}}, nil
		},
		ShutdownLogger: func() error { loggerClosed = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loadedPath != "custom.yaml" {
		t.Fatalf("config path = %q", loadedPath)
	}
	if !loggerClosed {
		t.Fatal("logger not shut down")
	}
	if len(hooks) != 2 || hooks[0] != "start" || hooks[1] != "stop" {
		t.Fatalf("hooks = %v", hooks)
	}
}

func TestRunRequiresHooks(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
	if err := Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil }}); err == nil {
		t.Fatal("expected error without Bootstrap")
	}
}

func TestRunReportsLoadError(t *testing.T) {
	boom := errors.New("bad yaml")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:         func(context.Context, ConfigCarrier) (TelegramApp, error) { return app{}, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
