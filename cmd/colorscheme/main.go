package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jm/colorscheme/internal/bridge"
	"github.com/jm/colorscheme/internal/config"
	"github.com/jm/colorscheme/internal/gsettings"
	"github.com/jm/colorscheme/internal/portal"
	"github.com/jm/colorscheme/internal/preference"
	"github.com/jm/colorscheme/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args, os.Environ(), os.Stdout, os.Stderr, desktopServices)
	stop()
	os.Exit(code)
}

// services are the outside-world capabilities the command drives.
type services struct {
	writer  bridge.SettingsWriter
	reader  bridge.SettingsReader
	settler bridge.Settler
	follow  func(ctx context.Context, fn func(preference.Value)) error
	choose  func(current preference.Value, known bool) (preference.Value, bool, error)
}

type serviceFactory func(cfg *config.Config, log zerolog.Logger) services

func desktopServices(cfg *config.Config, log zerolog.Logger) services {
	w := gsettings.NewWriter(cfg.GSettings, log)
	w.Schema = cfg.Schema
	w.Key = cfg.Key

	var settler bridge.Settler = bridge.Sleep(cfg.Settle)
	if cfg.WaitSignal {
		settler = portal.NewSignalSettler(cfg.SignalTimeout, log)
	}

	return services{
		writer:  w,
		reader:  portal.NewReader(log),
		settler: settler,
		follow: func(ctx context.Context, fn func(preference.Value)) error {
			return portal.Follow(ctx, log, fn)
		},
		choose: func(current preference.Value, known bool) (preference.Value, bool, error) {
			return tui.Choose(current, known, os.Stdin, os.Stderr)
		},
	}
}
