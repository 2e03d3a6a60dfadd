package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/jm/colorscheme/internal/bridge"
	"github.com/jm/colorscheme/internal/config"
	"github.com/jm/colorscheme/internal/logging"
	"github.com/jm/colorscheme/internal/preference"
	"github.com/jm/colorscheme/internal/render"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errNoValue ends the run with exitFailure and no output.
var errNoValue = errors.New("no color scheme reported")

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func execute(ctx context.Context, args, environ []string, stdout, stderr io.Writer, newServices serviceFactory) int {
	cfg, err := config.Load(environ)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	err = newCommand(cfg, stdout, stderr, newServices).Run(ctx, args)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errNoValue):
		return exitFailure
	}

	fmt.Fprintf(stderr, "error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFailure
}

func newCommand(cfg *config.Config, stdout, stderr io.Writer, newServices serviceFactory) *cli.Command {
	return &cli.Command{
		Name:            "color-scheme",
		Usage:           "Read, and optionally set, the desktop light/dark color scheme preference",
		ArgsUsage:       "[" + strings.Join(preference.Literals(), "|") + "]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "settle",
				Usage: "Delay between launching gsettings and reading the value back",
				Value: cfg.Settle,
			},
			&cli.BoolFlag{
				Name:  "wait-signal",
				Usage: "Wait for the portal to announce the change instead of sleeping",
				Value: cfg.WaitSignal,
			},
			&cli.DurationFlag{
				Name:  "signal-timeout",
				Usage: "Upper bound on --wait-signal",
				Value: cfg.SignalTimeout,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (text, json)",
				Value: cfg.Format,
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colorize output (auto, always, never)",
				Value: cfg.Color,
			},
			&cli.StringFlag{
				Name:  "gsettings",
				Usage: "Path to the gsettings binary",
				Value: cfg.GSettings,
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "Keep printing the color scheme each time it changes",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Choose the preference from a menu",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log each step to stderr",
				Value:   cfg.Verbose,
			},
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return usageError{err}
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, cfg, stdout, stderr, newServices)
		},
	}
}

func parseArgs(cmd *cli.Command) (*preference.Value, error) {
	args := cmd.Args().Slice()
	if len(args) > 1 {
		return nil, usageError{errors.Errorf("expected at most one preference, got %d: %s", len(args), strings.Join(args, " "))}
	}
	if len(args) == 0 {
		return nil, nil
	}
	v, err := preference.Parse(args[0])
	if err != nil {
		return nil, usageError{err}
	}
	return &v, nil
}

func run(ctx context.Context, cmd *cli.Command, cfg *config.Config, stdout, stderr io.Writer, newServices serviceFactory) error {
	want, err := parseArgs(cmd)
	if err != nil {
		return err
	}
	interactive := cmd.Bool("interactive")
	if interactive && want != nil {
		return usageError{errors.New("--interactive does not take a preference argument")}
	}

	cfg.Settle = cmd.Duration("settle")
	cfg.WaitSignal = cmd.Bool("wait-signal")
	cfg.SignalTimeout = cmd.Duration("signal-timeout")
	cfg.Format = cmd.String("format")
	cfg.Color = cmd.String("color")
	cfg.GSettings = cmd.String("gsettings")
	cfg.Verbose = cmd.Bool("verbose")
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}

	log := logging.New(stderr, cfg.Verbose)
	svc := newServices(cfg, log)
	out := render.New(stdout,
		render.WithFormat(cfg.Format),
		render.WithColor(render.ColorEnabled(cfg.Color, stdout)),
	)

	if interactive {
		current, known := svc.reader.Read(ctx)
		v, ok, err := svc.choose(current, known)
		if err != nil {
			return errors.Wrap(err, "interactive chooser")
		}
		if ok {
			want = &v
		}
	}

	b := &bridge.Bridge{
		Writer:  svc.writer,
		Reader:  svc.reader,
		Settler: svc.settler,
		Log:     log,
	}
	v, ok, err := b.Run(ctx, want)
	if err != nil {
		return err
	}
	if !ok {
		return errNoValue
	}
	if err := out.Render(v); err != nil {
		return err
	}

	if !cmd.Bool("follow") {
		return nil
	}
	return svc.follow(ctx, func(v preference.Value) {
		if err := out.Render(v); err != nil {
			log.Debug().Err(err).Msg("render change")
		}
	})
}
