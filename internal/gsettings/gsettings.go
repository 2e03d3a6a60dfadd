package gsettings

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jm/colorscheme/internal/preference"
)

const (
	DefaultBinary = "gsettings"
	DefaultSchema = "org.gnome.desktop.interface"
	DefaultKey    = "color-scheme"
)

// Writer persists the color scheme by launching gsettings. Launches are
// fire-and-forget: Write returns as soon as the process has started.
type Writer struct {
	Binary string
	Schema string
	Key    string
	Log    zerolog.Logger
}

func NewWriter(binary string, log zerolog.Logger) *Writer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Writer{
		Binary: binary,
		Schema: DefaultSchema,
		Key:    DefaultKey,
		Log:    log,
	}
}

func (w *Writer) args(v preference.Value) []string {
	return []string{"set", w.Schema, w.Key, v.GSettings()}
}

func (w *Writer) command(v preference.Value) *exec.Cmd {
	return exec.Command(w.Binary, w.args(v)...)
}

// Write starts `gsettings set <schema> <key> <value>` and does not wait for
// it. The context is not bound to the child so cancellation cannot kill a
// write that is already underway.
func (w *Writer) Write(_ context.Context, v preference.Value) error {
	cmd := w.command(v)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "launch %s %s", w.Binary, strings.Join(w.args(v), " "))
	}
	w.Log.Debug().
		Str("binary", w.Binary).
		Strs("args", w.args(v)).
		Int("pid", cmd.Process.Pid).
		Msg("settings writer launched")

	go func() {
		if err := cmd.Wait(); err != nil {
			w.Log.Debug().Err(err).Str("stderr", strings.TrimSpace(stderr.String())).Msg("settings writer exited with error")
			return
		}
		w.Log.Debug().Msg("settings writer finished")
	}()

	return nil
}
