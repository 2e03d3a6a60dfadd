// Package bridge sequences a color scheme write with its read-back: write the
// requested preference, let the desktop apply it, then ask the desktop what
// it is actually using.
package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jm/colorscheme/internal/preference"
)

// DefaultSettle is how long Run waits between launching a write and reading
// the value back when no signal is available.
const DefaultSettle = 100 * time.Millisecond

type SettingsWriter interface {
	Write(ctx context.Context, v preference.Value) error
}

// SettingsReader reports the active preference. ok is false when the value
// could not be obtained for any reason.
type SettingsReader interface {
	Read(ctx context.Context) (v preference.Value, ok bool)
}

// Wait blocks until a write is assumed to have been applied. written is nil
// when nothing was written.
type Wait func(ctx context.Context, written *preference.Value)

// Settler is armed before the write is launched so it can observe the effect
// of the write, and waited on after.
type Settler interface {
	Begin(ctx context.Context) Wait
}

type Bridge struct {
	Writer  SettingsWriter
	Reader  SettingsReader
	Settler Settler
	Log     zerolog.Logger
}

// Run writes want when it is non-nil, settles, and reads the active value
// back. Only a failed write is reported as an error; a failed read is
// ok == false.
func (b *Bridge) Run(ctx context.Context, want *preference.Value) (preference.Value, bool, error) {
	settler := b.Settler
	if settler == nil {
		settler = Sleep(DefaultSettle)
	}
	wait := settler.Begin(ctx)

	if want != nil {
		b.Log.Debug().Stringer("preference", *want).Msg("writing preference")
		if err := b.Writer.Write(ctx, *want); err != nil {
			return preference.NoPreference, false, err
		}
	}

	wait(ctx, want)

	v, ok := b.Reader.Read(ctx)
	if !ok {
		b.Log.Debug().Msg("no preference reported")
		return preference.NoPreference, false, nil
	}
	b.Log.Debug().Stringer("preference", v).Msg("preference read back")
	return v, true, nil
}
