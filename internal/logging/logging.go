package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a debug logger writing human-readable lines to w when verbose
// is set, and a disabled logger otherwise so failures stay silent.
func New(w io.Writer, verbose bool) zerolog.Logger {
	if !verbose || w == nil {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
