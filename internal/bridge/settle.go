package bridge

import (
	"context"
	"time"

	"github.com/jm/colorscheme/internal/preference"
)

// Sleep settles by waiting a fixed delay. It does not know whether the
// write has landed; a slow writer can still lose the race with the read.
type Sleep time.Duration

func (s Sleep) Begin(context.Context) Wait {
	return func(ctx context.Context, _ *preference.Value) {
		if s <= 0 {
			return
		}
		t := time.NewTimer(time.Duration(s))
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
}
