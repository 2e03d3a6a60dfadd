package portal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rymdport/portal/settings"

	"github.com/jm/colorscheme/internal/preference"
)

// Follow calls fn for every color scheme change the portal announces until
// ctx is done.
func Follow(ctx context.Context, log zerolog.Logger, fn func(preference.Value)) error {
	changes := make(chan preference.Value)
	errc := make(chan error, 1)

	// OnSignalSettingChanged never returns once subscribed; the goroutine
	// lives until the process exits.
	go func() {
		errc <- settings.OnSignalSettingChanged(func(c settings.Changed) {
			v, ok := changedValue(c)
			if !ok {
				return
			}
			select {
			case changes <- v:
			case <-ctx.Done():
			}
		})
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err != nil {
				return errors.Wrap(err, "subscribe to portal settings")
			}
			return nil
		case v := <-changes:
			log.Debug().Stringer("preference", v).Msg("color-scheme changed")
			fn(v)
		}
	}
}

func changedValue(c settings.Changed) (preference.Value, bool) {
	if c.Namespace != AppearanceNamespace || c.Key != ColorSchemeKey {
		return preference.NoPreference, false
	}
	code, ok := unwrapCode(c.Value)
	if !ok {
		return preference.NoPreference, false
	}
	return preference.FromCode(code), true
}
