package portal

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/jm/colorscheme/internal/bridge"
	"github.com/jm/colorscheme/internal/preference"
)

type signalConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	Close() error
}

// SignalSettler waits for the portal to announce the written color scheme
// instead of sleeping blindly. Writing the value that is already active emits
// no signal, so that case waits the full Timeout.
type SignalSettler struct {
	Timeout time.Duration
	Log     zerolog.Logger
	connect func() (signalConn, error)
}

func NewSignalSettler(timeout time.Duration, log zerolog.Logger) *SignalSettler {
	return &SignalSettler{
		Timeout: timeout,
		Log:     log,
		connect: func() (signalConn, error) { return dbus.ConnectSessionBus() },
	}
}

// Begin subscribes to SettingChanged. It must run before the write so the
// change cannot be missed. Without a session bus it degrades to sleeping for
// Timeout.
func (s *SignalSettler) Begin(ctx context.Context) bridge.Wait {
	conn, err := s.connect()
	if err != nil {
		s.Log.Debug().Err(err).Msg("no session bus for SettingChanged, sleeping instead")
		return bridge.Sleep(s.Timeout).Begin(ctx)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(settingsInterface),
		dbus.WithMatchMember(changedMember),
	); err != nil {
		conn.Close()
		s.Log.Debug().Err(err).Msg("SettingChanged match rejected, sleeping instead")
		return bridge.Sleep(s.Timeout).Begin(ctx)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	return func(ctx context.Context, written *preference.Value) {
		defer conn.Close()
		if written == nil {
			return
		}

		timer := time.NewTimer(s.Timeout)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				s.Log.Debug().Dur("timeout", s.Timeout).Msg("no SettingChanged for written value")
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				v, ok := signalValue(sig)
				if !ok {
					continue
				}
				s.Log.Debug().Stringer("preference", v).Msg("SettingChanged")
				if v == *written {
					return
				}
			}
		}
	}
}

// signalValue extracts the color scheme from a SettingChanged signal, whose
// body is (namespace, key, variant value).
func signalValue(sig *dbus.Signal) (preference.Value, bool) {
	if sig == nil || sig.Name != settingsInterface+"."+changedMember || len(sig.Body) < 3 {
		return preference.NoPreference, false
	}
	namespace, _ := sig.Body[0].(string)
	key, _ := sig.Body[1].(string)
	if namespace != AppearanceNamespace || key != ColorSchemeKey {
		return preference.NoPreference, false
	}
	code, ok := unwrapCode(sig.Body[2])
	if !ok {
		return preference.NoPreference, false
	}
	return preference.FromCode(code), true
}
