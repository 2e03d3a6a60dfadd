// Package portal talks to the XDG desktop portal Settings interface on the
// session bus to learn the active color scheme.
// Upstream API documentation: https://flatpak.github.io/xdg-desktop-portal/docs/doc-org.freedesktop.portal.Settings.html
package portal

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jm/colorscheme/internal/preference"
)

const (
	objectName = "org.freedesktop.portal.Desktop"
	objectPath = dbus.ObjectPath("/org/freedesktop/portal/desktop")

	settingsInterface = "org.freedesktop.portal.Settings"
	readOneMethod     = settingsInterface + ".ReadOne"
	readMethod        = settingsInterface + ".Read"
	changedMember     = "SettingChanged"

	AppearanceNamespace = "org.freedesktop.appearance"
	ColorSchemeKey      = "color-scheme"
)

var errUnexpectedReply = errors.New("unexpected reply from portal")

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

type dialFunc func() (obj caller, closeFn func() error, err error)

func dialSession() (caller, func() error, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, err
	}
	return conn.Object(objectName, objectPath), conn.Close, nil
}

// Reader reads org.freedesktop.appearance color-scheme. Every failure is
// reported as an absent value.
type Reader struct {
	Log  zerolog.Logger
	dial dialFunc
}

func NewReader(log zerolog.Logger) *Reader {
	return &Reader{Log: log, dial: dialSession}
}

func (r *Reader) Read(ctx context.Context) (preference.Value, bool) {
	code, err := r.readCode(ctx)
	if err != nil {
		r.Log.Debug().Err(err).Msg("portal color-scheme unavailable")
		return preference.NoPreference, false
	}
	r.Log.Debug().Uint32("code", code).Msg("portal color-scheme")
	return preference.FromCode(code), true
}

func (r *Reader) readCode(ctx context.Context) (uint32, error) {
	obj, closeFn, err := r.dial()
	if err != nil {
		return 0, errors.Wrap(err, "connect session bus")
	}
	defer closeFn()

	call := obj.CallWithContext(ctx, readOneMethod, 0, AppearanceNamespace, ColorSchemeKey)
	if call.Err != nil {
		r.Log.Debug().Err(call.Err).Msg("ReadOne failed, trying deprecated Read")
		// Read wraps the value in one more variant than ReadOne.
		call = obj.CallWithContext(ctx, readMethod, 0, AppearanceNamespace, ColorSchemeKey)
		if call.Err != nil {
			return 0, errors.Wrap(call.Err, "call "+readMethod)
		}
	}

	if len(call.Body) == 0 {
		return 0, errUnexpectedReply
	}
	code, ok := unwrapCode(call.Body[0])
	if !ok {
		return 0, errors.Wrapf(errUnexpectedReply, "reply %T", call.Body[0])
	}
	return code, nil
}

// unwrapCode strips any number of variant layers and expects a uint32.
func unwrapCode(v interface{}) (uint32, bool) {
	for {
		variant, ok := v.(dbus.Variant)
		if !ok {
			break
		}
		v = variant.Value()
	}
	code, ok := v.(uint32)
	return code, ok
}
