// Package preference defines the light/dark color scheme value shared by the
// command line, the gsettings writer and the portal reader.
package preference

import (
	"github.com/pkg/errors"
)

// ErrUnknown is returned by Parse for text that names no preference.
var ErrUnknown = errors.New("unknown color scheme preference")

type Value int

const (
	NoPreference Value = iota
	Light
	Dark
)

// Portal codes for org.freedesktop.appearance color-scheme.
const (
	codeDark  uint32 = 1
	codeLight uint32 = 2
)

var names = map[Value]string{
	NoPreference: "no-preference",
	Light:        "light",
	Dark:         "dark",
}

var gsettingsValues = map[Value]string{
	NoPreference: "default",
	Light:        "prefer-light",
	Dark:         "prefer-dark",
}

// Literals returns the accepted command line spellings in display order.
func Literals() []string {
	return []string{"no-preference", "default", "light", "dark"}
}

// Parse maps a command line literal to a Value. "default" is accepted as an
// alias of "no-preference".
func Parse(s string) (Value, error) {
	switch s {
	case "no-preference", "default":
		return NoPreference, nil
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return NoPreference, errors.Wrapf(ErrUnknown, "%q (want one of no-preference, default, light, dark)", s)
}

// FromCode maps the integer reported by the desktop portal. Codes other than
// 1 and 2 mean no preference.
func FromCode(code uint32) Value {
	switch code {
	case codeDark:
		return Dark
	case codeLight:
		return Light
	default:
		return NoPreference
	}
}

func (v Value) String() string {
	if s, ok := names[v]; ok {
		return s
	}
	return names[NoPreference]
}

// GSettings returns the value accepted by the org.gnome.desktop.interface
// color-scheme key.
func (v Value) GSettings() string {
	if s, ok := gsettingsValues[v]; ok {
		return s
	}
	return gsettingsValues[NoPreference]
}

func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
