package config

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/jm/colorscheme/internal/bridge"
	"github.com/jm/colorscheme/internal/gsettings"
)

// EnvPrefix namespaces the environment variables Load reads, e.g.
// COLOR_SCHEME_SETTLE=250ms.
const EnvPrefix = "COLOR_SCHEME_"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	GSettings     string        `mapstructure:"gsettings"`
	Schema        string        `mapstructure:"schema"`
	Key           string        `mapstructure:"key"`
	Settle        time.Duration `mapstructure:"settle"`
	WaitSignal    bool          `mapstructure:"wait_signal"`
	SignalTimeout time.Duration `mapstructure:"signal_timeout"`
	Format        string        `mapstructure:"format"`
	Color         string        `mapstructure:"color"`
	Verbose       bool          `mapstructure:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		GSettings:     gsettings.DefaultBinary,
		Schema:        gsettings.DefaultSchema,
		Key:           gsettings.DefaultKey,
		Settle:        bridge.DefaultSettle,
		WaitSignal:    false,
		SignalTimeout: 2 * time.Second,
		Format:        "text",
		Color:         "auto",
	}
}

// Load overlays COLOR_SCHEME_* variables from environ (os.Environ format)
// onto the defaults.
func Load(environ []string) (*Config, error) {
	cfg := DefaultConfig()

	values := make(map[string]interface{})
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "" || value == "" {
			continue
		}
		values[key] = value
	}

	if len(values) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           cfg,
		})
		if err != nil {
			return nil, errors.Wrap(err, "config decoder")
		}
		if err := dec.Decode(values); err != nil {
			return nil, errors.Wrapf(ErrInvalid, "environment: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalid, "format %q (want text or json)", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return errors.Wrapf(ErrInvalid, "color %q (want auto, always or never)", c.Color)
	}
	if c.Settle < 0 {
		return errors.Wrapf(ErrInvalid, "settle %s is negative", c.Settle)
	}
	if c.SignalTimeout <= 0 {
		return errors.Wrapf(ErrInvalid, "signal timeout %s must be positive", c.SignalTimeout)
	}
	if c.GSettings == "" || c.Schema == "" || c.Key == "" {
		return errors.Wrap(ErrInvalid, "gsettings binary, schema and key must be set")
	}
	return nil
}
