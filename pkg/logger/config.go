package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config holds logger configuration loaded from the environment.
type Config struct {
	Service string `env:"APP_NAME" envDefault:"sessiond"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// Level overrides the environment default: debug, info, warn or error.
	Level string `env:"LOG_LEVEL" envDefault:""`

	// Format overrides the environment default: json or text.
	Format string `env:"LOG_FORMAT" envDefault:""`

	// Redact lists attribute keys whose values are masked in every record.
	Redact []string `env:"LOG_REDACT" envSeparator:"," envDefault:"password,token"`
}

// DefaultConfig returns the development configuration.
func DefaultConfig() Config {
	return Config{
		Service: "sessiond",
		Env:     EnvDevelopment,
		Redact:  []string{"password", "token"},
	}
}

// NewFromConfig creates a logger from cfg. Explicit options are applied last.
// Invalid Level or Format values are reported as errors instead of panicking.
func NewFromConfig(cfg Config, opts ...Option) (*slog.Logger, error) {
	base := []Option{
		WithEnvironment(cfg.Env, cfg.Service),
		WithRedact(cfg.Redact...),
	}

	if cfg.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		base = append(base, WithLevel(level))
	}

	if cfg.Format != "" {
		switch f := Format(strings.ToLower(cfg.Format)); f {
		case FormatJSON, FormatText:
			base = append(base, WithFormat(f))
		default:
			return nil, fmt.Errorf("invalid log format %q: must be %q or %q", cfg.Format, FormatJSON, FormatText)
		}
	}

	return New(append(base, opts...)...), nil
}
