package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs one JSON object per record, for log collectors.
	FormatJSON Format = "json"
	// FormatText outputs key=value lines for local development.
	FormatText Format = "text"
)

// Environment names recorded under the "env" attribute.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Redacted replaces the value of every attribute registered with WithRedact.
const Redacted = "[REDACTED]"

type preset struct {
	level  slog.Level
	format Format
}

var presets = map[string]preset{
	EnvDevelopment: {level: slog.LevelDebug, format: FormatText},
	EnvStaging:     {level: slog.LevelInfo, format: FormatJSON},
	EnvProduction:  {level: slog.LevelInfo, format: FormatJSON},
}

var envAliases = map[string]string{
	"dev":   EnvDevelopment,
	"stage": EnvStaging,
	"prod":  EnvProduction,
}

// Option configures logger creation.
type Option func(*config)

type config struct {
	level          slog.Level
	format         Format
	output         io.Writer
	attrs          []slog.Attr
	redact         map[string]struct{}
	handlerOptions *slog.HandlerOptions
	extractors     []ContextExtractor
}

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets the output format. Unknown formats are ignored;
// NewFromConfig reports them as errors.
func WithFormat(f Format) Option {
	return func(c *config) {
		if f == FormatJSON || f == FormatText {
			c.format = f
		}
	}
}

// WithOutput sets the destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithHandlerOptions replaces the slog handler options. The level set by
// WithLevel is ignored when these are given.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) {
		if opts != nil {
			c.handlerOptions = opts
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithRedact masks the values of attributes with the given keys, at any
// group depth. Use it for keys that may carry secrets, such as raw cookie
// values or passwords.
func WithRedact(keys ...string) Option {
	return func(c *config) {
		for _, k := range keys {
			if k == "" {
				continue
			}
			if c.redact == nil {
				c.redact = make(map[string]struct{})
			}
			c.redact[k] = struct{}{}
		}
	}
}

// WithContextExtractors registers functions that add attributes from the
// context of each record. Nil extractors are skipped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies the level and format preset of env and tags every
// record with service and env. Unknown environments fall back to development.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		if alias, ok := envAliases[env]; ok {
			env = alias
		}
		p, ok := presets[env]
		if !ok {
			env, p = EnvDevelopment, presets[EnvDevelopment]
		}

		c.level = p.level
		c.format = p.format
		c.attrs = append(c.attrs, slog.String("env", env))
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New creates a logger. Without options it writes JSON at info level to stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	if cfg.handlerOptions != nil {
		copied := *cfg.handlerOptions
		handlerOpts = &copied
	}
	if len(cfg.redact) > 0 {
		handlerOpts.ReplaceAttr = redactor(cfg.redact, handlerOpts.ReplaceAttr)
	}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}
	if len(cfg.extractors) > 0 {
		handler = &contextHandler{next: handler, extractors: cfg.extractors}
	}
	return slog.New(handler)
}

func redactor(keys map[string]struct{}, next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if _, ok := keys[a.Key]; ok {
			a.Value = slog.StringValue(Redacted)
		}
		if next != nil {
			return next(groups, a)
		}
		return a
	}
}
