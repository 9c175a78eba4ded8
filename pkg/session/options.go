package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sealedsession/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig replaces the whole configuration. The password passed to New
// is kept when cfg.Password is empty.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.Password == "" {
			cfg.Password = m.config.Password
		}
		m.config = cfg
	}
}

// WithTTL sets the session lifetime and cookie Max-Age
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.config.TTL = ttl
	}
}

// WithCookieName sets the session cookie name. Empty names are ignored.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.config.CookieName = name
		}
	}
}

// WithSecure sets the Secure attribute on the session cookie
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.config.Secure = secure
	}
}

// WithPreviousPasswords registers passwords accepted only for reading old cookies
func WithPreviousPasswords(passwords ...string) Option {
	return func(m *Manager) {
		m.config.PreviousPasswords = append(m.config.PreviousPasswords, passwords...)
	}
}

// WithCookieOptions adds cookie attributes such as domain or path.
// Max-Age, HttpOnly and Secure are always derived from the session config.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieOptions = append(m.cookieOptions, opts...)
	}
}

// WithCommitTimeout bounds the background wait for reseals abandoned by a panicking handler
func WithCommitTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.config.CommitTimeout = d
		}
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Nil keeps the no-op sink.
func WithMetrics(metrics Metrics) Option {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithErrorHandler sets the handler invoked when the commit gate fails.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithClock overrides the time source used for token expiry. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
