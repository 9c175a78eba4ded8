package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sealedsession/pkg/cookie"
	"github.com/dmitrymomot/sealedsession/pkg/logger"
	"github.com/dmitrymomot/sealedsession/pkg/seal"
)

// Manager holds the immutable configuration shared by every request:
// the sealer, cookie attributes, logger and metrics sink.
type Manager struct {
	config        Config
	sealer        *seal.Sealer
	cookies       *cookie.Manager
	cookieOptions []cookie.Option
	logger        *slog.Logger
	metrics       Metrics
	errorHandler  ErrorHandler
	now           func() time.Time
}

// New creates a session manager sealing cookies with password.
func New(password string, opts ...Option) (*Manager, error) {
	m := &Manager{
		config:       DefaultConfig(),
		logger:       logger.Nop(),
		metrics:      noopMetrics{},
		errorHandler: defaultErrorHandler,
		now:          time.Now,
	}
	m.config.Password = password

	for _, opt := range opts {
		opt(m)
	}

	if m.config.TTL < 0 {
		return nil, errors.Join(ErrInvalidConfig, errors.New("ttl must not be negative"))
	}
	if m.config.CookieName == "" {
		m.config.CookieName = DefaultConfig().CookieName
	}
	if m.config.CommitTimeout <= 0 {
		m.config.CommitTimeout = DefaultConfig().CommitTimeout
	}

	sealer, err := seal.New(m.config.passwords(),
		seal.WithTTL(m.config.TTL),
		seal.WithClock(m.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	m.sealer = sealer

	base := []cookie.Option{
		cookie.WithPath(m.config.Path),
		cookie.WithDomain(m.config.Domain),
		cookie.WithSameSite(m.config.SameSite),
	}
	m.cookies = cookie.New(append(base, m.cookieOptions...)...)

	if err := cookie.Validate(m.sessionCookie("")); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return m, nil
}

// Config returns a copy of the manager configuration.
func (m *Manager) Config() Config {
	cfg := m.config
	cfg.PreviousPasswords = append([]string(nil), m.config.PreviousPasswords...)
	return cfg
}

// NewJar creates the per-request cookie jar for r.
func (m *Manager) NewJar(r *http.Request) *Jar {
	return NewJar(r, m.cookies)
}

// Snapshot decodes a raw cookie value into session data. An empty value or
// any unseal failure yields an empty object; the failure never reaches the caller.
func (m *Manager) Snapshot(ctx context.Context, raw string) map[string]any {
	var data map[string]any
	if !m.unseal(ctx, raw, &data) || data == nil {
		return make(map[string]any)
	}
	return data
}

// Load is Snapshot over the session cookie of r.
func (m *Manager) Load(r *http.Request) map[string]any {
	raw, _ := m.cookies.Get(r, m.config.CookieName)
	return m.Snapshot(r.Context(), raw)
}

// unseal reports whether raw held a valid token and decoded it into dst.
func (m *Manager) unseal(ctx context.Context, raw string, dst any) bool {
	if raw == "" {
		m.metrics.ObserveUnseal(UnsealAbsent)
		return false
	}

	if err := m.sealer.Unseal(raw, dst); err != nil {
		result := UnsealInvalid
		if errors.Is(err, seal.ErrExpired) {
			result = UnsealExpired
		}
		m.metrics.ObserveUnseal(result)
		m.logger.DebugContext(ctx, "session cookie rejected",
			logger.Component("session"),
			logger.Cookie(m.config.CookieName),
			logger.Error(err),
		)
		return false
	}

	m.metrics.ObserveUnseal(UnsealOK)
	return true
}

// seal JSON-encodes v and seals it.
func (m *Manager) seal(v any) (string, error) {
	start := time.Now()
	token, err := m.sealer.Seal(v)
	m.metrics.ObserveSeal(time.Since(start), err)
	if err != nil {
		if errors.Is(err, seal.ErrSerialize) {
			return "", errors.Join(ErrSerialize, err)
		}
		return "", errors.Join(ErrSealFailed, err)
	}
	return token, nil
}

// sealBytes seals an already encoded payload.
func (m *Manager) sealBytes(payload []byte) (string, error) {
	start := time.Now()
	token, err := m.sealer.SealBytes(payload)
	m.metrics.ObserveSeal(time.Since(start), err)
	if err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}
	return token, nil
}

// sessionCookie builds the outgoing session cookie. HttpOnly is always set,
// Max-Age and Secure always follow the session config.
func (m *Manager) sessionCookie(token string) *http.Cookie {
	return m.cookies.Cookie(m.config.CookieName, token,
		cookie.WithMaxAge(m.config.maxAge()),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(m.config.Secure),
	)
}

func (m *Manager) expiredCookie() *http.Cookie {
	return m.cookies.Expired(m.config.CookieName,
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(m.config.Secure),
	)
}
