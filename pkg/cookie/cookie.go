package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MaxSize is the largest serialized Set-Cookie value browsers reliably accept.
const MaxSize = 4096

// Manager builds, writes and reads cookies using a fixed set of default attributes.
// It is immutable after construction and safe for concurrent use.
type Manager struct {
	defaults Options
}

// New creates a Manager. Defaults are Path=/, HttpOnly and SameSite=Lax.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{defaults: applyOptions(defaults, opts)}
}

// Defaults returns a copy of the manager's default options.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Cookie builds a cookie from the manager defaults overridden by opts.
func (m *Manager) Cookie(name, value string, opts ...Option) *http.Cookie {
	options := applyOptions(m.defaults, opts)

	return &http.Cookie{
		Name:        name,
		Value:       value,
		Path:        options.Path,
		Domain:      options.Domain,
		MaxAge:      options.MaxAge,
		Secure:      options.Secure,
		HttpOnly:    options.HttpOnly,
		SameSite:    options.SameSite,
		Partitioned: options.Partitioned,
	}
}

// Expired builds a cookie that instructs the client to drop name.
func (m *Manager) Expired(name string, opts ...Option) *http.Cookie {
	c := m.Cookie(name, "", opts...)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

// Set validates and writes a cookie to the response.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	c := m.Cookie(name, value, opts...)
	if err := Validate(c); err != nil {
		return err
	}

	http.SetCookie(w, c)
	return nil
}

// Get reads the raw value of a request cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete writes an expired cookie for name.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.Expired(name))
}

// Validate reports whether c can be sent as a Set-Cookie header.
func Validate(c *http.Cookie) error {
	if err := c.Valid(); err != nil {
		return errors.Join(ErrInvalidCookie, err)
	}
	if size := len(c.String()); size > MaxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrCookieTooLarge, c.Name, size, MaxSize)
	}
	return nil
}
