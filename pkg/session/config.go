package session

import (
	"net/http"
	"time"
)

// Config holds session configuration
type Config struct {
	// Password seals new session cookies. Must be at least 32 characters.
	Password string `env:"SESSION_PASSWORD"`

	// PreviousPasswords are still accepted when reading cookies, enabling rotation.
	PreviousPasswords []string `env:"SESSION_PREVIOUS_PASSWORDS" envSeparator:","`

	// TTL is the lifetime of a sealed session and the cookie Max-Age (0 disables expiry).
	TTL time.Duration `env:"SESSION_TTL" envDefault:"336h"`

	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	Secure     bool          `env:"SESSION_SECURE" envDefault:"true"`
	Path       string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain     string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	SameSite   http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode

	// CommitTimeout bounds the background wait for a reseal left behind by a panicking handler.
	CommitTimeout time.Duration `env:"SESSION_COMMIT_TIMEOUT" envDefault:"5s"`
}

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 14 * 24 * time.Hour

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:           DefaultTTL,
		CookieName:    "session",
		Secure:        true,
		Path:          "/",
		SameSite:      http.SameSiteLaxMode,
		CommitTimeout: 5 * time.Second,
	}
}

// NewFromConfig creates a new Manager from the provided Config.
// Options are applied after the config, so they take precedence.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	return New(cfg.Password, append([]Option{WithConfig(cfg)}, opts...)...)
}

func (c Config) passwords() []string {
	return append([]string{c.Password}, c.PreviousPasswords...)
}

// maxAge is the cookie Max-Age in seconds. A zero TTL yields a browser-session cookie.
func (c Config) maxAge() int {
	return int(c.TTL / time.Second)
}
