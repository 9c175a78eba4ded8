package seal

import "time"

// Option configures a Sealer.
type Option func(*Sealer)

// WithTTL sets the lifetime stamped into new tokens and the maximum
// lifetime accepted when unsealing. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sealer) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithSkew sets the clock tolerance applied to token expiry.
func WithSkew(skew time.Duration) Option {
	return func(s *Sealer) {
		if skew >= 0 {
			s.skew = skew
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sealer) {
		if now != nil {
			s.now = now
		}
	}
}
