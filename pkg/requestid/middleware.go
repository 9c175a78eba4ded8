package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Option configures the request ID middleware.
type Option func(*options)

type options struct {
	header   string
	generate func() string
	trust    bool
}

// WithHeader sets the header carrying the request ID. Empty names are ignored.
func WithHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.header = name
		}
	}
}

// WithGenerator replaces the ID generator. Nil keeps the UUIDv7 default.
func WithGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.generate = fn
		}
	}
}

// WithTrustIncoming controls whether a valid client supplied ID is reused.
func WithTrustIncoming(trust bool) Option {
	return func(o *options) {
		o.trust = trust
	}
}

// New returns middleware that stores a request ID in the request context and
// echoes it in the response header.
func New(opts ...Option) func(http.Handler) http.Handler {
	o := options{
		header:   Header,
		generate: newID,
		trust:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(o.header)
			if !o.trust || !isValidRequestID(id) {
				id = o.generate()
			}
			w.Header().Set(o.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

// Middleware is New with default options.
func Middleware(next http.Handler) http.Handler {
	return New()(next)
}

// newID prefers time-ordered UUIDv7 so IDs sort by arrival in log storage.
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validID.MatchString(id)
}
