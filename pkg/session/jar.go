package session

import (
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrymomot/sealedsession/pkg/cookie"
)

// Jar is the per-request view of cookies: request values overlaid by the
// cookies staged for the response. Staged cookies reach the client on Flush.
type Jar struct {
	mu      sync.Mutex
	r       *http.Request
	cookies *cookie.Manager
	staged  map[string]*http.Cookie
	order   []string
}

// NewJar creates a jar reading from r and building cookies with cookies.
func NewJar(r *http.Request, cookies *cookie.Manager) *Jar {
	if cookies == nil {
		cookies = cookie.New()
	}
	return &Jar{
		r:       r,
		cookies: cookies,
		staged:  make(map[string]*http.Cookie),
	}
}

// Get returns the staged value of name, falling back to the request cookie.
// Staged deletions and empty values read as absent.
func (j *Jar) Get(name string) (string, bool) {
	j.mu.Lock()
	c, ok := j.staged[name]
	j.mu.Unlock()

	if ok {
		if c.MaxAge < 0 || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}

	if j.r == nil {
		return "", false
	}
	value, err := j.cookies.Get(j.r, name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// Set builds a cookie from the jar defaults and stages it.
func (j *Jar) Set(name, value string, opts ...cookie.Option) error {
	return j.Stage(j.cookies.Cookie(name, value, opts...))
}

// Stage validates c and queues it for the response, replacing any cookie
// staged earlier under the same name.
func (j *Jar) Stage(c *http.Cookie) error {
	if c == nil {
		return errors.Join(ErrStageFailed, cookie.ErrInvalidCookie)
	}
	if err := cookie.Validate(c); err != nil {
		return errors.Join(ErrStageFailed, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.staged[c.Name]; !ok {
		j.order = append(j.order, c.Name)
	}
	j.staged[c.Name] = c
	return nil
}

// Expire stages a deletion of name.
func (j *Jar) Expire(name string, opts ...cookie.Option) {
	_ = j.Stage(j.cookies.Expired(name, opts...))
}

// Staged reports whether any cookie waits to be flushed.
func (j *Jar) Staged() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.staged) > 0
}

// Flush writes every staged cookie to w in staging order and clears the queue.
func (j *Jar) Flush(w http.ResponseWriter) {
	for _, c := range j.drain() {
		http.SetCookie(w, c)
	}
}

// Discard drops staged cookies without writing them and returns their names.
func (j *Jar) Discard() []string {
	cookies := j.drain()
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names
}

func (j *Jar) drain() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*http.Cookie, 0, len(j.order))
	for _, name := range j.order {
		out = append(out, j.staged[name])
	}
	j.staged = make(map[string]*http.Cookie)
	j.order = nil
	return out
}
