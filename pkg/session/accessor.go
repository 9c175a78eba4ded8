package session

import (
	"context"
	"reflect"
)

// Accessor reads and writes the session as a typed value. Nothing is cached:
// every Get unseals the current cookie value, staged or incoming.
type Accessor[T any] struct {
	manager *Manager
	jar     *Jar
}

// NewAccessor binds an accessor to a manager and a request jar.
func NewAccessor[T any](m *Manager, jar *Jar) *Accessor[T] {
	return &Accessor[T]{manager: m, jar: jar}
}

// Use returns an accessor for the request session installed by Manager.Middleware.
func Use[T any](ctx context.Context) (*Accessor[T], bool) {
	st, ok := stateFromContext(ctx)
	if !ok {
		return nil, false
	}
	return NewAccessor[T](st.manager, st.jar), true
}

// Get returns the session, or nil when the cookie is absent or cannot be
// unsealed.
func (a *Accessor[T]) Get(ctx context.Context) *T {
	raw, _ := a.jar.Get(a.manager.config.CookieName)

	v := new(T)
	if !a.manager.unseal(ctx, raw, v) {
		return nil
	}
	return v
}

// Update loads the session (a zero T when none), applies fn, seals the
// result and stages it as the response cookie. Seal and stage failures are
// returned. Get reflects the change once Update returns.
func (a *Accessor[T]) Update(ctx context.Context, fn func(*T)) error {
	v := a.Get(ctx)
	if v == nil {
		v = zeroValue[T]()
	}

	fn(v)

	token, err := a.manager.seal(v)
	if err != nil {
		return err
	}
	return a.jar.Stage(a.manager.sessionCookie(token))
}

// Destroy stages a deletion of the session cookie.
func (a *Accessor[T]) Destroy(_ context.Context) {
	_ = a.jar.Stage(a.manager.expiredCookie())
}

// zeroValue returns a new T with a top-level map allocated, so mutators
// can assign keys straight away.
func zeroValue[T any]() *T {
	v := new(T)
	if rv := reflect.ValueOf(v).Elem(); rv.Kind() == reflect.Map {
		rv.Set(reflect.MakeMap(rv.Type()))
	}
	return v
}
