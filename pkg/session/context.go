package session

import (
	"context"
	"sync"
)

type sessionContextKey struct{}

// requestState is the per-request session state installed in the context.
// The store is built on first use so requests that never touch the session
// skip unsealing entirely.
type requestState struct {
	manager *Manager
	jar     *Jar
	ctx     context.Context

	mu    sync.Mutex
	store *Store
}

func (st *requestState) getStore() *Store {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.store == nil {
		st.store = newStore(st.ctx, st.manager, st.jar)
	}
	return st.store
}

// loaded returns the store only if a handler already asked for it.
func (st *requestState) loaded() *Store {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.store
}

func withState(ctx context.Context, st *requestState) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, st)
}

func stateFromContext(ctx context.Context) (*requestState, bool) {
	st, ok := ctx.Value(sessionContextKey{}).(*requestState)
	return st, ok && st != nil
}

// FromContext returns the mutation tracked session of the request,
// loading it from the cookie on first call.
func FromContext(ctx context.Context) (*Store, bool) {
	st, ok := stateFromContext(ctx)
	if !ok {
		return nil, false
	}
	return st.getStore(), true
}

// MustFromContext returns the request session or panics
func MustFromContext(ctx context.Context) *Store {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return s
}

// JarFromContext returns the cookie jar of the request.
func JarFromContext(ctx context.Context) (*Jar, bool) {
	st, ok := stateFromContext(ctx)
	if !ok {
		return nil, false
	}
	return st.jar, true
}
