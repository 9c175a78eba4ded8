package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/sealedsession/pkg/logger"
)

// ErrorHandler writes the response for a request whose session could not be committed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Middleware installs the request session and gates the response on it:
// before the status line is written, the latest reseal is awaited and the
// staged cookies are added to the headers. A failed commit is handed to the
// ErrorHandler and the handler's own output is dropped.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = m.Begin(r)
		st, _ := stateFromContext(r.Context())

		gw := &gateWriter{ResponseWriter: w, manager: m, state: st, r: r}

		defer func() {
			if p := recover(); p != nil {
				if store := st.loaded(); store != nil {
					store.abandon(m.config.CommitTimeout)
				}
				st.jar.Discard()
				panic(p)
			}
		}()

		next.ServeHTTP(gw, r)
		gw.finish()
	})
}

// Begin installs per-request session state on r without wrapping the
// response. Callers that own the ResponseWriter must call Commit before
// writing the status line.
func (m *Manager) Begin(r *http.Request) *http.Request {
	if _, ok := stateFromContext(r.Context()); ok {
		return r
	}

	st := &requestState{
		manager: m,
		jar:     m.NewJar(r),
		ctx:     r.Context(),
	}
	return r.WithContext(withState(r.Context(), st))
}

// Commit awaits the pending reseal of the request session and writes the
// staged cookies to w. On failure nothing is written and the error is returned.
func (m *Manager) Commit(w http.ResponseWriter, r *http.Request) error {
	st, ok := stateFromContext(r.Context())
	if !ok {
		return nil
	}

	if err := m.commit(r.Context(), st); err != nil {
		st.jar.Discard()
		return err
	}
	st.jar.Flush(w)
	return nil
}

func (m *Manager) commit(ctx context.Context, st *requestState) error {
	store := st.loaded()
	if store == nil || !store.Pending() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.CommitTimeout)
	defer cancel()

	err := store.Commit(ctx)
	m.metrics.ObserveCommit(err)
	if err != nil {
		return errors.Join(ErrCommitFailed, err)
	}
	return nil
}

// gateWriter runs the commit once, right before the first byte of the
// response leaves the handler.
type gateWriter struct {
	http.ResponseWriter
	manager *Manager
	state   *requestState
	r       *http.Request

	gated       bool
	failed      bool
	wroteHeader bool
}

func (g *gateWriter) gate() bool {
	if g.gated {
		return !g.failed
	}
	g.gated = true

	if err := g.manager.commit(g.r.Context(), g.state); err != nil {
		g.failed = true
		g.state.jar.Discard()
		g.manager.logger.ErrorContext(g.r.Context(), "session commit failed",
			logger.Component("session"),
			logger.Error(err),
		)
		g.manager.errorHandler(g.ResponseWriter, g.r, err)
		return false
	}

	g.state.jar.Flush(g.ResponseWriter)
	return true
}

func (g *gateWriter) WriteHeader(code int) {
	// Informational responses carry no cookies and do not end the header phase.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		g.ResponseWriter.WriteHeader(code)
		return
	}

	if g.wroteHeader || !g.gate() {
		return
	}
	g.wroteHeader = true
	g.ResponseWriter.WriteHeader(code)
}

func (g *gateWriter) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	if g.failed {
		return 0, ErrCommitFailed
	}
	return g.ResponseWriter.Write(b)
}

func (g *gateWriter) Flush() {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	if g.failed {
		return
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (g *gateWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// finish runs after the handler returned. It commits if the handler wrote
// nothing, otherwise it reports session changes made after the headers
// were sent, which can no longer reach the client.
func (g *gateWriter) finish() {
	if !g.wroteHeader && !g.failed {
		g.WriteHeader(http.StatusOK)
		return
	}
	if g.failed {
		return
	}

	ctx := g.r.Context()
	if err := g.manager.commit(ctx, g.state); err != nil {
		g.manager.logger.ErrorContext(ctx, "late session reseal failed",
			logger.Component("session"),
			logger.Error(err),
		)
	}

	for _, name := range g.state.jar.Discard() {
		g.manager.logger.WarnContext(ctx, "session cookie staged after headers were sent",
			logger.Component("session"),
			logger.Cookie(name),
			logger.Error(ErrHeadersWritten),
		)
	}
}
