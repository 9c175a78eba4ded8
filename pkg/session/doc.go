// Package session keeps per-request session state in a sealed cookie.
// There is no server-side store and there are no session IDs: the cookie
// value is the session, encrypted and authenticated with pkg/seal and
// stamped with an expiry.
//
// Two access models are offered. Both share one Manager, which is built
// once from a Config and is safe for concurrent use.
//
// # Explicit accessor
//
// An Accessor reads the session as a typed value and writes it back through
// a mutator:
//
//	type Data struct {
//	    UserID     int  `json:"userId"`
//	    IsLoggedIn bool `json:"isLoggedIn"`
//	}
//
//	func login(w http.ResponseWriter, r *http.Request) {
//	    acc, _ := session.Use[Data](r.Context())
//	    if err := acc.Update(r.Context(), func(d *Data) {
//	        d.UserID = 123
//	        d.IsLoggedIn = true
//	    }); err != nil {
//	        http.Error(w, "session error", http.StatusInternalServerError)
//	        return
//	    }
//	}
//
// Get unseals the cookie on every call and returns nil when it is absent,
// expired or forged. Update returns seal failures to the caller.
//
// # Mutation tracked store
//
// A Store exposes the session as a live object graph. Every Set, Delete,
// Append or Remove is applied immediately, the whole graph is encoded at
// that moment and resealed in the background, and the resulting cookie is
// staged on the response:
//
//	s := session.MustFromContext(r.Context())
//	s.Set("userId", 123)
//	s.Object("user").Object("profile").Set("name", "John")
//
// Only the latest reseal is awaited. It always includes the effect of every
// earlier mutation because encoding happens synchronously with the change.
//
// # Commit gate
//
// Manager.Middleware wraps the ResponseWriter. Right before the status line
// is written, or when the handler returns, it commits the Store and adds the
// staged cookies to the response. A failed commit is logged and answered by
// the ErrorHandler (500 by default); the stale cookie is never sent. If the
// handler panics, the pending reseal is awaited in the background for
// CommitTimeout and its failure logged before the panic continues.
//
// Reads never fail: a missing, expired or tampered cookie degrades to an
// empty session. Writes fail loudly with ErrSerialize, ErrSealFailed or
// ErrStageFailed (for example a token above cookie.MaxSize).
//
// Mixing both models in one request works, but the Store snapshot is taken
// on first use, so accessor updates made after that are overwritten by the
// next Store mutation.
//
// # Configuration
//
// Config carries env tags for caarlos0/env. Password must be at least 32
// characters; PreviousPasswords keep older cookies readable during a key
// rotation.
//
//	var cfg session.Config
//	config.MustLoad(&cfg)
//	manager, err := session.NewFromConfig(cfg,
//	    session.WithLogger(log),
//	    session.WithMetrics(session.NewPrometheusMetrics()),
//	)
package session
