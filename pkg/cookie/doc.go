// Package cookie builds, writes and reads HTTP cookies with a shared set of
// default attributes.
//
// The Manager holds defaults (Path=/, HttpOnly, SameSite=Lax unless
// overridden) and produces *http.Cookie values through Cookie and Expired.
// Set validates the cookie before writing it: invalid names or values yield
// ErrInvalidCookie, and cookies whose serialized form exceeds MaxSize yield
// ErrCookieTooLarge, so oversized values fail loudly instead of being
// silently dropped by browsers.
//
// # Usage
//
//	man := cookie.New(cookie.WithSecure(true))
//
//	http.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
//	    _ = man.Set(w, "theme", "dark", cookie.WithMaxAge(3600))
//	})
//
//	http.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
//	    theme, err := man.Get(r, "theme")
//	    if errors.Is(err, cookie.ErrCookieNotFound) {
//	        theme = "light"
//	    }
//	    _ = theme
//	})
//
// # Configuration
//
// Config can be populated from the environment via github.com/caarlos0/env
// and turned into a Manager with NewFromConfig.
//
// Encryption and signing are not handled here; see package seal for sealed
// values that are safe to store in a cookie.
package cookie
