package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sealedsession/pkg/httpserver"
	"github.com/dmitrymomot/sealedsession/pkg/logger"
	"github.com/dmitrymomot/sealedsession/pkg/requestid"
	"github.com/dmitrymomot/sealedsession/pkg/session"
)

// account is the typed session read and written through the accessor.
type account struct {
	UserID     int  `json:"userId"`
	IsLoggedIn bool `json:"isLoggedIn"`
}

type handlers struct {
	log *slog.Logger
}

func newRouter(m *session.Manager, log *slog.Logger, registry *prometheus.Registry) http.Handler {
	h := &handlers{log: log}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/livez", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(m.Middleware)

		r.Post("/login", h.login)
		r.Get("/me", h.me)
		r.Post("/logout", h.logout)

		r.Get("/counter", h.counter)
		r.Post("/counter", h.increment)
		r.Put("/preferences", h.preferences)
		r.Post("/cart", h.addToCart)
		r.Delete("/cart/{index}", h.removeFromCart)
		r.Delete("/session", h.destroy)
	})

	return r
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	acc, _ := session.Use[account](r.Context())
	if err := acc.Update(r.Context(), func(a *account) {
		a.UserID = req.UserID
		a.IsLoggedIn = true
	}); err != nil {
		h.log.ErrorContext(r.Context(), "login failed", logger.UserID(req.UserID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}

	writeJSON(w, http.StatusOK, acc.Get(r.Context()))
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	acc, _ := session.Use[account](r.Context())
	a := acc.Get(r.Context())
	if a == nil || !a.IsLoggedIn {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	acc, _ := session.Use[account](r.Context())
	acc.Destroy(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) counter(w http.ResponseWriter, r *http.Request) {
	n, _ := session.MustFromContext(r.Context()).GetInt("count")
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *handlers) increment(w http.ResponseWriter, r *http.Request) {
	s := session.MustFromContext(r.Context())
	n, _ := s.GetInt("count")
	s.Set("count", n+1)
	writeJSON(w, http.StatusOK, map[string]int64{"count": n + 1})
}

func (h *handlers) preferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences")
		return
	}

	node := session.MustFromContext(r.Context()).Object("preferences")
	for k, v := range prefs {
		node.Set(k, v)
	}
	writeJSON(w, http.StatusOK, node)
}

func (h *handlers) addToCart(w http.ResponseWriter, r *http.Request) {
	var item struct {
		SKU string `json:"sku"`
		Qty int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.SKU == "" {
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	}
	if item.Qty <= 0 {
		item.Qty = 1
	}

	cart := session.MustFromContext(r.Context()).List("cart")
	if err := cart.Append(item); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *handlers) removeFromCart(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	cart := session.MustFromContext(r.Context()).List("cart")
	if err := cart.Remove(index); err != nil {
		if errors.Is(err, session.ErrIndexOutOfRange) {
			writeError(w, http.StatusNotFound, "no such item")
			return
		}
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *handlers) destroy(w http.ResponseWriter, r *http.Request) {
	session.MustFromContext(r.Context()).Destroy()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
