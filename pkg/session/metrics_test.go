package session_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sealedsession/pkg/session"
)

// counterValue returns the value of the counter name with the given label pair.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabel(metric, label, value) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	metrics := session.NewPrometheusMetrics(session.WithMetricsRegistry(reg))
	m := newManager(t, session.WithMetrics(metrics))

	rec := serve(m, func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("userId", 1)
	}, nil)
	c := sessionCookie(rec)
	require.NotNil(t, c)

	serve(m, func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Has("userId")
	}, c)
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Has("userId")
	}, &http.Cookie{Name: "session", Value: "garbage"})
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("ch", make(chan int))
	}, nil)

	assert.InDelta(t, 1, counterValue(t, reg, "session_seal_total", "status", "success"), 0)
	assert.InDelta(t, 2, counterValue(t, reg, "session_unseal_total", "result", "absent"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "session_unseal_total", "result", "ok"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "session_unseal_total", "result", "invalid"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "session_commit_total", "status", "success"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "session_commit_total", "status", "serialize_error"), 0)
}

func TestPrometheusMetrics_Options(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	metrics := session.NewPrometheusMetrics(
		session.WithMetricsRegistry(reg),
		session.WithMetricsNamespace("app"),
		session.WithMetricsSubsystem("auth"),
		session.WithMetricsConstLabels(prometheus.Labels{"service": "test"}),
		session.WithMetricsBuckets([]float64{0.001, 0.01}),
	)
	metrics.ObserveUnseal(session.UnsealExpired)
	metrics.ObserveCommit(session.ErrStageFailed)

	assert.InDelta(t, 1, counterValue(t, reg, "app_auth_unseal_total", "result", "expired"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "app_auth_commit_total", "status", "stage_error"), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			assert.True(t, hasLabel(metric, "service", "test"), mf.GetName())
		}
	}
}

func TestPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	session.NewPrometheusMetrics(session.WithMetricsRegistry(reg))

	assert.Panics(t, func() {
		session.NewPrometheusMetrics(session.WithMetricsRegistry(reg))
	})
}
