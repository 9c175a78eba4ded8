package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sealedsession/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Debug("hidden")
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))

		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("unknown format is ignored", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat("xml"))

		log.Info("hello")
		assert.Equal(t, "hello", decode(t, buf)["msg"])
	})

	t.Run("level", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))

		log.Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("svc", "test")))

		log.Info("msg")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})
}

func TestWithContextExtractors(t *testing.T) {
	t.Parallel()

	type key struct{}
	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key{}).(string); ok {
			return slog.String("id", v), true
		}
		return slog.Attr{}, false
	}

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextExtractors(nil, extractor),
	).With(slog.String("component", "session"))

	log.InfoContext(context.WithValue(context.Background(), key{}, "42"), "with id")
	entry := decode(t, buf)
	assert.Equal(t, "42", entry["id"])
	assert.Equal(t, "session", entry["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "without id")
	assert.NotContains(t, decode(t, buf), "id")
}

func TestWithRedact(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithRedact("token", ""),
		logger.WithAttr(slog.String("token", "static-secret")),
	)

	log.Info("sealed",
		logger.Cookie("session"),
		logger.Group("cookie_value", slog.String("token", "s1*abc")),
	)

	out := buf.String()
	assert.NotContains(t, out, "static-secret")
	assert.NotContains(t, out, "s1*abc")
	assert.Contains(t, out, logger.Redacted)

	entry := decode(t, buf)
	assert.Equal(t, "session", entry["cookie"])
}

func TestWithRedact_ChainsReplaceAttr(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithHandlerOptions(&slog.HandlerOptions{
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		}),
		logger.WithRedact("password"),
	)

	log.Info("login", slog.String("password", "hunter2"))
	entry := decode(t, buf)
	assert.NotContains(t, entry, slog.TimeKey)
	assert.Equal(t, logger.Redacted, entry["password"])
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()
	tests := []struct {
		env      string
		wantEnv  string
		wantText bool
		debug    bool
	}{
		{env: logger.EnvDevelopment, wantEnv: logger.EnvDevelopment, wantText: true, debug: true},
		{env: "dev", wantEnv: logger.EnvDevelopment, wantText: true, debug: true},
		{env: "stage", wantEnv: logger.EnvStaging},
		{env: "prod", wantEnv: logger.EnvProduction},
		{env: "unknown", wantEnv: logger.EnvDevelopment, wantText: true, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "svc"), logger.WithOutput(buf))

			assert.Equal(t, tt.debug, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("msg")
			if tt.wantText {
				assert.Contains(t, buf.String(), "env="+tt.wantEnv)
				assert.Contains(t, buf.String(), "service=svc")
				return
			}
			entry := decode(t, buf)
			assert.Equal(t, tt.wantEnv, entry["env"])
			assert.Equal(t, "svc", entry["service"])
		})
	}
}

func TestSetAsDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decode(t, buf)["msg"])
}

func TestNop(t *testing.T) {
	t.Parallel()
	log := logger.Nop()
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	assert.NotPanics(t, func() {
		log.With("k", "v").WithGroup("g").Error("dropped")
	})
}
