package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sealedsession/pkg/seal"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestKeygen(t *testing.T) {
	t.Parallel()

	t.Run("default length", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "keygen")
		require.NoError(t, err)
		assert.Len(t, out, 48)

		_, err = seal.New([]string{out})
		assert.NoError(t, err, "generated password must be accepted by the sealer")
	})

	t.Run("custom length", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "keygen", "--length", "64")
		require.NoError(t, err)
		assert.Len(t, out, 64)
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()
		a, err := execute(t, "keygen")
		require.NoError(t, err)
		b, err := execute(t, "keygen")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "keygen", "-l", "16")
		assert.ErrorIs(t, err, errPasswordLength)
	})
}

func TestInspect(t *testing.T) {
	t.Parallel()

	token, err := seal.Seal(map[string]any{"userId": 7, "cart": []string{"A1"}}, testPassword, time.Hour)
	require.NoError(t, err)

	t.Run("prints payload", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "inspect", token, "--password", testPassword)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &payload))
		assert.Equal(t, float64(7), payload["userId"])
		assert.Equal(t, []any{"A1"}, payload["cart"])
	})

	t.Run("rotated password", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "inspect", token,
			"-p", "another-password-that-is-at-least-32-chars",
			"-p", testPassword,
		)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "inspect", token, "-p", "another-password-that-is-at-least-32-chars")
		assert.ErrorIs(t, err, seal.ErrDecryptionFailed)
	})

	t.Run("longer than ttl", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "inspect", token, "-p", testPassword, "--ttl", "1m")
		assert.ErrorIs(t, err, seal.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "inspect", "not-a-token", "-p", testPassword)
		assert.ErrorIs(t, err, seal.ErrInvalidToken)
	})

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "inspect", "-p", testPassword)
		assert.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sessiond dev")
}
