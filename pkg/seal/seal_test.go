package seal_test

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sealedsession/pkg/seal"
)

const (
	password    = "this-is-a-very-long-password-32-chars-long"
	oldPassword = "this-is-old-very-long-password-32-chars-ok"
	otherPass   = "a-completely-different-password-of-32-chars"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		passwords []string
		wantErr   error
	}{
		{"no passwords", nil, seal.ErrNoPassword},
		{"empty passwords", []string{"", ""}, seal.ErrNoPassword},
		{"password too short", []string{"short"}, seal.ErrPasswordTooShort},
		{"rotation password too short", []string{password, "short"}, seal.ErrPasswordTooShort},
		{"valid password", []string{password}, nil},
		{"valid rotation", []string{password, oldPassword}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := seal.New(tt.passwords)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestNew_DoesNotModifyInput(t *testing.T) {
	t.Parallel()
	in := []string{"", password}
	_, err := seal.New(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"", password}, in)
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password}, seal.WithTTL(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   any
	}{
		{"empty object", map[string]any{}},
		{"flat object", map[string]any{"userId": 123, "isLoggedIn": true}},
		{"nested object", map[string]any{"user": map[string]any{"profile": map[string]any{"name": "John"}}}},
		{"arrays", map[string]any{"tags": []any{"a", "b", 3}}},
		{"unicode", map[string]any{"greeting": "Hello 世界 🌍"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := s.Seal(tt.in)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(token, "s1*"))

			var out map[string]any
			require.NoError(t, s.Unseal(token, &out))

			want, err := json.Marshal(tt.in)
			require.NoError(t, err)
			got, err := json.Marshal(out)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestSealUnseal_Struct(t *testing.T) {
	t.Parallel()
	type data struct {
		UserID     int  `json:"userId"`
		IsLoggedIn bool `json:"isLoggedIn"`
	}

	token, err := seal.Seal(data{UserID: 7, IsLoggedIn: true}, password, time.Hour)
	require.NoError(t, err)

	var out data
	require.NoError(t, seal.Unseal(token, password, time.Hour, &out))
	assert.Equal(t, data{UserID: 7, IsLoggedIn: true}, out)
}

func TestUnseal_PreservesIntegers(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password})
	require.NoError(t, err)

	token, err := s.Seal(map[string]any{"id": int64(9007199254740993)})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, s.Unseal(token, &out))
	assert.Equal(t, json.Number("9007199254740993"), out["id"])
}

func TestSealBytes_Empty(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password})
	require.NoError(t, err)

	token, err := s.SealBytes([]byte{})
	require.NoError(t, err)

	out, err := s.UnsealBytes(token)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSeal_UniqueTokens(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password})
	require.NoError(t, err)

	a, err := s.Seal(map[string]any{"a": 1})
	require.NoError(t, err)
	b, err := s.Seal(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "salt and nonce must differ per token")
}

func TestSeal_SerializeError(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password})
	require.NoError(t, err)

	_, err = s.Seal(map[string]any{"fn": func() {}})
	require.ErrorIs(t, err, seal.ErrSerialize)
}

func TestUnseal_KeyScoping(t *testing.T) {
	t.Parallel()
	token, err := seal.Seal(map[string]any{"a": 1}, password, time.Hour)
	require.NoError(t, err)

	var out map[string]any
	err = seal.Unseal(token, otherPass, time.Hour, &out)
	require.ErrorIs(t, err, seal.ErrDecryptionFailed)
	assert.Nil(t, out)
}

func TestUnseal_KeyRotation(t *testing.T) {
	t.Parallel()
	oldSealer, err := seal.New([]string{oldPassword})
	require.NoError(t, err)
	token, err := oldSealer.Seal(map[string]any{"a": "old"})
	require.NoError(t, err)

	rotated, err := seal.New([]string{password, oldPassword})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, rotated.Unseal(token, &out))
	assert.Equal(t, "old", out["a"])

	// New tokens are sealed with the first password only.
	fresh, err := rotated.Seal(map[string]any{"a": "new"})
	require.NoError(t, err)
	_, err = oldSealer.UnsealBytes(fresh)
	require.ErrorIs(t, err, seal.ErrDecryptionFailed)
}

func TestUnseal_Expiry(t *testing.T) {
	t.Parallel()
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := seal.New([]string{password},
		seal.WithTTL(time.Hour),
		seal.WithSkew(time.Minute),
		seal.WithClock(clock.Now),
	)
	require.NoError(t, err)

	token, err := s.Seal(map[string]any{"a": 1})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = s.UnsealBytes(token)
	require.NoError(t, err, "within skew tolerance")

	clock.Advance(2 * time.Minute)
	_, err = s.UnsealBytes(token)
	require.ErrorIs(t, err, seal.ErrExpired)
}

func TestUnseal_TTLEnforcement(t *testing.T) {
	t.Parallel()
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	noExpiry, err := seal.New([]string{password}, seal.WithClock(clock.Now))
	require.NoError(t, err)
	longLived, err := seal.New([]string{password}, seal.WithTTL(30*24*time.Hour), seal.WithClock(clock.Now))
	require.NoError(t, err)
	strict, err := seal.New([]string{password}, seal.WithTTL(time.Hour), seal.WithClock(clock.Now))
	require.NoError(t, err)

	t.Run("token without expiry is rejected by sealer with ttl", func(t *testing.T) {
		token, err := noExpiry.Seal(map[string]any{})
		require.NoError(t, err)
		_, err = strict.UnsealBytes(token)
		require.ErrorIs(t, err, seal.ErrExpired)

		_, err = noExpiry.UnsealBytes(token)
		require.NoError(t, err)
	})

	t.Run("token with longer lifetime is rejected", func(t *testing.T) {
		token, err := longLived.Seal(map[string]any{})
		require.NoError(t, err)
		_, err = strict.UnsealBytes(token)
		require.ErrorIs(t, err, seal.ErrExpired)
	})
}

func TestUnseal_InvalidTokens(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password}, seal.WithTTL(time.Hour))
	require.NoError(t, err)

	valid, err := s.Seal(map[string]any{"a": 1})
	require.NoError(t, err)
	parts := strings.Split(valid, "*")
	require.Len(t, parts, 4)

	tampered := []byte(parts[2])
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", seal.ErrInvalidToken},
		{"garbage", "invalid-data", seal.ErrInvalidToken},
		{"wrong prefix", strings.Replace(valid, "s1*", "s2*", 1), seal.ErrInvalidToken},
		{"bad salt", "s1*!!!*" + parts[2] + "*" + parts[3], seal.ErrInvalidToken},
		{"bad expiry", strings.Join([]string{parts[0], parts[1], parts[2], "soon"}, "*"), seal.ErrInvalidToken},
		{"short ciphertext", strings.Join([]string{parts[0], parts[1], "AAAA", parts[3]}, "*"), seal.ErrInvalidToken},
		{"tampered ciphertext", strings.Join([]string{parts[0], parts[1], string(tampered), parts[3]}, "*"), seal.ErrDecryptionFailed},
		{"extended expiry", strings.Join([]string{parts[0], parts[1], parts[2], parts[3] + "0"}, "*"), seal.ErrDecryptionFailed},
		{"stripped expiry", strings.Join([]string{parts[0], parts[1], parts[2], ""}, "*"), seal.ErrDecryptionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out map[string]any
			err := s.Unseal(tt.token, &out)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnseal_DeserializeError(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password})
	require.NoError(t, err)

	token, err := s.SealBytes([]byte("not json"))
	require.NoError(t, err)

	var out map[string]any
	require.ErrorIs(t, s.Unseal(token, &out), seal.ErrDeserialize)
}

func TestSealer_TTL(t *testing.T) {
	t.Parallel()
	s, err := seal.New([]string{password}, seal.WithTTL(time.Minute), seal.WithTTL(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.TTL(), "negative ttl is ignored")
}
