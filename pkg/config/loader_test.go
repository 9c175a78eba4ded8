package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sealedsession/pkg/config"
)

type defaultsConfig struct {
	CookieName string        `env:"CFG_TEST_COOKIE_NAME" envDefault:"session"`
	TTL        time.Duration `env:"CFG_TEST_TTL" envDefault:"336h"`
	Secure     bool          `env:"CFG_TEST_SECURE" envDefault:"true"`
}

type envConfig struct {
	Password  string   `env:"CFG_TEST_PASSWORD"`
	Previous  []string `env:"CFG_TEST_PREVIOUS" envSeparator:","`
	MaxAge    int      `env:"CFG_TEST_MAX_AGE"`
	Overrides string   `env:"CFG_TEST_OVERRIDE"`
}

type singletonConfig struct {
	Value string `env:"CFG_TEST_SINGLETON" envDefault:"default"`
}

type requiredConfig struct {
	Required string `env:"CFG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Name     string `env:"CFG_FILE_NAME"`
	Priority string `env:"CFG_FILE_PRIORITY"`
	Unique   string `env:"CFG_FILE_UNIQUE"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "CFG_TEST_COOKIE_NAME", "CFG_TEST_TTL", "CFG_TEST_SECURE")
	config.ResetCache()

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "session", cfg.CookieName)
	assert.Equal(t, 14*24*time.Hour, cfg.TTL)
	assert.True(t, cfg.Secure)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFG_TEST_PASSWORD", "a-very-long-password-with-32-chars!")
	t.Setenv("CFG_TEST_PREVIOUS", "old-one,old-two")
	t.Setenv("CFG_TEST_MAX_AGE", "3600")
	config.ResetCache()

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "a-very-long-password-with-32-chars!", cfg.Password)
	assert.Equal(t, []string{"old-one", "old-two"}, cfg.Previous)
	assert.Equal(t, 3600, cfg.MaxAge)
}

func TestLoad_Cached(t *testing.T) {
	t.Setenv("CFG_TEST_SINGLETON", "first")
	config.ResetCache()

	var first singletonConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_SINGLETON", "second")

	var second singletonConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	var reloaded singletonConfig
	require.NoError(t, config.ForceReloadConfig(&reloaded))
	assert.Equal(t, "second", reloaded.Value)
}

func TestLoad_MissingRequired(t *testing.T) {
	unsetenv(t, "CFG_TEST_REQUIRED")
	config.ResetCache()

	var cfg requiredConfig
	require.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)

	// A failed parse is not cached.
	t.Setenv("CFG_TEST_REQUIRED", "present")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "present", cfg.Required)
}

func TestLoad_InvalidTarget(t *testing.T) {
	var nilCfg *defaultsConfig
	require.ErrorIs(t, config.Load(nilCfg), config.ErrNilPointer)

	var notStruct string
	require.ErrorIs(t, config.Load(&notStruct), config.ErrInvalidConfigType)
}

func TestMustLoad(t *testing.T) {
	unsetenv(t, "CFG_TEST_REQUIRED")
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
	assert.NotPanics(t, func() {
		var cfg defaultsConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	unsetenv(t, "CFG_FILE_NAME", "CFG_FILE_PRIORITY", "CFG_FILE_UNIQUE")
	config.ResetCache()

	base := writeEnvFile(t, "CFG_FILE_NAME=base\nCFG_FILE_PRIORITY=base\n")
	override := writeEnvFile(t, "CFG_FILE_PRIORITY=override\nCFG_FILE_UNIQUE=\"quoted value\"\n")

	require.NoError(t, config.LoadEnv(base, override))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "base", cfg.Name)
	assert.Equal(t, "override", cfg.Priority)
	assert.Equal(t, "quoted value", cfg.Unique)
}

func TestLoadEnv_ProcessEnvironmentWins(t *testing.T) {
	t.Setenv("CFG_TEST_OVERRIDE", "from-process")
	config.ResetCache()

	path := writeEnvFile(t, "CFG_TEST_OVERRIDE=from-file\n")
	require.NoError(t, config.LoadEnv(path))

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-process", cfg.Overrides)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)

	assert.Panics(t, func() {
		config.MustLoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}
