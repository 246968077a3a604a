package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://payment-gateway-7a7f.onrender.com", cfg.API.BaseURL)
	require.Equal(t, BackendFile, cfg.Session.Backend)
	require.Equal(t, "session.json", filepath.Base(cfg.Session.Path))
	require.Equal(t, "INR", cfg.Checkout.Currency)
	require.Equal(t, "+91", cfg.Auth.CountryCode)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PAYGATE_API_BASE_URL", "http://localhost:3000")
	t.Setenv("PAYGATE_SESSION_BACKEND", "redis")
	t.Setenv("PAYGATE_REDIS_DB", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	require.Equal(t, BackendRedis, cfg.Session.Backend)
	require.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "paygate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("checkout:\n  key: rzp_test_1\nlog:\n  development: true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "rzp_test_1", cfg.Checkout.Key)
	require.True(t, cfg.Log.Development)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PAYGATE_CHECKOUT_NAME=DotEnv Shop\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAYGATE_CHECKOUT_NAME") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "DotEnv Shop", cfg.Checkout.Name)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PAYGATE_SESSION_BACKEND", "cookie")

	_, err := Load("")
	require.EqualError(t, err, `unknown session backend "cookie"`)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
