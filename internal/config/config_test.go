package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPayment(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "https://x402.org/facilitator")
	t.Setenv("EVM_ADDRESS", "0x209693Bc6afc0C5328bA36FaF03C514EF312287C")
	t.Setenv("SVM_ADDRESS", "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
}

func TestLoad_Defaults(t *testing.T) {
	setPayment(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "Todo x402 Demo", cfg.App.Name)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout.Duration())
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout.Duration())
	assert.Equal(t, "file://data/todos.json", cfg.Store.DSN)
	assert.False(t, cfg.Store.TolerateCorrupt)
	assert.False(t, cfg.Store.Watch)
	assert.Equal(t, int64(0), cfg.Cache.MaxBytes)
	assert.Equal(t, 30*time.Second, cfg.Payment.FacilitatorTimeout.Duration())
}

func TestLoad_Overrides(t *testing.T) {
	setPayment(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_READ_TIMEOUT", "15")
	t.Setenv("HTTP_WRITE_TIMEOUT", `"2m"`)
	t.Setenv("STORE_DSN", "memory://")
	t.Setenv("STORE_WATCH", "true")
	t.Setenv("CACHE_MAX_BYTES", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout.Duration())
	assert.Equal(t, 2*time.Minute, cfg.HTTP.WriteTimeout.Duration())
	assert.Equal(t, "memory://", cfg.Store.DSN)
	assert.True(t, cfg.Store.Watch)
	assert.Equal(t, int64(-1), cfg.Cache.MaxBytes)
}

func TestLoad_PaymentRequired(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "")
	t.Setenv("EVM_ADDRESS", "0x209693Bc6afc0C5328bA36FaF03C514EF312287C")
	t.Setenv("SVM_ADDRESS", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPaymentConfig))
	assert.Contains(t, err.Error(), "FACILITATOR_URL, SVM_ADDRESS")

	t.Setenv("PAYWALL_DISABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Payment.Disabled)
}

func TestLoad_DotEnv(t *testing.T) {
	setPayment(t)
	t.Setenv("HTTP_PORT", "7070")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP_NAME=From Dotenv\nHTTP_PORT=1111\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("APP_NAME") })

	cfg, err := Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)

	assert.Equal(t, "From Dotenv", cfg.App.Name)
	assert.Equal(t, ":7070", cfg.HTTP.Addr(), "the environment wins over dotenv")
}

func TestParseDuration(t *testing.T) {
	tt := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{in: "10", want: 10 * time.Second},
		{in: "10s", want: 10 * time.Second},
		{in: "5m", want: 5 * time.Minute},
		{in: "'1h'", want: time.Hour},
		{in: "", err: true},
		{in: "soon", err: true},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			d, err := parseDuration(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, d)
		})
	}
}

func TestDescribe(t *testing.T) {
	d := Describe()
	for _, env := range []string{"STORE_DSN", "FACILITATOR_URL", "CACHE_MAX_BYTES", "PAYWALL_DISABLED"} {
		assert.Contains(t, d, env)
	}
}
