package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("STORE", "")

	cfg, found, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "mongo", cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "usd", cfg.Currency)
}

func TestLoadFromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE=memory\nGATEWAY_TIMEOUT=5s\nWALLET_PREFILL=true\n"), 0o600))
	t.Setenv("JWT_SECRET", "s3cret")
	// godotenv never overrides variables that are already set, so clear
	// the ones the file provides.
	for _, k := range []string{"STORE", "GATEWAY_TIMEOUT", "WALLET_PREFILL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.True(t, cfg.WalletPrefill)
}

func TestLoadRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("JWT_SECRET", "")
	_, _, err := Load(missing)
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GATEWAY_TIMEOUT", "soon")
	_, _, err = Load(missing)
	assert.ErrorContains(t, err, "GATEWAY_TIMEOUT")

	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("STORE", "postgres")
	_, _, err = Load(missing)
	assert.ErrorContains(t, err, "STORE")
}
