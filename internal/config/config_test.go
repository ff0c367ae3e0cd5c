package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "STORE_ROOT", "TENANT_SCHEME",
		"ENVIRONMENT", "LOG_FORMAT", "SESSION_IDLE_TIMEOUT_MIN"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendFirebase, cfg.StoreBackend)
	assert.Equal(t, "units", cfg.StoreRoot)
	assert.Equal(t, "email", cfg.TenantScheme)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 240, cfg.SessionIdleTimeoutMin)
}

func TestLoadProductionUsesJSONLogs(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{StoreBackend: BackendMemory, StoreRoot: "units", TenantScheme: "email"}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.StoreBackend = BackendFirebase
	assert.EqualError(t, c.Validate(), "FIREBASE_CREDENTIALS_PATH is required")

	c = base()
	c.StoreBackend = BackendPostgres
	assert.EqualError(t, c.Validate(), "DATABASE_URL is required")

	c = base()
	c.TenantScheme = "cpf"
	assert.Error(t, c.Validate())

	c = base()
	c.StoreRoot = "a/b"
	assert.Error(t, c.Validate())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "yes")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", false))
	assert.Equal(t, "d", getEnvWithDefault("X_MISSING", "d"))
}
