package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkantrust/vidly/config"
)

var vars = []string{
	"PORT",
	"VIDLY_DB",
	"VIDLY_JWT_PRIVATE_KEY",
	"VIDLY_LOG_LEVEL",
	"VIDLY_LOG_FORMAT",
	"VIDLY_CORS_ORIGINS",
	"VIDLY_TOKEN_TTL",
	"VIDLY_BCRYPT_COST",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range vars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIDLY_DB", "mongodb://localhost:27017/vidly")
	t.Setenv("VIDLY_JWT_PRIVATE_KEY", "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "mongodb://localhost:27017/vidly", cfg.DatabaseURI)
	assert.Equal(t, "secret", cfg.JWTPrivateKey)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIDLY_DB", "bolt://vidly.db")
	t.Setenv("VIDLY_JWT_PRIVATE_KEY", "secret")
	t.Setenv("PORT", "5000")
	t.Setenv("VIDLY_CORS_ORIGINS", "http://localhost:3000;http://localhost:5173")
	t.Setenv("VIDLY_TOKEN_TTL", "24h")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadFailsWithoutRequiredSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no signing key", map[string]string{"VIDLY_DB": "bolt://vidly.db"}},
		{"no database", map[string]string{"VIDLY_JWT_PRIVATE_KEY": "secret"}},
		{"bad port", map[string]string{"VIDLY_DB": "bolt://vidly.db", "VIDLY_JWT_PRIVATE_KEY": "secret", "PORT": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "VIDLY_DB=bolt://from-file.db\nVIDLY_JWT_PRIVATE_KEY=file-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://from-file.db", cfg.DatabaseURI)
	assert.Equal(t, "file-secret", cfg.JWTPrivateKey)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err, "a missing env file is not an error")
}
