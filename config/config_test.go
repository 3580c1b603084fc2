package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "APP_ENV", "LOG_LEVEL", "HTTP_PORT", "DB_DRIVER", "DB_DSN", "JWT_SECRET",
	"CORS_ORIGINS", "LOCK_TIMEOUT", "MAX_TX_RETRIES", "PROMO_SWEEP_SCHEDULE", "TIMEZONE",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "WEBHOOK_URL", "OUTBOX_INTERVAL", "OUTBOX_BATCH",
}

// cleanEnv isolates Load from the developer's shell and any .env file.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_DefaultsWithRequiredValues(t *testing.T) {
	cleanEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DSN", "user:pass@tcp(localhost:3306)/amexan")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 3, cfg.MaxTxRetries)
	assert.Equal(t, "30 17 * * *", cfg.PromoSweepSchedule)
	assert.Equal(t, "order-events", cfg.KafkaTopic)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	cleanEnv(t)

	path := filepath.Join(t.TempDir(), "amexan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_env: production
db_driver: postgres
db_dsn: postgres://amexan@localhost/amexan
jwt_secret: from-file
lock_timeout: 2s
timezone: Africa/Nairobi
cors_origins:
  - https://shop.example.com
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Nairobi", loc.String())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"DB_DSN": "x"}},
		{name: "missing dsn", env: map[string]string{"JWT_SECRET": "s"}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "DB_DRIVER": "oracle"}},
		{name: "bad port", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "HTTP_PORT": "eighty"}},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "LOCK_TIMEOUT": "soon"}},
		{name: "zero lock timeout", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "LOCK_TIMEOUT": "0s"}},
		{name: "negative retries", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "MAX_TX_RETRIES": "-1"}},
		{name: "unknown timezone", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "TIMEZONE": "Mars/Olympus"}},
		{name: "missing config file", env: map[string]string{"JWT_SECRET": "s", "DB_DSN": "x", "CONFIG_FILE": "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
