package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: file-secret
alerts:
  channel_timeout: 5s
twilio:
  account_sid: AC123
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Second, cfg.Alerts.ChannelTimeout)
	assert.Equal(t, "AC123", cfg.Twilio.AccountSID)
	assert.Equal(t, "https://api.twilio.com", cfg.Twilio.BaseURL)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
}

func TestLoadConfig_SecretsOverlayFile(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: file-secret
twilio:
  auth_token: from-file
`)
	t.Setenv("CAREWATCH_JWT_SECRET", "env-secret")
	t.Setenv("CAREWATCH_TWILIO_AUTH_TOKEN", "env-token")
	t.Setenv("CAREWATCH_SERVICE_KEY", "svc")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-token", cfg.Twilio.AuthToken)
	assert.Equal(t, "svc", cfg.Server.ServiceKey)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CAREWATCH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Alerts.ChannelTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestConversions(t *testing.T) {
	redisCfg := RedisConfig{URL: "redis://r:6379/1", PoolSize: 4, ChannelPrefix: "cw:"}
	b := redisCfg.ToBrokerConfig()
	assert.Equal(t, "redis://r:6379/1", b.URL)
	assert.Equal(t, "cw:", b.ChannelPrefix)

	outbox := OutboxConfig{BatchSize: 10, PollInterval: time.Second, RetryAttempts: 2, RetryDelay: time.Minute}
	w := outbox.ToWorkerConfig()
	assert.Equal(t, 10, w.BatchSize)
	assert.Equal(t, time.Minute, w.RetryDelay)
}

func TestLoadConfig_NotesKey(t *testing.T) {
	t.Setenv("CAREWATCH_JWT_SECRET", "env-secret")

	t.Run("valid key", func(t *testing.T) {
		t.Setenv("CAREWATCH_NOTES_KEY", "000102030405060708090a0b0c0d0e0f")
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		key, err := cfg.Security.NotesKeyBytes()
		require.NoError(t, err)
		assert.Len(t, key, 16)
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Setenv("CAREWATCH_NOTES_KEY", "abcd")
		_, err := LoadConfig(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "security.notes_key")
	})

	t.Run("not hex", func(t *testing.T) {
		t.Setenv("CAREWATCH_NOTES_KEY", "not-hex")
		_, err := LoadConfig(t.TempDir())
		require.Error(t, err)
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "care", Password: "p@ss word", Name: "carewatch", SSLMode: "disable"}
	assert.Equal(t, "postgres://care:p%40ss%20word@db:5432/carewatch?sslmode=disable", cfg.DSN())
}
