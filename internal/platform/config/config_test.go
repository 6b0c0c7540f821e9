package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("DEACTIVATE_ACCOUNT_ON_PROFILE_DELETE", "")

	cfg := FromEnv()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.DeactivateAccountOnProfileDelete)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REGISTRY_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, broker-2:9092,broker-1:9092,")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("DEACTIVATE_ACCOUNT_ON_PROFILE_DELETE", "true")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_LOCKOUT_DURATION", "1h")

	cfg := FromEnv()

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.DeactivateAccountOnProfileDelete)
	assert.Equal(t, 587, cfg.SMTP.Port, "invalid values fall back to defaults")
	assert.Equal(t, 3, cfg.Auth.LockoutAttempts)
	assert.Equal(t, time.Hour, cfg.Auth.LockoutDuration)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow)
}
