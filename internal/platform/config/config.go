// Package config loads process configuration from environment variables.
// A .env file, when present, is loaded by the binaries before FromEnv runs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "shareregistry/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Kafka    KafkaConfig
	Admin    AdminBootstrap
	Log      LogConfig

	// DeactivateAccountOnProfileDelete deactivates linked client logins when
	// their profile is deleted. Accounts are kept (not removed) either way.
	DeactivateAccountOnProfileDelete bool
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures Postgres. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the token revocation list. An empty URL selects the
// in-memory list.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	BcryptCost    int

	// Failed logins per identifier+IP before the pair is locked.
	LockoutAttempts int
	LockoutWindow   time.Duration
	LockoutDuration time.Duration
}

// SMTPConfig configures outbound mail. An empty Host logs messages instead of sending.
type SMTPConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	LoginURL        string
	SendTimeout     time.Duration
	BreakerFailures int
}

// KafkaConfig configures the audit event stream. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// AdminBootstrap creates the first admin account at startup when Password is set.
type AdminBootstrap struct {
	Username string
	Password string
	Email    string
}

type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("REGISTRY_ADDR", ":5000"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBool("DATABASE_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			// dev default; override in production
			JWTSigningKey: getEnv("JWT_SECRET", "dev-secret-key-change-in-production"),
			JWTIssuer:     getEnv("JWT_ISSUER", "share-registry"),
			TokenTTL:      getDuration("JWT_TTL", 7*24*time.Hour),
			BcryptCost:    getInt("BCRYPT_COST", 12),

			LockoutAttempts: getInt("LOGIN_MAX_ATTEMPTS", 5),
			LockoutWindow:   getDuration("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
			LockoutDuration: getDuration("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:            os.Getenv("SMTP_HOST"),
			Port:            getInt("SMTP_PORT", 587),
			Username:        os.Getenv("SMTP_USER"),
			Password:        os.Getenv("SMTP_PASS"),
			From:            getEnv("SMTP_FROM", "no-reply@sharemarket.local"),
			LoginURL:        getEnv("CLIENT_LOGIN_URL", "http://localhost:5173/login"),
			SendTimeout:     getDuration("SMTP_SEND_TIMEOUT", 20*time.Second),
			BreakerFailures: getInt("SMTP_BREAKER_FAILURES", 5),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.DedupeAndTrim(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "registry.audit"),
		},
		Admin: AdminBootstrap{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Email:    os.Getenv("ADMIN_EMAIL"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DeactivateAccountOnProfileDelete: getBool("DEACTIVATE_ACCOUNT_ON_PROFILE_DELETE", false),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
