package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "MONGODB_DB", "JWT_SECRET", "TOKEN_TTL_DAYS", "APP_ENV", "SMTP_HOST", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017/i_optika", cfg.MongoURI)
	assert.Equal(t, "i_optika", cfg.DBName)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.MailEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL_DAYS", "1")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SMTP_HOST", "smtp.mail.yahoo.com")
	t.Setenv("MAIL_FROM", "shop@example.com")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg := FromEnv()
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Production())
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
}

func TestGetDurationEnvIgnoresNonPositive(t *testing.T) {
	t.Setenv("TOKEN_TTL_DAYS", "-2")
	assert.Equal(t, 7*24*time.Hour, getDurationEnv("TOKEN_TTL_DAYS", 7, 24*time.Hour))

	t.Setenv("TOKEN_TTL_DAYS", "soon")
	assert.Equal(t, 7*24*time.Hour, getDurationEnv("TOKEN_TTL_DAYS", 7, 24*time.Hour))
}
