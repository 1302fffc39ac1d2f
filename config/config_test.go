package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogValueRedactsSecrets(t *testing.T) {
	cfg := &Config{
		LogLevel: "debug",
		Postgres: Postgres{Host: "pg.local", Password: "pg-secret"},
		Redis:    Redis{Host: "redis.local", Password: "redis-secret"},
		API:      API{QuoteApi: QuoteApi{Url: "https://quotes.local", Token: "quote-secret"}},
		Telegram: Telegram{Token: "123:tg-secret", ChatID: 42},
	}

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("config", slog.Any("cfg", cfg))
	out := buf.String()

	for _, secret := range []string{"pg-secret", "redis-secret", "quote-secret", "tg-secret"} {
		assert.NotContains(t, out, secret)
	}
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "pg.local")
	assert.Contains(t, out, "https://quotes.local")

	require.Equal(t, "pg-secret", cfg.Postgres.Password, "the config itself is untouched")
	assert.Equal(t, "123:tg-secret", cfg.Telegram.Token)
}

func TestLogValueKeepsEmptySecretsEmpty(t *testing.T) {
	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("config", slog.Any("cfg", Config{}))
	assert.NotContains(t, buf.String(), redacted)
}
