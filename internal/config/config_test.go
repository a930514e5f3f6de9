package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "geouser", cfg.AppName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:5000", cfg.Address())
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10, cfg.Hash.Rounds)
	assert.Equal(t, time.UTC, cfg.Clock.Location)
	assert.Equal(t, 5*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, "postgres://geouser:@localhost:5432/geouser?sslmode=disable", cfg.Database.URL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "*", cfg.CORS.Origin)
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", cfg.CORS.Methods)
	assert.Contains(t, cfg.CORS.Headers, "Authorization")
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Bolt")
	t.Setenv("JWT_TTL", "3600")
	t.Setenv("HASH_ROUNDS", "12")
	t.Setenv("WEEKDAY_TIMEZONE", "Local")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ORIGIN", "https://app.example.com")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverBolt, cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 12, cfg.Hash.Rounds)
	assert.Equal(t, time.Local, cfg.Clock.Location)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "https://app.example.com", cfg.CORS.Origin)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "cassandra"},
		{"unknown timezone", "WEEKDAY_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
		})
	}
}
