package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":5177", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "carekiosk", cfg.Database.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Kiosk.CompletedBannerSeconds)
	assert.Equal(t, 60, cfg.Kiosk.TickIntervalSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("KIOSK_BANNER_SECONDS", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Kiosk.CompletedBannerSeconds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestDSN(t *testing.T) {
	c := &DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "carekiosk", SSLMode: "disable",
	}
	require.Equal(t,
		"host=db port=5432 user=u password=p dbname=carekiosk sslmode=disable",
		c.DSN())
}
