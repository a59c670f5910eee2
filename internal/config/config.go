package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN 拼接连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config carekiosk（HTTP API + kiosk 状态机）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Kiosk struct {
		// CompletedBannerSeconds 完成画面停留秒数
		CompletedBannerSeconds int
		// TickInterval 调度器滴答间隔（秒），至少每分钟一次
		TickIntervalSeconds int
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5177")

	// Default to true; when the DB is unavailable carekiosk falls back to
	// in-memory repositories so the kiosk still works with plain `go run`.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "carekiosk")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Kiosk.CompletedBannerSeconds = parseInt(getEnv("KIOSK_BANNER_SECONDS", "5"), 5)
	cfg.Kiosk.TickIntervalSeconds = parseInt(getEnv("KIOSK_TICK_SECONDS", "60"), 60)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
