package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cheertaboi/coupon-keeper/internal/expiry"
	"github.com/Cheertaboi/coupon-keeper/internal/monitor"
	"github.com/Cheertaboi/coupon-keeper/internal/service"
	"github.com/Cheertaboi/coupon-keeper/pkg/db"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	Port     string
	LogLevel string

	// Storage
	StorageBackend string
	Postgres       db.PostgresConfig
	RedisURL       string

	// Detection
	MonitorInterval     time.Duration
	MonitorAutoStart    bool
	ExpiringSoonDays    int
	MinIngestConfidence float64
}

// Load reads the environment, after loading .env if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pg, err := db.LoadPostgresConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StorageBackend:      strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		Postgres:            pg,
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		MonitorInterval:     getEnvDuration("MONITOR_INTERVAL", monitor.DefaultInterval),
		MonitorAutoStart:    getEnvBool("MONITOR_AUTOSTART", false),
		ExpiringSoonDays:    getEnvInt("EXPIRING_SOON_DAYS", expiry.DefaultExpiringSoonDays),
		MinIngestConfidence: getEnvFloat("AUTO_INGEST_MIN_CONFIDENCE", service.DefaultMinIngestConfidence),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive")
	}
	if c.ExpiringSoonDays <= 0 {
		return fmt.Errorf("EXPIRING_SOON_DAYS must be positive")
	}
	if c.MinIngestConfidence <= 0 || c.MinIngestConfidence > 1 {
		return fmt.Errorf("AUTO_INGEST_MIN_CONFIDENCE must be in (0, 1]")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
