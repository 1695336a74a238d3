package db

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func LoadPostgresConfig() (PostgresConfig, error) {
	port := 5432
	if raw := os.Getenv("DB_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("invalid DB_PORT %q: %w", raw, err)
		}
		port = p
	}

	return PostgresConfig{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     port,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getenv("DB_NAME", "coupon_keeper"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
