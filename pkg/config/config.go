package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBDriver         string
	DBConn           string
	LogLevel         string
	RulesFile        string
	HistoryRetention time.Duration
	PruneSchedule    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite3"),
		DBConn:        getEnv("DB_CONN", "paycalc.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RulesFile:     getEnv("RULES_FILE", ""),
		PruneSchedule: getEnv("PRUNE_SCHEDULE", "@daily"),
	}

	retention, err := time.ParseDuration(getEnv("HISTORY_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_RETENTION: %w", err)
	}
	cfg.HistoryRetention = retention

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", cfg.DBDriver)
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			return nil, fmt.Errorf("invalid PRUNE_SCHEDULE: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
