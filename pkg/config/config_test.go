package config

import (
	"os"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_CONN", "LOG_LEVEL", "RULES_FILE", "HISTORY_RETENTION", "PRUNE_SCHEDULE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.HistoryRetention != 720*time.Hour {
		t.Errorf("Expected retention 720h, got %s", cfg.HistoryRetention)
	}
	if cfg.DBDriver != "sqlite3" {
		t.Errorf("Expected driver sqlite3, got %s", cfg.DBDriver)
	}
	if cfg.Port != "8080" || cfg.DBConn != "paycalc.db" || cfg.PruneSchedule != "@daily" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.RulesFile != "" {
		t.Errorf("Expected no rules file, got %s", cfg.RulesFile)
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_CONN", "host=localhost dbname=paycalc sslmode=disable")
	t.Setenv("HISTORY_RETENTION", "24h")
	t.Setenv("PRUNE_SCHEDULE", "0 3 * * *")
	t.Setenv("RULES_FILE", "rules.toml")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("Expected driver postgres, got %s", cfg.DBDriver)
	}
	if cfg.HistoryRetention != 24*time.Hour {
		t.Errorf("Expected retention 24h, got %s", cfg.HistoryRetention)
	}
	if cfg.RulesFile != "rules.toml" {
		t.Errorf("Expected rules file rules.toml, got %s", cfg.RulesFile)
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad retention", "HISTORY_RETENTION", "a month"},
		{"bad driver", "DB_DRIVER", "mysql"},
		{"empty connection", "DB_CONN", ""},
		{"bad schedule", "PRUNE_SCHEDULE", "every tuesday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", "sqlite3")
			t.Setenv("DB_CONN", "paycalc.db")
			t.Setenv("HISTORY_RETENTION", "720h")
			t.Setenv("PRUNE_SCHEDULE", "@daily")
			t.Setenv(tt.key, tt.value)

			if _, err := NewConfig(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
