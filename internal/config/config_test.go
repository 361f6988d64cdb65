package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		DataBackend:     "sqlite",
		DataFilePath:    "./expenses.json",
		SQLiteDBPath:    "./test.db",
		SlotName:        "expenses_json",
		Timezone:        "Local",
		LogLevel:        "info",
		LogFormat:       "text",
		ReportCacheTTL:  5 * time.Minute,
		ReportCacheSize: 128,
		RateLimitRPM:    60,
		ShutdownTimeout: 30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid memory backend config",
			mutate:  func(c *Config) { c.DataBackend = "memory"; c.SQLiteDBPath = "" },
			wantErr: false,
		},
		{
			name:    "valid file backend config",
			mutate:  func(c *Config) { c.DataBackend = "file" },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory file sqlite]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "file backend missing path",
			mutate:      func(c *Config) { c.DataBackend = "file"; c.DataFilePath = "" },
			wantErr:     true,
			errorString: "data file path cannot be empty when using file backend",
		},
		{
			name:        "empty slot name",
			mutate:      func(c *Config) { c.SlotName = "  " },
			wantErr:     true,
			errorString: "slot name cannot be empty",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml': must be text or json",
		},
		{
			name:        "report cache TTL too short",
			mutate:      func(c *Config) { c.ReportCacheTTL = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid report cache TTL 500ms: must be at least 1 second",
		},
		{
			name:        "report cache size too small",
			mutate:      func(c *Config) { c.ReportCacheSize = 0 },
			wantErr:     true,
			errorString: "invalid report cache size 0: must be at least 1",
		},
		{
			name:        "report cache size too large",
			mutate:      func(c *Config) { c.ReportCacheSize = 20000 },
			wantErr:     true,
			errorString: "invalid report cache size 20000: must be at most 10000",
		},
		{
			name:        "rate limit too small",
			mutate:      func(c *Config) { c.RateLimitRPM = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr:     true,
			errorString: "invalid shutdown timeout 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid port", "invalid log format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestConfig_ValidateCreatesDataDirectory(t *testing.T) {
	cfg := validConfig()
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "nested", "expenses.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() error = %v", err)
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := validConfig()
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("expected time.Local, got %v err=%v", loc, err)
	}

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v err=%v", loc, err)
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "DATA_FILE_PATH", "SLOT_NAME",
		"REPORT_CACHE_TTL", "REPORT_CACHE_SIZE", "RATE_LIMIT_RPM", "SHUTDOWN_TIMEOUT",
	}

	t.Run("default values", func(t *testing.T) {
		for _, k := range keys {
			t.Setenv(k, "")
		}
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/expenses.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/expenses.db", cfg.SQLiteDBPath)
		}
		if cfg.SlotName != "expenses_json" {
			t.Errorf("Load() SlotName = %v, want expenses_json", cfg.SlotName)
		}
		if cfg.ReportCacheTTL != 5*time.Minute {
			t.Errorf("Load() ReportCacheTTL = %v, want 5m", cfg.ReportCacheTTL)
		}
		if cfg.ReportCacheSize != 128 {
			t.Errorf("Load() ReportCacheSize = %v, want 128", cfg.ReportCacheSize)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "file")
		t.Setenv("DATA_FILE_PATH", "/tmp/test.json")
		t.Setenv("REPORT_CACHE_SIZE", "25")
		t.Setenv("SHUTDOWN_TIMEOUT", "45s")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "file" {
			t.Errorf("Load() DataBackend = %v, want file", cfg.DataBackend)
		}
		if cfg.DataFilePath != "/tmp/test.json" {
			t.Errorf("Load() DataFilePath = %v, want /tmp/test.json", cfg.DataFilePath)
		}
		if cfg.ReportCacheSize != 25 {
			t.Errorf("Load() ReportCacheSize = %v, want 25", cfg.ReportCacheSize)
		}
		if cfg.ShutdownTimeout != 45*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("REPORT_CACHE_SIZE", "invalid")
		t.Setenv("REPORT_CACHE_TTL", "invalid")

		cfg := Load()

		if cfg.ReportCacheSize != 128 {
			t.Errorf("Load() ReportCacheSize = %v, want 128 (default for invalid input)", cfg.ReportCacheSize)
		}
		if cfg.ReportCacheTTL != 5*time.Minute {
			t.Errorf("Load() ReportCacheTTL = %v, want 5m (default for invalid input)", cfg.ReportCacheTTL)
		}
	})
}
