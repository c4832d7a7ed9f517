package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Set some test environment variables
	if err := os.Setenv("SERVER_PORT", "9090"); err != nil {
		t.Fatalf("Failed to set SERVER_PORT: %v", err)
	}
	if err := os.Setenv("POSTGRES_HOST", "testhost"); err != nil {
		t.Fatalf("Failed to set POSTGRES_HOST: %v", err)
	}
	if err := os.Setenv("CACHE_TTL", "30s"); err != nil {
		t.Fatalf("Failed to set CACHE_TTL: %v", err)
	}
	if err := os.Setenv("SYNC_WINDOW_START", "2010-06-15"); err != nil {
		t.Fatalf("Failed to set SYNC_WINDOW_START: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("POSTGRES_HOST")
		_ = os.Unsetenv("CACHE_TTL")
		_ = os.Unsetenv("SYNC_WINDOW_START")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}

	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, 30*time.Second)
	}

	wantStart := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	if !cfg.Sync.WindowStart.Equal(wantStart) {
		t.Errorf("Sync.WindowStart = %v, want %v", cfg.Sync.WindowStart, wantStart)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Sync.MaxActivityPages != 10 {
		t.Errorf("Sync.MaxActivityPages = %v, want 10", cfg.Sync.MaxActivityPages)
	}
	if cfg.Sync.MaxCrownPages != 5 {
		t.Errorf("Sync.MaxCrownPages = %v, want 5", cfg.Sync.MaxCrownPages)
	}
	if cfg.Sync.PageSize != 100 {
		t.Errorf("Sync.PageSize = %v, want 100", cfg.Sync.PageSize)
	}
	if cfg.Sync.WindowEnd != time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Sync.WindowEnd = %v", cfg.Sync.WindowEnd)
	}
}

func TestLoadConfig_InvalidWindowDate(t *testing.T) {
	if err := os.Setenv("SYNC_WINDOW_START", "June 2010"); err != nil {
		t.Fatalf("Failed to set SYNC_WINDOW_START: %v", err)
	}
	defer func() { _ = os.Unsetenv("SYNC_WINDOW_START") }()

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected an error for a malformed window date")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_KEY_UNSET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				if err := os.Setenv(tt.key, tt.envValue); err != nil {
					t.Fatalf("Failed to set %s: %v", tt.key, err)
				}
				defer func() { _ = os.Unsetenv(tt.key) }()
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	if err := os.Setenv("TEST_DURATION", "250ms"); err != nil {
		t.Fatalf("Failed to set TEST_DURATION: %v", err)
	}
	defer func() { _ = os.Unsetenv("TEST_DURATION") }()

	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Errorf("getEnvAsDuration = %v, want 250ms", got)
	}
	if got := getEnvAsDuration("TEST_DURATION_UNSET", time.Second); got != time.Second {
		t.Errorf("getEnvAsDuration default = %v, want 1s", got)
	}
}
