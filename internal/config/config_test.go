package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"slotbook/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "slotbook-test"
database:
  path: "test.db"
booking:
  timezone: "Asia/Kolkata"
sessions:
  ttl_hours: 12
api:
  auth:
    service_keys:
      - key: "k1"
        name: "backend"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "slotbook-test" {
		t.Errorf("expected app name slotbook-test, got %s", cfg.App.Name)
	}
	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.Sessions.TTL() != 12*time.Hour {
		t.Errorf("expected 12h session ttl, got %s", cfg.Sessions.TTL())
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.API.HTTP.Port)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SLOTBOOK_TEST_KEY", "secret-key")

	yamlContent := `
database:
  path: "test.db"
api:
  auth:
    service_keys:
      - key: "${SLOTBOOK_TEST_KEY}"
        name: "backend"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.API.Auth.ServiceKeys[0].Key != "secret-key" {
		t.Errorf("expected env-expanded key, got %s", cfg.API.Auth.ServiceKeys[0].Key)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{Timezone: "Asia/Kolkata"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Booking: BookingConfig{Timezone: "Asia/Kolkata"},
			},
			wantErr: true,
		},
		{
			name: "invalid timezone",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{Timezone: "Mars/Olympus"},
			},
			wantErr: true,
		},
		{
			name: "google enabled without credentials",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{Timezone: "UTC"},
				Google:   GoogleConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "duplicate service keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{Timezone: "UTC"},
				API: APIConfig{Auth: APIAuthConfig{ServiceKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.Booking.Timezone != models.DefaultTimezone {
		t.Errorf("expected default timezone %s, got %s", models.DefaultTimezone, cfg.Booking.Timezone)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Google.CalendarID != "primary" {
		t.Errorf("expected default calendar id primary, got %s", cfg.Google.CalendarID)
	}
	if cfg.Sessions.TTL() != models.DefaultSessionTTL {
		t.Errorf("expected default session ttl, got %s", cfg.Sessions.TTL())
	}
}
