package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"slotbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Sessions   SessionConfig    `yaml:"sessions"`
	Google     GoogleConfig     `yaml:"google"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	HeaderAPIKey  string         `yaml:"header_api_key"`
	ServiceKeys   []APIClientKey `yaml:"service_keys"`
	SessionHeader string         `yaml:"session_header"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	// Timezone is the single reference zone for weekday derivation, slot
	// construction and the calendar side-call.
	Timezone string `yaml:"timezone"`
}

type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return models.DefaultSessionTTL
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type GoogleConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment may already be populated.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing, so secrets stay out of YAML.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.Timezone, err)
	}

	if c.Google.Enabled {
		if c.Google.CredentialsFile == "" {
			return errors.New("google credentials file is required when google is enabled")
		}
	}

	seen := make(map[string]bool, len(c.API.Auth.ServiceKeys))
	for _, k := range c.API.Auth.ServiceKeys {
		if k.Key == "" {
			return fmt.Errorf("service key %q has an empty key", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate service key found: %s", k.Name)
		}
		seen[k.Key] = true
	}

	return nil
}

// Location resolves the configured booking timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "slotbook"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.SessionHeader == "" {
		c.API.Auth.SessionHeader = "authorization"
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = models.DefaultTimezone
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = "primary"
	}
}
