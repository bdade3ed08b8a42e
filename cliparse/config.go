// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Uploads  UploadsConfig  `koanf:"uploads"`
	CORS     CORSConfig     `koanf:"cors"`
	Sync     SyncConfig     `koanf:"sync"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`
}

type AuthConfig struct {
	// Secret signs bearer tokens (HS256).
	Secret string `koanf:"secret"`
	// LoginRateLimit is the number of /login and /get_token calls
	// allowed per client IP per minute. Zero disables the limit.
	LoginRateLimit int `koanf:"login_rate_limit"`
}

type UploadsConfig struct {
	Dir string `koanf:"dir"`
	// MaxSize is a human readable size such as "16MB".
	MaxSize           string   `koanf:"max_size"`
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

// MaxBytes returns MaxSize in bytes. Validate rejects unparsable sizes, so
// a zero here only happens on a config that skipped validation.
func (u UploadsConfig) MaxBytes() int64 {
	n, err := units.RAMInBytes(u.MaxSize)
	if err != nil {
		return 0
	}
	return n
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type SyncConfig struct {
	// Endpoint is the external ingestion URL photos are forwarded to.
	// Empty disables photo forwarding and the pending queue.
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
	// Rate caps outbound uploads per second.
	Rate  float64         `koanf:"rate"`
	OAuth SyncOAuthConfig `koanf:"oauth"`
}

// SyncOAuthConfig enables client-credentials auth against the ingestion
// endpoint when TokenURL is set.
type SyncOAuthConfig struct {
	TokenURL     string   `koanf:"token_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	Scopes       []string `koanf:"scopes"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const minSecretLen = 16

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			URL:    "work_records.db",
		},
		Auth: AuthConfig{
			LoginRateLimit: 20,
		},
		Uploads: UploadsConfig{
			Dir:               "uploads",
			MaxSize:           "16MB",
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Sync: SyncConfig{
			Timeout: 30 * time.Second,
			Rate:    5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks required values and normalizes a few fields in place.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database.url required")
	}

	if c.Auth.Secret == "" {
		return errors.New("auth.secret required (SITETIME_AUTH__SECRET or JWT_SECRET)")
	}
	if len(c.Auth.Secret) < minSecretLen {
		return fmt.Errorf("auth.secret must be at least %d characters", minSecretLen)
	}

	if c.Uploads.Dir == "" {
		return errors.New("uploads.dir required")
	}
	size, err := units.RAMInBytes(c.Uploads.MaxSize)
	if err != nil {
		return fmt.Errorf("uploads.max_size: %w", err)
	}
	if size <= 0 {
		return errors.New("uploads.max_size must be positive")
	}

	exts := make([]string, 0, len(c.Uploads.AllowedExtensions))
	for _, ext := range c.Uploads.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return errors.New("uploads.allowed_extensions must not be empty")
	}
	c.Uploads.AllowedExtensions = exts

	if c.Sync.Endpoint != "" && c.Sync.Rate <= 0 {
		return errors.New("sync.rate must be positive when sync.endpoint is set")
	}

	return nil
}
