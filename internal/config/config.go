// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath    = "config.toml"
	DefaultHTTPAddr      = ":8080"
	DefaultJWTExpiresIn  = "24h"
	DefaultPGHost        = "127.0.0.1"
	DefaultPGPort        = 5432
	DefaultPGUser        = "postgres"
	DefaultPGDatabase    = "simple"
	DefaultPGSSLMode     = "disable"
	DefaultLLMModel      = "gpt-4o-mini"
	DefaultLLMTimeout    = 15
	DefaultSyncBatchSize = 50
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Postgres  PostgresConfig  `toml:"postgres"`
	LLM       LLMConfig       `toml:"llm"`
	Directory DirectoryConfig `toml:"directory"`
	Sync      SyncConfig      `toml:"sync"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig holds JWT secret and token expiry (e.g. 24h).
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// ExpiresIn returns the parsed token lifetime, defaulting to 24h.
func (c AuthConfig) ExpiresIn() time.Duration {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// LLMConfig holds the OpenAI-compatible chat completion endpoint settings.
type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout for LLM calls.
func (c LLMConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultLLMTimeout
	}
	return time.Duration(seconds) * time.Second
}

// DirectoryConfig holds the external address-book service endpoint.
type DirectoryConfig struct {
	BaseURL        string `toml:"base_url"`
	AccessToken    string `toml:"access_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout for directory calls.
func (c DirectoryConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// SyncConfig holds directory reconciliation settings.
// Schedule is an optional cron pattern; empty disables periodic sync.
type SyncConfig struct {
	BatchSize int    `toml:"batch_size"`
	Schedule  string `toml:"schedule"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		LLM: LLMConfig{
			Model:          DefaultLLMModel,
			TimeoutSeconds: DefaultLLMTimeout,
		},
		Sync: SyncConfig{
			BatchSize: DefaultSyncBatchSize,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Missing config file is allowed; env and defaults apply.
		applyEnv(&cfg)
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = DefaultSyncBatchSize
	}
	return cfg, nil
}

// applyEnv overlays secret-bearing fields from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SIMPLE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SIMPLE_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SIMPLE_PG_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SIMPLE_DIRECTORY_TOKEN"); v != "" {
		cfg.Directory.AccessToken = v
	}
}
