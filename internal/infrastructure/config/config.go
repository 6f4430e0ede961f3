package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Apps      AppsConfig
	Viewport  ViewportConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig holds persistent store configuration.
// An empty Path keeps state in memory only.
type StoreConfig struct {
	Path            string        `envconfig:"STORE_PATH" default:"/tmp/webtop/state.json"`
	Compress        bool          `envconfig:"STORE_COMPRESS" default:"false"`
	FlushInterval   time.Duration `envconfig:"STORE_FLUSH_INTERVAL" default:"250ms"`
	MaxFailures     int           `envconfig:"STORE_MAX_FAILURES" default:"3"`
	BreakerCooldown time.Duration `envconfig:"STORE_BREAKER_COOLDOWN" default:"30s"`
	// ReadOnly loads the state file into memory and never writes it back
	ReadOnly bool `envconfig:"STORE_READ_ONLY" default:"false"`
}

// AppsConfig holds app manifest configuration.
type AppsConfig struct {
	Dir   string `envconfig:"APPS_DIR" default:"./apps"`
	Watch bool   `envconfig:"APPS_WATCH" default:"false"`
}

// ViewportConfig holds the viewport assumed until the front end reports its own.
type ViewportConfig struct {
	Width         int `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	Height        int `envconfig:"VIEWPORT_HEIGHT" default:"800"`
	TaskbarHeight int `envconfig:"VIEWPORT_TASKBAR" default:"34"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Path:            "/tmp/webtop/state.json",
			FlushInterval:   250 * time.Millisecond,
			MaxFailures:     3,
			BreakerCooldown: 30 * time.Second,
		},
		Apps: AppsConfig{
			Dir: "./apps",
		},
		Viewport: ViewportConfig{
			Width:         1280,
			Height:        800,
			TaskbarHeight: 34,
		},
	}
}
