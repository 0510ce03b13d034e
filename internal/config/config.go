// Package config loads service configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Generation GenerationConfig `yaml:"generation"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Retention  RetentionConfig  `yaml:"retention"`
	LogLevel   string           `yaml:"log_level"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	GoogleClientID string        `yaml:"google_client_id"`
	TokenInfoURL   string        `yaml:"token_info_url"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

type GenerationConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	URL           string `yaml:"url"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RetentionConfig struct {
	MaxAgeDays int    `yaml:"max_age_days"`
	Schedule   string `yaml:"schedule"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			TokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
			TokenTTL:     7 * 24 * time.Hour,
		},
		Generation: GenerationConfig{
			Timeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MigrationsDir: "migrations",
		},
		RateLimit: RateLimitConfig{
			Limit:  100,
			Window: time.Hour,
		},
		Webhook: WebhookConfig{
			Timeout: 5 * time.Second,
		},
		Retention: RetentionConfig{
			MaxAgeDays: 180,
			Schedule:   "0 4 * * *",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from path (if it exists) on top of defaults,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.RateLimit.Limit <= 0 {
		return nil, fmt.Errorf("rate_limit.limit must be positive, got %d", cfg.RateLimit.Limit)
	}
	if cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("rate_limit.window must be positive, got %s", cfg.RateLimit.Window)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GENERATION_URL"); v != "" {
		c.Generation.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
