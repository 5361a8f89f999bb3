// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Env          string `env:"ENV" envDefault:"development"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/typehack.db"`
	SaveDir      string `env:"SAVE_DIR" envDefault:"./data/saves"`
	KeywordsDir  string `env:"KEYWORDS_DIR"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"typehack_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	MissionSeconds int           `env:"MISSION_SECONDS" envDefault:"60"`
	RunTTL         time.Duration `env:"RUN_TTL" envDefault:"2h"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// Production reports whether cookies should be marked Secure.
func (c Config) Production() bool { return c.Env == "production" }

// MissionTime is the allotted time per mission.
func (c Config) MissionTime() time.Duration {
	return time.Duration(c.MissionSeconds) * time.Second
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MissionSeconds <= 0 {
		return Config{}, fmt.Errorf("MISSION_SECONDS must be positive, got %d", cfg.MissionSeconds)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
