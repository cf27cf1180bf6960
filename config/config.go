// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server settings. Every field has an environment
// variable and a default, so a bare environment still boots.
type Config struct {
	// Server
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LLM
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	Model         string `env:"MODEL" envDefault:"gpt-4o-mini"`

	// Persistence. Backend is one of: memory, sqlite, redis, postgres.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	SqlitePath   string `env:"SQLITE_PATH" envDefault:"agentkit.db"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	PostgresURL  string `env:"POSTGRES_URL"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; explicit environment wins anyway.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
