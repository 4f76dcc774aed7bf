// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"API_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Document store. An empty URI selects the in-memory store.
	MongoURI  string `env:"MONGODB_URI"`
	MongoName string `env:"MONGODB_NAME" envDefault:"sanchari"`

	// Session key storage. An empty URL selects the in-memory key store.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"your-secret-key"`
	JWTExpiry int    `env:"JWT_EXPIRY" envDefault:"720"` // hours

	// Shared-secret gate
	AdminSecret          string `env:"ADMIN_SECRET" envDefault:"sanchari2026"`
	LoginOverrideEnabled bool   `env:"LOGIN_OVERRIDE_ENABLED" envDefault:"true"`
	LoginOverrideSecret  string `env:"LOGIN_OVERRIDE_SECRET" envDefault:"sanchari"`

	// Text generation
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	SeedOnStart    bool     `env:"SEED_ON_START" envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OverrideEnabled reports whether the universal login secret is accepted.
func (c *Config) OverrideEnabled() bool {
	return c.LoginOverrideEnabled && c.LoginOverrideSecret != ""
}
