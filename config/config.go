package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"postgresql://postgres@localhost:5432/hourslog"`
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"your-super-secret-key-change-in-production"`
	JWTExpiration    time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	ServerPort       string        `env:"SERVER_PORT" envDefault:"8080"`
	InviteExpiration time.Duration `env:"INVITE_EXPIRATION" envDefault:"168h"`
	// StoreTimeout bounds each request's database work so a stuck
	// connection surfaces as a retryable error instead of a hang.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"8s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
