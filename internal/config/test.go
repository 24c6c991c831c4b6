package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// TestConfig points store integration tests at a disposable database.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.TestPostgresDSN == "" {
		return cfg, errors.New("TEST_POSTGRES_DSN not set")
	}
	return cfg, nil
}
