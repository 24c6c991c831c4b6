package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	// PostgresDSN is optional: without it the server runs on the
	// in-memory store and games do not survive a restart.
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	StreamBufferSize int `env:"STREAM_BUFFER_SIZE" envDefault:"500"`
	EventMaxBytes    int `env:"EVENT_MAX_BYTES" envDefault:"65536"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
