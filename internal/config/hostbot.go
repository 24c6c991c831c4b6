package config

import "github.com/caarlos0/env/v11"

// HostBotConfig configures the automated host process that drives a
// game end to end against the server's HTTP API.
type HostBotConfig struct {
	ServerURL      string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	GameID         string `env:"GAME_ID"`
	PollIntervalMS int    `env:"POLL_INTERVAL_MS" envDefault:"500"`
	TurnTimeoutMS  int    `env:"TURN_TIMEOUT_MS" envDefault:"120000"`
}

func LoadHostBot() (HostBotConfig, error) {
	var cfg HostBotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
