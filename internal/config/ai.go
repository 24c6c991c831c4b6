package config

import "github.com/caarlos0/env/v11"

// AIConfig drives the chat-completions client used for player and
// host turns. Any OpenAI-compatible endpoint works.
type AIConfig struct {
	BaseURL   string `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey    string `env:"AI_API_KEY"`
	Model     string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	TimeoutMS int    `env:"AI_TIMEOUT_MS" envDefault:"60000"`

	MaxRetries  int     `env:"AI_MAX_RETRIES" envDefault:"2"`
	Temperature float64 `env:"AI_TEMPERATURE" envDefault:"0.9"`
}

func LoadAI() (AIConfig, error) {
	var cfg AIConfig
	err := env.Parse(&cfg)
	return cfg, err
}
