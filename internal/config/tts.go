package config

import "github.com/caarlos0/env/v11"

type TTSConfig struct {
	// Disabled unless an API key is set.
	APIKey string `env:"TTS_API_KEY"`

	Endpoint     string  `env:"TTS_ENDPOINT" envDefault:"https://texttospeech.googleapis.com/v1/text:synthesize"`
	Voice        string  `env:"TTS_VOICE" envDefault:"en-US-Neural2-D"`
	VoiceRU      string  `env:"TTS_VOICE_RU" envDefault:"ru-RU-Wavenet-B"`
	SpeakingRate float64 `env:"TTS_SPEAKING_RATE" envDefault:"1.15"`
	TimeoutMS    int     `env:"TTS_TIMEOUT_MS" envDefault:"20000"`
}

func LoadTTS() (TTSConfig, error) {
	var cfg TTSConfig
	err := env.Parse(&cfg)
	return cfg, err
}
