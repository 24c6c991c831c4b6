package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("PostgresDSN = %q, want empty", cfg.PostgresDSN)
	}
	if cfg.StreamBufferSize != 500 {
		t.Fatalf("StreamBufferSize = %d, want 500", cfg.StreamBufferSize)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/mafia?sslmode=disable")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STREAM_BUFFER_SIZE", "64")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.StreamBufferSize != 64 {
		t.Fatalf("StreamBufferSize = %d, want 64", cfg.StreamBufferSize)
	}
}

func TestLoadAIDefaults(t *testing.T) {
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("AI_MODEL", "")

	cfg, err := LoadAI()
	if err != nil {
		t.Fatalf("LoadAI() error = %v", err)
	}
	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.TimeoutMS != 60000 {
		t.Fatalf("TimeoutMS = %d, want 60000", cfg.TimeoutMS)
	}
}

func TestLoadTTSDisabledWithoutKey(t *testing.T) {
	t.Setenv("TTS_API_KEY", "")

	cfg, err := LoadTTS()
	if err != nil {
		t.Fatalf("LoadTTS() error = %v", err)
	}
	if cfg.APIKey != "" {
		t.Fatalf("APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.SpeakingRate != 1.15 {
		t.Fatalf("SpeakingRate = %v, want 1.15", cfg.SpeakingRate)
	}
}
