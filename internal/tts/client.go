package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mafia-table/internal/config"
)

// MaxTextLen is the synthesis input cap.
const MaxTextLen = 4000

var cyrillicPattern = regexp.MustCompile(`(?i)[а-яё]`)

// PickLanguageCode guesses the narration language. Cyrillic text is
// assumed Russian, everything else English.
func PickLanguageCode(text string) string {
	if cyrillicPattern.MatchString(text) {
		return "ru-RU"
	}
	return "en-US"
}

type SpeakRequest struct {
	Text         string  `json:"text"`
	LanguageCode string  `json:"languageCode,omitempty"`
	VoiceName    string  `json:"voiceName,omitempty"`
	SpeakingRate float64 `json:"speakingRate,omitempty"`
	Pitch        float64 `json:"pitch,omitempty"`
	VolumeGainDb float64 `json:"volumeGainDb,omitempty"`
}

// Client calls the Google Cloud text:synthesize REST endpoint with an
// API key and returns MP3 bytes.
type Client struct {
	Endpoint     string
	APIKey       string
	Voice        string
	VoiceRU      string
	SpeakingRate float64
	HTTPClient   *http.Client
}

func NewClient(cfg config.TTSConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		Endpoint:     cfg.Endpoint,
		APIKey:       cfg.APIKey,
		Voice:        cfg.Voice,
		VoiceRU:      cfg.VoiceRU,
		SpeakingRate: cfg.SpeakingRate,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool { return c != nil && c.APIKey != "" }

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
		Pitch         float64 `json:"pitch,omitempty"`
		VolumeGainDb  float64 `json:"volumeGainDb,omitempty"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize renders the text to MP3. Empty and oversized inputs are
// rejected before any network call.
func (c *Client) Synthesize(ctx context.Context, req SpeakRequest) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errors.New("tts: text is required")
	}
	if len(text) > MaxTextLen {
		return nil, fmt.Errorf("tts: text is too long (max %d chars)", MaxTextLen)
	}
	if !c.Enabled() {
		return nil, errors.New("tts: api key not configured")
	}

	lang := strings.TrimSpace(req.LanguageCode)
	if lang == "" {
		lang = PickLanguageCode(text)
	}
	voice := strings.TrimSpace(req.VoiceName)
	if voice == "" {
		if lang == "ru-RU" {
			voice = c.VoiceRU
		} else {
			voice = c.Voice
		}
	}
	rate := req.SpeakingRate
	if rate == 0 {
		rate = c.SpeakingRate
	}

	var body synthesizeRequest
	body.Input.Text = text
	body.Voice.LanguageCode = lang
	body.Voice.Name = voice
	body.AudioConfig.AudioEncoding = "MP3"
	body.AudioConfig.SpeakingRate = rate
	body.AudioConfig.Pitch = req.Pitch
	body.AudioConfig.VolumeGainDb = req.VolumeGainDb

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := c.Endpoint + "?key=" + c.APIKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed synthesizeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("tts: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("tts: request failed code=%d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("tts: request failed code=%d", resp.StatusCode)
	}
	if parsed.AudioContent == "" {
		return nil, errors.New("tts: empty audioContent")
	}
	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio: %w", err)
	}
	return audio, nil
}
