package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mafia-table/internal/config"
)

// Completer is the model call surface; tests substitute a fake.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	Temperature float64
}

func NewClient(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:      cfg.APIKey,
		HTTPClient:  &http.Client{Timeout: timeout},
		Temperature: cfg.Temperature,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, model, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("ai: api key not configured")
	}
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", err
	}

	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("ai: upstream %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("ai: upstream status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("ai: empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}
