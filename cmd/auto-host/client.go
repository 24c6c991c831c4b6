package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mafia-table/internal/ai"
	"mafia-table/internal/game"
)

// apiClient talks to the game server's HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, envelope.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *apiClient) Game(ctx context.Context, gameID string) (game.Meta, error) {
	var out struct {
		Game game.Meta `json:"game"`
	}
	err := c.do(ctx, http.MethodGet, "/game/"+gameID, nil, &out)
	return out.Game, err
}

func (c *apiClient) ActiveGame(ctx context.Context) (game.Meta, error) {
	var out struct {
		Game game.Meta `json:"game"`
	}
	err := c.do(ctx, http.MethodGet, "/game/active", nil, &out)
	return out.Game, err
}

func (c *apiClient) CreateGame(ctx context.Context, players []game.Player, host game.Host) (game.Meta, error) {
	var out struct {
		Game game.Meta `json:"game"`
	}
	in := map[string]any{"players": players, "host": host}
	err := c.do(ctx, http.MethodPost, "/game", in, &out)
	return out.Game, err
}

func (c *apiClient) Events(ctx context.Context, gameID string) ([]game.Event, error) {
	var out struct {
		Items []game.Event `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/game/"+gameID+"/events", nil, &out)
	return out.Items, err
}

func (c *apiClient) Append(ctx context.Context, gameID string, d game.Draft) (game.Event, error) {
	var out struct {
		Event game.Event `json:"event"`
	}
	err := c.do(ctx, http.MethodPost, "/game/"+gameID+"/events", d, &out)
	return out.Event, err
}

func (c *apiClient) EndGame(ctx context.Context, gameID string) error {
	return c.do(ctx, http.MethodPost, "/game/"+gameID+"/end", nil, nil)
}

func (c *apiClient) Act(ctx context.Context, gameID string, seat int, action ai.Action) (ai.Result, error) {
	var out ai.Result
	in := map[string]any{"gameId": gameID, "seatNumber": seat, "action": action}
	err := c.do(ctx, http.MethodPost, "/ai/act", in, &out)
	return out, err
}

// apiSink appends orchestrator decisions through the server API.
type apiSink struct {
	api    *apiClient
	gameID string
}

func (s *apiSink) Append(ctx context.Context, d game.Draft) (game.Event, error) {
	return s.api.Append(ctx, s.gameID, d)
}
