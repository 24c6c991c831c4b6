package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mafia-table/internal/game"
)

// Postgres keeps games and their event logs in two tables. Events get
// a server-side sequence number so replay order is append order even
// when client timestamps collide.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{DB: db}, nil
}

func (s *Postgres) Close() error { return s.DB.Close() }

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// EnsureSchema creates the tables on startup if they are missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			ended_at TIMESTAMPTZ,
			players JSONB NOT NULL,
			host JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_events (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_events_game_seq ON game_events (game_id, seq)`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) CreateGame(ctx context.Context, meta game.Meta) error {
	players, err := json.Marshal(meta.Players)
	if err != nil {
		return err
	}
	host, err := json.Marshal(meta.Host)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO games (id, created_at, players, host) VALUES ($1, $2, $3, $4)`,
		meta.ID, meta.CreatedAt, players, host)
	return err
}

func scanGame(row interface{ Scan(...any) error }) (game.Meta, error) {
	var (
		m             game.Meta
		endedAt       sql.NullTime
		players, host []byte
	)
	if err := row.Scan(&m.ID, &m.CreatedAt, &endedAt, &players, &host); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Meta{}, ErrNotFound
		}
		return game.Meta{}, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		m.EndedAt = &t
	}
	if err := json.Unmarshal(players, &m.Players); err != nil {
		return game.Meta{}, fmt.Errorf("decode players: %w", err)
	}
	if err := json.Unmarshal(host, &m.Host); err != nil {
		return game.Meta{}, fmt.Errorf("decode host: %w", err)
	}
	return m, nil
}

func (s *Postgres) Game(ctx context.Context, id string) (game.Meta, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, created_at, ended_at, players, host FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (s *Postgres) ActiveGame(ctx context.Context) (game.Meta, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, created_at, ended_at, players, host FROM games
		 WHERE ended_at IS NULL ORDER BY created_at DESC LIMIT 1`)
	return scanGame(row)
}

func (s *Postgres) ListGames(ctx context.Context, limit int) ([]game.Meta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, created_at, ended_at, players, host FROM games
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Meta
	for rows.Next() {
		m, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// EndGame stamps ended_at once; ending an already ended game is a
// no-op so the operation can be retried.
func (s *Postgres) EndGame(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE games SET ended_at = now() WHERE id = $1 AND ended_at IS NULL`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := s.Game(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (s *Postgres) AppendEvent(ctx context.Context, gameID string, ev game.Event) error {
	meta, err := s.Game(ctx, gameID)
	if err != nil {
		return err
	}
	if meta.Ended() {
		return ErrGameEnded
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO game_events (id, game_id, type, kind, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, gameID, string(ev.Type), string(ev.Kind), payload, ev.CreatedAt)
	return err
}

func (s *Postgres) Events(ctx context.Context, gameID string) ([]game.Event, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, type, kind, payload, created_at FROM game_events
		 WHERE game_id = $1 ORDER BY seq ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Event
	for rows.Next() {
		var (
			ev      game.Event
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Kind, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &ev.Payload); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
