package store

import (
	"context"
	"errors"

	"mafia-table/internal/game"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrGameEnded rejects appends to a finished game's log.
	ErrGameEnded = errors.New("game already ended")
)

// Store persists game metadata and the append-only event log.
// AppendEvent is idempotent by event id: re-delivery of an already
// stored event is a silent no-op, so retrying clients never duplicate
// log entries.
type Store interface {
	CreateGame(ctx context.Context, meta game.Meta) error
	Game(ctx context.Context, id string) (game.Meta, error)
	// ActiveGame returns the most recently created game that has not
	// ended, or ErrNotFound.
	ActiveGame(ctx context.Context) (game.Meta, error)
	ListGames(ctx context.Context, limit int) ([]game.Meta, error)
	EndGame(ctx context.Context, id string) error

	AppendEvent(ctx context.Context, gameID string, ev game.Event) error
	Events(ctx context.Context, gameID string) ([]game.Event, error)

	Ping(ctx context.Context) error
	Close() error
}
