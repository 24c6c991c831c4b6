package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mafia-table/internal/game"
)

// Memory is the fallback store used when no database is configured.
// Same semantics as Postgres, including idempotent appends, but the
// log is gone when the process exits.
type Memory struct {
	mu     sync.RWMutex
	games  map[string]game.Meta
	events map[string][]game.Event
	seen   map[string]bool // event ids across all games
}

func NewMemory() *Memory {
	return &Memory{
		games:  map[string]game.Meta{},
		events: map[string][]game.Event{},
		seen:   map[string]bool{},
	}
}

func (s *Memory) Close() error                 { return nil }
func (s *Memory) Ping(_ context.Context) error { return nil }

func (s *Memory) CreateGame(_ context.Context, meta game.Meta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[meta.ID] = meta
	return nil
}

func (s *Memory) Game(_ context.Context, id string) (game.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.games[id]
	if !ok {
		return game.Meta{}, ErrNotFound
	}
	return m, nil
}

func (s *Memory) ActiveGame(_ context.Context) (game.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		best  game.Meta
		found bool
	)
	for _, m := range s.games {
		if m.Ended() {
			continue
		}
		if !found || m.CreatedAt.After(best.CreatedAt) {
			best, found = m, true
		}
	}
	if !found {
		return game.Meta{}, ErrNotFound
	}
	return best, nil
}

func (s *Memory) ListGames(_ context.Context, limit int) ([]game.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game.Meta, 0, len(s.games))
	for _, m := range s.games {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) EndGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.games[id]
	if !ok {
		return ErrNotFound
	}
	if m.EndedAt == nil {
		now := time.Now().UTC()
		m.EndedAt = &now
		s.games[id] = m
	}
	return nil
}

func (s *Memory) AppendEvent(_ context.Context, gameID string, ev game.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.games[gameID]
	if !ok {
		return ErrNotFound
	}
	if m.Ended() {
		return ErrGameEnded
	}
	if s.seen[ev.ID] {
		return nil
	}
	s.seen[ev.ID] = true
	s.events[gameID] = append(s.events[gameID], ev)
	return nil
}

func (s *Memory) Events(_ context.Context, gameID string) ([]game.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	return append([]game.Event(nil), s.events[gameID]...), nil
}
