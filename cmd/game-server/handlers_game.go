package main

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"mafia-table/internal/game"
	"mafia-table/internal/store"
	"mafia-table/internal/stream"
)

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
}

type createGameRequest struct {
	Players []struct {
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
		Profile  string `json:"profile"`
	} `json:"players"`
	Host struct {
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
	} `json:"host"`
}

func (s *server) createGameHandler(w http.ResponseWriter, r *http.Request) {
	var body createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if len(body.Players) != game.NumSeats {
		writeHTTPError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	for _, p := range body.Players {
		if p.Name == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
	}

	meta := game.Meta{
		ID:        store.NewID(),
		CreatedAt: time.Now().UTC(),
		Host: game.Host{
			ID:       store.NewID(),
			Name:     body.Host.Name,
			Nickname: body.Host.Nickname,
		},
	}
	if meta.Host.Name == "" {
		meta.Host.Name = "Host"
	}
	for i, p := range body.Players {
		meta.Players = append(meta.Players, game.Player{
			ID:         store.NewID(),
			SeatNumber: i + 1,
			Name:       p.Name,
			Nickname:   p.Nickname,
			Profile:    p.Profile,
		})
	}

	if err := s.store.CreateGame(r.Context(), meta); err != nil {
		log.Error().Err(err).Msg("create game failed")
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	roles := game.RolePool()
	rand.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	rolesBySeat := make(map[string]game.RoleID, len(roles))
	for i, role := range roles {
		rolesBySeat[strconv.Itoa(i+1)] = role
	}

	drafts := []game.Draft{
		{Type: game.EventGameCreated, Kind: game.KindSystem},
		{Type: game.EventGameSetup, Kind: game.KindSystem, Payload: game.Payload{RolesBySeat: rolesBySeat}},
	}
	events := make([]game.Event, 0, len(drafts))
	for _, d := range drafts {
		ev := game.Event{
			ID:        store.NewID(),
			Type:      d.Type,
			Kind:      d.Kind,
			CreatedAt: time.Now().UTC(),
			Payload:   d.Payload,
		}
		if err := s.store.AppendEvent(r.Context(), meta.ID, ev); err != nil {
			log.Error().Err(err).Msg("seed events failed")
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		s.hub.Publish(meta.ID, ev)
		events = append(events, ev)
	}

	log.Info().Str("game_id", meta.ID).Msg("game created")
	writeJSON(w, http.StatusCreated, map[string]any{"game": meta, "events": events})
}

func (s *server) listGamesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 500 {
			limit = n
		}
	}
	items, err := s.store.ListGames(r.Context(), limit)
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *server) activeGameHandler(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.ActiveGame(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	}
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": meta})
}

func (s *server) getGameHandler(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.Game(r.Context(), chi.URLParam(r, "game_id"))
	if errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	}
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": meta})
}

func (s *server) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	if _, err := s.store.Game(r.Context(), gameID); errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	} else if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	events, err := s.store.Events(r.Context(), gameID)
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": events})
}

type appendEventRequest struct {
	ID      string         `json:"id"`
	Type    game.EventType `json:"type"`
	Kind    game.EventKind `json:"kind"`
	Payload game.Payload   `json:"payload"`
}

func (s *server) appendEventHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.Server.EventMaxBytes))

	var body appendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !body.Type.Known() || !body.Kind.Valid() {
		writeHTTPError(w, http.StatusBadRequest, "invalid_event")
		return
	}

	ev := game.Event{
		ID:        body.ID,
		Type:      body.Type,
		Kind:      body.Kind,
		CreatedAt: time.Now().UTC(),
		Payload:   body.Payload,
	}
	// Client-supplied ids make retried appends idempotent.
	if ev.ID == "" {
		ev.ID = store.NewID()
	}

	switch err := s.store.AppendEvent(r.Context(), gameID, ev); {
	case errors.Is(err, store.ErrNotFound):
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	case errors.Is(err, store.ErrGameEnded):
		writeHTTPError(w, http.StatusConflict, "game_ended")
		return
	case err != nil:
		log.Error().Err(err).Str("game_id", gameID).Msg("append event failed")
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	s.hub.Publish(gameID, ev)
	writeJSON(w, http.StatusCreated, map[string]any{"event": ev})
}

func (s *server) endGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	ev := game.Event{
		ID:        store.NewID(),
		Type:      game.EventGameEnded,
		Kind:      game.KindSystem,
		CreatedAt: time.Now().UTC(),
	}
	switch err := s.store.AppendEvent(r.Context(), gameID, ev); {
	case errors.Is(err, store.ErrNotFound):
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	case errors.Is(err, store.ErrGameEnded):
		// Ending twice is a no-op.
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	case err != nil:
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if err := s.store.EndGame(r.Context(), gameID); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	s.hub.Publish(gameID, ev)
	s.hub.CloseGame(gameID)
	log.Info().Str("game_id", gameID).Msg("game ended")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) streamHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	if _, err := s.store.Game(r.Context(), gameID); errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	} else if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeHTTPError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}
	stream.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	buf := s.hub.Buffer(gameID)
	sub := buf.Subscribe()
	defer buf.Unsubscribe(sub)

	// Catch up from the store first. Anything published while we read
	// is also in the subscription channel, so dedupe by id.
	lastID := r.Header.Get("Last-Event-ID")
	sent := map[string]bool{}
	events, err := s.store.Events(r.Context(), gameID)
	if err == nil {
		start := 0
		if lastID != "" {
			for i, ev := range events {
				if ev.ID == lastID {
					start = i + 1
					break
				}
			}
		}
		for _, ev := range events[start:] {
			if err := stream.WriteEvent(w, ev); err != nil {
				return
			}
			sent[ev.ID] = true
		}
		flusher.Flush()
	}

	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub:
			if !open {
				return
			}
			if sent[ev.ID] {
				continue
			}
			if err := stream.WriteEvent(w, ev); err != nil {
				return
			}
			sent[ev.ID] = true
			flusher.Flush()
		case <-ping.C:
			if err := stream.WritePing(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
