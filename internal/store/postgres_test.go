package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mafia-table/internal/game"
	"mafia-table/internal/store"
	"mafia-table/internal/testutil"
)

func pgMeta() game.Meta {
	meta := game.Meta{ID: store.NewID(), CreatedAt: time.Now().UTC(), Host: game.Host{ID: store.NewID(), Name: "Victor"}}
	names := []string{"Ava", "Ben", "Cara", "Dan", "Eva", "Finn", "Gwen", "Hugo", "Iris", "Jack"}
	for i, name := range names {
		meta.Players = append(meta.Players, game.Player{ID: store.NewID(), SeatNumber: i + 1, Name: name})
	}
	return meta
}

func TestPostgresRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	meta := pgMeta()
	if err := st.CreateGame(ctx, meta); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.Game(ctx, meta.ID)
	if err != nil {
		t.Fatalf("game: %v", err)
	}
	if got.ID != meta.ID || len(got.Players) != 10 || got.Host.Name != "Victor" {
		t.Fatalf("round trip lost data: %+v", got)
	}

	active, err := st.ActiveGame(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.ID != meta.ID {
		t.Fatalf("active = %s, want %s", active.ID, meta.ID)
	}
}

func TestPostgresAppendIdempotentAndOrdered(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	meta := pgMeta()
	if err := st.CreateGame(ctx, meta); err != nil {
		t.Fatalf("create: %v", err)
	}

	evs := []game.Event{
		{ID: "ev-1", Type: game.EventGameCreated, Kind: game.KindSystem, CreatedAt: time.Now().UTC()},
		{ID: "ev-2", Type: game.EventPlayerSpeak, Kind: game.KindPlayer, CreatedAt: time.Now().UTC(),
			Payload: game.Payload{SeatNumber: 1, Text: "good morning"}},
	}
	for _, ev := range evs {
		if err := st.AppendEvent(ctx, meta.ID, ev); err != nil {
			t.Fatalf("append %s: %v", ev.ID, err)
		}
	}
	// Re-delivery of an already stored event is a silent no-op.
	if err := st.AppendEvent(ctx, meta.ID, evs[0]); err != nil {
		t.Fatalf("re-append: %v", err)
	}

	got, err := st.Events(ctx, meta.ID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(got) != 2 || got[0].ID != "ev-1" || got[1].ID != "ev-2" {
		t.Fatalf("unexpected log: %+v", got)
	}
	if got[1].Payload.Text != "good morning" {
		t.Fatalf("payload lost: %+v", got[1].Payload)
	}
}

func TestPostgresEndGameBlocksAppends(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	meta := pgMeta()
	if err := st.CreateGame(ctx, meta); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.EndGame(ctx, meta.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	ev := game.Event{ID: "ev-late", Type: game.EventPlayerSpeak, Kind: game.KindPlayer, CreatedAt: time.Now().UTC()}
	if err := st.AppendEvent(ctx, meta.ID, ev); !errors.Is(err, store.ErrGameEnded) {
		t.Fatalf("append after end: %v", err)
	}

	// Double end stays a no-op and the game drops out of ActiveGame.
	if err := st.EndGame(ctx, meta.ID); err != nil {
		t.Fatalf("double end: %v", err)
	}
	if _, err := st.ActiveGame(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("ended game still active: %v", err)
	}
}
