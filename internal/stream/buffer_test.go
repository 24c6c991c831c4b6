package stream

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"mafia-table/internal/game"
)

func ev(i int) game.Event {
	return game.Event{ID: fmt.Sprintf("ev-%04d", i), Type: game.EventHostMessage, Kind: game.KindHost}
}

func TestBufferReplayAfter(t *testing.T) {
	b := NewBuffer(10)
	for i := 1; i <= 4; i++ {
		b.Publish(ev(i))
	}

	all := b.ReplayAfter("")
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	tail := b.ReplayAfter("ev-0002")
	if len(tail) != 2 || tail[0].ID != "ev-0003" || tail[1].ID != "ev-0004" {
		t.Fatalf("unexpected replay tail: %+v", tail)
	}
	unknown := b.ReplayAfter("missing")
	if len(unknown) != 4 {
		t.Fatalf("unknown id should replay everything, got %d", len(unknown))
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Publish(ev(i))
	}
	all := b.ReplayAfter("")
	if len(all) != 3 || all[0].ID != "ev-0003" {
		t.Fatalf("expected tail [3..5], got %+v", all)
	}
}

func TestBufferSubscribeReceivesAndDropsWhenFull(t *testing.T) {
	b := NewBuffer(100)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(ev(1))
	got := <-ch
	if got.ID != "ev-0001" {
		t.Fatalf("unexpected event: %s", got.ID)
	}

	// Fill the channel past capacity; publisher must not block.
	for i := 0; i < 100; i++ {
		b.Publish(ev(i + 2))
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected full channel, got %d/%d", len(ch), cap(ch))
	}
}

func TestBufferCloseDisconnectsSubscribers(t *testing.T) {
	b := NewBuffer(10)
	ch := b.Subscribe()
	b.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if post := b.Subscribe(); func() bool { _, ok := <-post; return ok }() {
		t.Fatalf("subscribe after close must return a closed channel")
	}
}

func TestHubIsolatesGames(t *testing.T) {
	h := NewHub(10)
	chA := h.Buffer("a").Subscribe()
	chB := h.Buffer("b").Subscribe()
	defer h.Buffer("a").Unsubscribe(chA)

	h.Publish("a", ev(1))
	if got := <-chA; got.ID != "ev-0001" {
		t.Fatalf("unexpected event on a: %s", got.ID)
	}
	if len(chB) != 0 {
		t.Fatalf("event leaked across games")
	}

	h.CloseGame("b")
	if _, ok := <-chB; ok {
		t.Fatalf("expected b subscribers to be disconnected")
	}
}

func TestWriteEventFrameFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSSEHeaders(rec)
	if err := WriteEvent(rec, ev(7)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id: ev-0007\nevent: game_event\ndata: ") {
		t.Fatalf("unexpected frame:\n%s", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("frame must end with a blank line:\n%s", body)
	}
}
