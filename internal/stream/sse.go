package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mafia-table/internal/game"
)

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

// WriteEvent writes one game event as an SSE frame, using the event's
// own id so clients can resume with Last-Event-ID.
func WriteEvent(w http.ResponseWriter, ev game.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %s\n", ev.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: game_event\n"); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func WritePing(w http.ResponseWriter) error {
	_, err := fmt.Fprintf(w, "event: ping\ndata: {\"ts\":%d}\n\n", time.Now().UnixMilli())
	return err
}
