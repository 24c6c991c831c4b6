package stream

import (
	"sync"

	"mafia-table/internal/game"
)

// Buffer fans one game's events out to live subscribers and keeps a
// bounded tail for Last-Event-ID replay on reconnect. Slow subscribers
// drop events rather than block the publisher; a client that falls
// behind reconnects and replays.
type Buffer struct {
	mu       sync.Mutex
	max      int
	events   []game.Event
	watchers map[chan game.Event]struct{}
	closed   bool
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 500
	}
	return &Buffer{
		max:      max,
		watchers: map[chan game.Event]struct{}{},
	}
}

func (b *Buffer) Publish(ev game.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ReplayAfter returns the buffered events after the given event id.
// An empty or unknown id replays the whole tail.
func (b *Buffer) ReplayAfter(lastEventID string) []game.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	start := 0
	if lastEventID != "" {
		for i, ev := range b.events {
			if ev.ID == lastEventID {
				start = i + 1
				break
			}
		}
	}
	out := make([]game.Event, len(b.events)-start)
	copy(out, b.events[start:])
	return out
}

func (b *Buffer) Subscribe() chan game.Event {
	ch := make(chan game.Event, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan game.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}

// Hub owns one Buffer per game.
type Hub struct {
	mu      sync.Mutex
	bufSize int
	buffers map[string]*Buffer
}

func NewHub(bufSize int) *Hub {
	return &Hub{bufSize: bufSize, buffers: map[string]*Buffer{}}
}

func (h *Hub) Buffer(gameID string) *Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buffers[gameID]
	if !ok {
		b = NewBuffer(h.bufSize)
		h.buffers[gameID] = b
	}
	return b
}

func (h *Hub) Publish(gameID string, ev game.Event) {
	h.Buffer(gameID).Publish(ev)
}

// CloseGame disconnects every subscriber of a finished game and drops
// its buffer.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	b, ok := h.buffers[gameID]
	delete(h.buffers, gameID)
	h.mu.Unlock()
	if ok {
		b.Close()
	}
}
