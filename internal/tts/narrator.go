package tts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ReadingTime estimates how long a host line should stay on screen:
// a base for context switching plus time proportional to length,
// clamped so very long texts never stall the table.
func ReadingTime(text string) time.Duration {
	trimmed := strings.TrimSpace(text)
	chars := len([]rune(trimmed))
	words := 0
	if trimmed != "" {
		words = len(strings.Fields(trimmed))
	}

	ms := 900 + words*230 + chars*14
	if ms < 1400 {
		ms = 1400
	}
	if ms > 6500 {
		ms = 6500
	}
	return time.Duration(ms) * time.Millisecond
}

// effectiveDuration shortens playback as the backlog grows, capped at
// 4x speed, with a readable floor per utterance.
func effectiveDuration(d time.Duration, backlog int) time.Duration {
	speedup := 1 + 0.25*float64(backlog)
	if speedup > 4 {
		speedup = 4
	}
	out := time.Duration(float64(d) / speedup)
	if min := 900 * time.Millisecond; out < min {
		out = min
	}
	return out
}

// Synthesizer is what the narrator needs from the TTS client.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeakRequest) ([]byte, error)
}

// Utterance is one narrated line handed to the sink: audio when
// synthesis worked, nil audio with a reading-time duration otherwise.
type Utterance struct {
	Text     string
	Audio    []byte
	Duration time.Duration
}

// Narrator plays host lines one at a time. Lines queue up while one
// plays; synthesis failures fall back to a silent reading-time pause
// so the game never stalls on the TTS backend. The current line can
// be skipped.
type Narrator struct {
	synth Synthesizer // nil disables synthesis entirely
	emit  func(Utterance)

	mu    sync.Mutex
	queue []string
	wake  chan struct{}
	skip  chan struct{}
}

func NewNarrator(synth Synthesizer, emit func(Utterance)) *Narrator {
	if emit == nil {
		emit = func(Utterance) {}
	}
	return &Narrator{
		synth: synth,
		emit:  emit,
		wake:  make(chan struct{}, 1),
	}
}

// Enqueue adds a host line to the narration queue.
func (n *Narrator) Enqueue(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	n.mu.Lock()
	n.queue = append(n.queue, text)
	n.mu.Unlock()
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Skip cuts the currently playing line short.
func (n *Narrator) Skip() {
	n.mu.Lock()
	ch := n.skip
	n.mu.Unlock()
	if ch != nil {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (n *Narrator) Backlog() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

func (n *Narrator) pop() (string, int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.queue) == 0 {
		return "", 0, false
	}
	text := n.queue[0]
	n.queue = n.queue[1:]
	return text, len(n.queue), true
}

// Run is the single consumer loop. It returns when ctx is cancelled.
func (n *Narrator) Run(ctx context.Context) {
	for {
		text, backlog, ok := n.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-n.wake:
				continue
			}
		}
		n.playOne(ctx, text, backlog)
		if ctx.Err() != nil {
			return
		}
	}
}

func (n *Narrator) playOne(ctx context.Context, text string, backlog int) {
	duration := ReadingTime(text)

	var audio []byte
	if n.synth != nil {
		var err error
		audio, err = n.synth.Synthesize(ctx, SpeakRequest{Text: text})
		if err != nil {
			log.Debug().Err(err).Msg("tts synthesis failed, using reading-time fallback")
			audio = nil
		}
	}

	wait := effectiveDuration(duration, backlog)
	n.emit(Utterance{Text: text, Audio: audio, Duration: wait})

	skip := make(chan struct{}, 1)
	n.mu.Lock()
	n.skip = skip
	n.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-skip:
	case <-timer.C:
	}

	n.mu.Lock()
	n.skip = nil
	n.mu.Unlock()
}
