package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mafia-table/internal/store"
)

// ErrBusy means a request for the same game is already in flight.
// One model call per game at a time keeps turn order deterministic.
var ErrBusy = errors.New("ai: request already in flight for this game")

// prefetchKey identifies the exact turn a speculative completion was
// made for. If any component differs by the time the turn arrives,
// the prefetch is stale and discarded.
type prefetchKey struct {
	GameID     string
	PhaseToken string
	Action     Action
	Seat       int
	Model      string
}

type prefetchSlot struct {
	key    prefetchKey
	done   chan struct{}
	result Result
	err    error
}

// Driver serializes model calls per game and carries a single-slot
// speculative prefetch: while narration of the previous turn plays,
// the next turn's completion can already be requested.
type Driver struct {
	Completer    Completer
	DefaultModel string

	mu   sync.Mutex
	busy map[string]bool
	slot *prefetchSlot
}

func NewDriver(c Completer, defaultModel string) *Driver {
	return &Driver{
		Completer:    c,
		DefaultModel: defaultModel,
		busy:         map[string]bool{},
	}
}

func (d *Driver) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return d.DefaultModel
}

func (d *Driver) keyFor(req Request, phaseToken string) prefetchKey {
	return prefetchKey{
		GameID:     req.GameID,
		PhaseToken: phaseToken,
		Action:     req.Action,
		Seat:       req.Persona.SeatNumber,
		Model:      d.model(req),
	}
}

func (d *Driver) complete(ctx context.Context, req Request) (Result, error) {
	model := d.model(req)
	prompt := BuildPrompt(req)

	t0 := time.Now()
	output, err := d.Completer.Complete(ctx, model, systemPrompt(), prompt)
	latency := time.Since(t0).Milliseconds()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RequestID:  store.NewID(),
		Model:      model,
		Prompt:     prompt,
		OutputText: output,
		LatencyMS:  latency,
	}
	decision, perr := Parse(req.Action, output)
	if perr != nil {
		res.ParseError = perr.Error()
		return res, nil
	}

	switch req.Action {
	case ActionDayVotingDecideAll, ActionTieRevoteDecideAll:
		if err := ValidateBulkVotes(decision.Votes, req.AliveSeats, req.VoteCandidates); err != nil {
			res.ParseError = err.Error()
			return res, nil
		}
	case ActionMassElimDecideAll:
		if err := ValidateMassVotes(decision.MassVotes, req.AliveSeats); err != nil {
			res.ParseError = err.Error()
			return res, nil
		}
	}

	res.Decision = decision
	return res, nil
}

// Act runs one model call for the given turn. A matching prefetch is
// consumed instead of calling again; a prefetch for a different turn
// is dropped.
func (d *Driver) Act(ctx context.Context, req Request, phaseToken string) (Result, error) {
	if !req.Action.Known() {
		return Result{}, errors.New("ai: unsupported action")
	}
	key := d.keyFor(req, phaseToken)

	d.mu.Lock()
	if d.busy[req.GameID] {
		d.mu.Unlock()
		return Result{}, ErrBusy
	}
	d.busy[req.GameID] = true

	slot := d.slot
	if slot != nil {
		d.slot = nil
		if slot.key != key {
			log.Debug().Str("game_id", key.GameID).Str("action", string(key.Action)).
				Msg("discarding stale prefetch")
			slot = nil
		}
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.busy, req.GameID)
		d.mu.Unlock()
	}()

	if slot != nil {
		select {
		case <-slot.done:
			return slot.result, slot.err
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return d.complete(ctx, req)
}

// Prefetch starts a speculative completion for an upcoming turn.
// Only one slot exists; a newer prefetch replaces an unconsumed one.
func (d *Driver) Prefetch(ctx context.Context, req Request, phaseToken string) {
	if !req.Action.Known() {
		return
	}
	key := d.keyFor(req, phaseToken)
	slot := &prefetchSlot{key: key, done: make(chan struct{})}

	d.mu.Lock()
	d.slot = slot
	d.mu.Unlock()

	go func() {
		slot.result, slot.err = d.complete(ctx, req)
		close(slot.done)
	}()
}
