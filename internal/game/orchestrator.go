package game

import (
	"context"
	"errors"
	"fmt"
)

// Sink is where orchestrator decisions land. Implementations append to
// the game's log (HTTP API, store, or an in-memory log in tests) and
// return the stored event with its assigned id and timestamp.
type Sink interface {
	Append(ctx context.Context, d Draft) (Event, error)
}

var (
	// ErrWrongPhase marks an action attempted in a phase that does not
	// accept it. Callers treat it as a no-op at the boundary.
	ErrWrongPhase = errors.New("action not valid in current phase")
	// ErrNotYourTurn marks an action by a seat that is not the current
	// actor.
	ErrNotYourTurn = errors.New("not the acting seat")
)

// Orchestrator drives a single game forward: it replays the log it has
// observed so far and, when the current actor finishes, appends the
// event sequence that rotates to the next actor or resolves the phase.
// Every decision is a pure function of the observed log; two
// orchestrators watching the same log converge on the same appends.
type Orchestrator struct {
	Meta   Meta
	Events []Event
	Sink   Sink
}

func NewOrchestrator(meta Meta, events []Event, sink Sink) *Orchestrator {
	return &Orchestrator{Meta: meta, Events: events, Sink: sink}
}

// Observe merges an externally delivered event (initial fetch or live
// stream). Duplicates by id are absorbed silently.
func (o *Orchestrator) Observe(ev Event) {
	for _, have := range o.Events {
		if have.ID == ev.ID {
			return
		}
	}
	o.Events = append(o.Events, ev)
}

func (o *Orchestrator) Snapshot() Snapshot { return Reconstruct(o.Events) }

func (o *Orchestrator) append(ctx context.Context, d Draft) error {
	ev, err := o.Sink.Append(ctx, d)
	if err != nil {
		return err
	}
	o.Observe(ev)
	return nil
}

func (o *Orchestrator) host(ctx context.Context, text string) error {
	return o.append(ctx, Draft{Type: EventHostMessage, Kind: KindHost, Payload: Payload{Text: text}})
}

func (o *Orchestrator) changePhase(ctx context.Context, p Payload) error {
	return o.append(ctx, Draft{Type: EventPhaseChanged, Kind: KindSystem, Payload: p})
}

func (o *Orchestrator) seatLabel(seat int) string {
	if p, ok := o.Meta.PlayerBySeat(seat); ok {
		return p.Name
	}
	return fmt.Sprintf("Seat #%d", seat)
}

func (o *Orchestrator) seatLabelWithNick(seat int) string {
	p, ok := o.Meta.PlayerBySeat(seat)
	if !ok {
		return fmt.Sprintf("Seat #%d", seat)
	}
	if p.Nickname != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.Nickname)
	}
	return p.Name
}

func joinSeatLabels(o *Orchestrator, seats []int) string {
	out := ""
	for i, s := range seats {
		if i > 0 {
			out += ", "
		}
		out += o.seatLabel(s)
	}
	return out
}

// Speak appends the current actor's table talk.
func (o *Orchestrator) Speak(ctx context.Context, text string) error {
	snap := o.Snapshot()
	switch snap.PhaseID {
	case PhaseDayDiscussion, PhaseTieDiscussion, PhaseEliminationSpeech,
		PhaseNightMafiaDiscuss, PhaseNightMafiaKill, PhaseNightBossGuess, PhaseNightSheriffAction:
	default:
		return ErrWrongPhase
	}
	return o.append(ctx, Draft{
		Type: EventPlayerSpeak, Kind: KindPlayer,
		Payload: Payload{SeatNumber: snap.CurrentSpeakerSeat, Text: text},
	})
}

// Nominate records the current speaker's nomination. One nomination
// per speaking turn.
func (o *Orchestrator) Nominate(ctx context.Context, target int) error {
	snap := o.Snapshot()
	if snap.PhaseID != PhaseDayDiscussion {
		return ErrWrongPhase
	}
	if !ValidSeat(target) {
		return fmt.Errorf("invalid nomination target %d", target)
	}
	if HasNominatedThisTurn(o.Events, snap.CurrentSpeakerSeat) {
		return fmt.Errorf("seat %d already nominated this turn", snap.CurrentSpeakerSeat)
	}
	return o.append(ctx, Draft{
		Type: EventPlayerNominate, Kind: KindSystem,
		Payload: Payload{SeatNumber: snap.CurrentSpeakerSeat, TargetSeatNumber: target},
	})
}

// EndTurn finishes the current actor's turn in a speaking phase and
// either rotates to the next actor or resolves the phase.
func (o *Orchestrator) EndTurn(ctx context.Context) error {
	snap := o.Snapshot()
	seat := snap.CurrentSpeakerSeat

	if err := o.append(ctx, Draft{Type: EventTurnEnded, Kind: KindSystem, Payload: Payload{SeatNumber: seat}}); err != nil {
		return err
	}

	switch snap.PhaseID {
	case PhaseDayDiscussion:
		return o.endDiscussionTurn(ctx, snap, seat)
	case PhaseTieDiscussion:
		return o.endTieDiscussionTurn(ctx, snap, seat)
	case PhaseEliminationSpeech:
		return o.endEliminationSpeechTurn(ctx, snap, seat)
	case PhaseNightMafiaDiscuss:
		return o.endMafiaDiscussionTurn(ctx, snap, seat)
	case PhaseNightMafiaKill:
		return o.afterKillSelect(ctx)
	case PhaseNightBossGuess:
		return o.afterBossGuess(ctx)
	case PhaseNightSheriffAction:
		return o.resolveNight(ctx)
	default:
		return ErrWrongPhase
	}
}

func (o *Orchestrator) endDiscussionTurn(ctx context.Context, snap Snapshot, seat int) error {
	alive := snap.Alive
	idx := indexOf(alive, seat)
	if idx >= 0 && idx < len(alive)-1 {
		next := alive[idx+1]
		return o.host(ctx, fmt.Sprintf("Thank you %s. Now %s will speak.", o.seatLabel(seat), o.seatLabelWithNick(next)))
	}

	aliveSet := snap.AliveSet()
	nominees := Nominees(o.Events, aliveSet)
	roles := snap.RolesBySeat

	switch len(nominees) {
	case 0:
		if err := o.host(ctx, "No one was nominated today. Moving to the night phase."); err != nil {
			return err
		}
		return o.startNight(ctx, aliveSet, roles)
	case 1:
		target := nominees[0]
		if err := o.host(ctx, fmt.Sprintf("%s was the only nominee and will be eliminated.", o.seatLabel(target))); err != nil {
			return err
		}
		if err := o.eliminate(ctx, target, ReasonVote); err != nil {
			return err
		}
		if err := o.changePhase(ctx, Payload{From: PhaseDayDiscussion, To: PhaseEliminationSpeech, Eliminated: []int{target}}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("Final words: %s.", o.seatLabel(target)))
	default:
		if err := o.host(ctx, fmt.Sprintf("Voting begins. Candidates: %s.", joinSeatLabels(o, nominees))); err != nil {
			return err
		}
		if err := o.changePhase(ctx, Payload{From: PhaseDayDiscussion, To: PhaseDayVoting, Candidates: nominees}); err != nil {
			return err
		}
		first := 1
		if len(alive) > 0 {
			first = alive[0]
		}
		return o.host(ctx, fmt.Sprintf("Seat #%d, please vote.", first))
	}
}

func (o *Orchestrator) endTieDiscussionTurn(ctx context.Context, snap Snapshot, seat int) error {
	c := snap.TieCandidates
	idx := indexOf(c, seat)
	if idx >= 0 && idx < len(c)-1 {
		return o.host(ctx, fmt.Sprintf("Next: %s will speak.", o.seatLabel(c[idx+1])))
	}
	if err := o.host(ctx, "Tie discussion complete. Revote begins."); err != nil {
		return err
	}
	if err := o.changePhase(ctx, Payload{From: PhaseTieDiscussion, To: PhaseTieRevote, Candidates: c}); err != nil {
		return err
	}
	first := 1
	if len(snap.Alive) > 0 {
		first = snap.Alive[0]
	}
	return o.host(ctx, fmt.Sprintf("Seat #%d, please vote.", first))
}

func (o *Orchestrator) endEliminationSpeechTurn(ctx context.Context, snap Snapshot, seat int) error {
	enteredFrom := EliminationSpeechEnteredFrom(o.Events)

	q := snap.EliminationQueue
	idx := indexOf(q, seat)
	if idx >= 0 && idx < len(q)-1 {
		return o.host(ctx, fmt.Sprintf("Final words: %s.", o.seatLabel(q[idx+1])))
	}

	if err := o.changePhase(ctx, Payload{From: PhaseEliminationSpeech, To: PhaseWinCheck}); err != nil {
		return err
	}
	ended, err := o.checkWin(ctx)
	if err != nil || ended {
		return err
	}

	if enteredFrom == PhaseMorningReveal {
		if err := o.changePhase(ctx, Payload{From: PhaseWinCheck, To: PhaseDayDiscussion}); err != nil {
			return err
		}
		return o.announceDayDiscussion(ctx)
	}

	snap = o.Snapshot()
	return o.startNightFrom(ctx, PhaseWinCheck, snap.AliveSet(), snap.RolesBySeat)
}

func (o *Orchestrator) endMafiaDiscussionTurn(ctx context.Context, snap Snapshot, seat int) error {
	aliveSet := snap.AliveSet()
	roles := snap.RolesBySeat
	boss := BossSeat(aliveSet, roles)
	order := BossLastOrder(MafiaSeats(aliveSet, roles), boss)

	idx := indexOf(order, seat)
	if idx >= 0 && idx < len(order)-1 {
		return o.host(ctx, fmt.Sprintf("Next mafia: %s will speak.", o.seatLabel(order[idx+1])))
	}

	// The kill-select step only exists while the real boss lives. The
	// acting-boss fallback picks the target during their own discussion
	// turn instead.
	if boss != 0 {
		if err := o.changePhase(ctx, Payload{From: PhaseNightMafiaDiscuss, To: PhaseNightMafiaKill, Speakers: []int{boss}}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("%s (boss) is awake. Select the kill target, or none.", o.seatLabel(boss)))
	}
	return o.afterKillSelect(ctx)
}

// afterKillSelect routes past the boss-guess step: straight to the
// sheriff (or to resolution) when the real boss is dead.
func (o *Orchestrator) afterKillSelect(ctx context.Context) error {
	snap := o.Snapshot()
	aliveSet := snap.AliveSet()
	roles := snap.RolesBySeat

	boss := BossSeat(aliveSet, roles)
	if boss != 0 {
		from := snap.PhaseID
		if err := o.changePhase(ctx, Payload{From: from, To: PhaseNightBossGuess, Speakers: []int{boss}}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("%s (boss) is awake. Choose someone to check for Sheriff.", o.seatLabel(boss)))
	}
	return o.afterBossGuess(ctx)
}

func (o *Orchestrator) afterBossGuess(ctx context.Context) error {
	snap := o.Snapshot()
	sheriff := SheriffSeat(snap.AliveSet(), snap.RolesBySeat)
	if sheriff == 0 {
		return o.resolveNight(ctx)
	}
	if err := o.changePhase(ctx, Payload{From: snap.PhaseID, To: PhaseNightSheriffAction, Speakers: []int{sheriff}}); err != nil {
		return err
	}
	return o.host(ctx, fmt.Sprintf("%s (Sheriff) is awake. Choose someone to investigate.", o.seatLabel(sheriff)))
}

// CastVote records the current voter's ballot and advances the voting
// rotation, resolving the tally when the last alive seat has voted.
func (o *Orchestrator) CastVote(ctx context.Context, target int) error {
	snap := o.Snapshot()
	phase := snap.PhaseID
	if phase != PhaseDayVoting && phase != PhaseTieRevote {
		return ErrWrongPhase
	}
	voter := snap.CurrentSpeakerSeat
	if err := o.append(ctx, Draft{
		Type: EventPlayerVote, Kind: KindPlayer,
		Payload: Payload{VoterSeatNumber: voter, TargetSeatNumber: target},
	}); err != nil {
		return err
	}
	return o.endVoteTurn(ctx, snap, voter)
}

func (o *Orchestrator) endVoteTurn(ctx context.Context, snap Snapshot, voter int) error {
	phase := snap.PhaseID
	if err := o.append(ctx, Draft{Type: EventTurnEnded, Kind: KindSystem, Payload: Payload{SeatNumber: voter}}); err != nil {
		return err
	}

	alive := snap.Alive
	idx := indexOf(alive, voter)
	if idx >= 0 && idx < len(alive)-1 {
		return o.host(ctx, fmt.Sprintf("Seat #%d, please vote.", alive[idx+1]))
	}

	var candidates []int
	if phase == PhaseDayVoting {
		candidates = Nominees(o.Events, snap.AliveSet())
	} else {
		candidates = TieCandidates(o.Events, phase)
	}
	counts := VoteCounts(o.Events, phase, candidates)

	tally := ""
	for i, c := range candidates {
		if i > 0 {
			tally += ", "
		}
		tally += fmt.Sprintf("%s: %d", o.seatLabel(c), counts[c])
	}
	if err := o.host(ctx, fmt.Sprintf("Vote tally: %s.", tally)); err != nil {
		return err
	}

	max := 0
	for _, c := range candidates {
		if counts[c] > max {
			max = counts[c]
		}
	}
	var top []int
	for _, c := range candidates {
		if counts[c] == max {
			top = append(top, c)
		}
	}

	if len(top) == 1 {
		target := top[0]
		if err := o.host(ctx, fmt.Sprintf("%s is eliminated.", o.seatLabel(target))); err != nil {
			return err
		}
		if err := o.eliminate(ctx, target, ReasonVote); err != nil {
			return err
		}
		if err := o.changePhase(ctx, Payload{From: phase, To: PhaseEliminationSpeech, Eliminated: []int{target}}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("Final words: %s.", o.seatLabel(target)))
	}

	names := joinSeatLabels(o, top)

	// One tie-break cycle is allowed: a DAY_VOTING tie goes to
	// discussion and revote; a TIE_REVOTE tie escalates to the mass
	// elimination proposal instead of looping.
	if phase == PhaseDayVoting {
		if err := o.host(ctx, fmt.Sprintf("Tie between: %s. They will speak, then we revote.", names)); err != nil {
			return err
		}
		if err := o.changePhase(ctx, Payload{From: phase, To: PhaseTieDiscussion, Candidates: top}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("Tie discussion begins. %s will speak.", o.seatLabelWithNick(top[0])))
	}

	if err := o.host(ctx, fmt.Sprintf("Still tied after revote (%d votes): %s. Mass elimination proposal begins (vote YES/NO).", max, names)); err != nil {
		return err
	}
	if err := o.changePhase(ctx, Payload{From: phase, To: PhaseMassElimProposal, Candidates: top}); err != nil {
		return err
	}
	first := 1
	if len(alive) > 0 {
		first = alive[0]
	}
	return o.host(ctx, fmt.Sprintf("Seat #%d, vote YES/NO.", first))
}

// CastProposalVote records a YES/NO ballot on the mass elimination
// proposal and resolves it after the last voter.
func (o *Orchestrator) CastProposalVote(ctx context.Context, yes bool) error {
	snap := o.Snapshot()
	if snap.PhaseID != PhaseMassElimProposal {
		return ErrWrongPhase
	}
	voter := snap.CurrentSpeakerSeat
	vote := VoteNo
	if yes {
		vote = VoteYes
	}
	if err := o.append(ctx, Draft{
		Type: EventMassElimVote, Kind: KindSystem,
		Payload: Payload{VoterSeatNumber: voter, Vote: vote},
	}); err != nil {
		return err
	}
	if err := o.append(ctx, Draft{Type: EventTurnEnded, Kind: KindSystem, Payload: Payload{SeatNumber: voter}}); err != nil {
		return err
	}

	alive := snap.Alive
	idx := indexOf(alive, voter)
	if idx >= 0 && idx < len(alive)-1 {
		return o.host(ctx, fmt.Sprintf("Seat #%d, vote YES/NO.", alive[idx+1]))
	}

	yesCount := 0
	for _, v := range MassVotes(o.Events) {
		if v == VoteYes {
			yesCount++
		}
	}
	candidates := snap.TieCandidates

	// Strict majority of alive voters; floor(N/2) YES is a NO.
	if yesCount*2 > len(alive) {
		if err := o.host(ctx, fmt.Sprintf("Majority YES. Eliminating: %s.", joinSeatLabels(o, candidates))); err != nil {
			return err
		}
		for _, c := range candidates {
			if err := o.eliminate(ctx, c, ReasonMassElim); err != nil {
				return err
			}
		}
		if err := o.changePhase(ctx, Payload{From: PhaseMassElimProposal, To: PhaseEliminationSpeech, Eliminated: candidates}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("Final words: %s.", o.seatLabel(candidates[0])))
	}

	if err := o.host(ctx, "Majority NO. No one is eliminated. Night falls."); err != nil {
		return err
	}
	snap = o.Snapshot()
	return o.startNightFrom(ctx, PhaseMassElimProposal, snap.AliveSet(), snap.RolesBySeat)
}

// SuggestKill records a mafia member's kill suggestion during night
// discussion.
func (o *Orchestrator) SuggestKill(ctx context.Context, target int) error {
	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightMafiaDiscuss {
		return ErrWrongPhase
	}
	return o.append(ctx, Draft{
		Type: EventNightKillSuggest, Kind: KindPlayer,
		Payload: Payload{SeatNumber: snap.CurrentSpeakerSeat, TargetSeatNumber: target},
	})
}

// SelectKill records the acting boss's kill decision. Valid during the
// kill-select phase, or during night discussion when the acting boss
// (fallback included) holds the floor.
func (o *Orchestrator) SelectKill(ctx context.Context, target int) error {
	snap := o.Snapshot()
	actor := snap.CurrentSpeakerSeat
	acting := ActingBossSeat(snap.AliveSet(), snap.RolesBySeat)
	switch snap.PhaseID {
	case PhaseNightMafiaKill:
	case PhaseNightMafiaDiscuss:
		if actor != acting {
			return ErrNotYourTurn
		}
	default:
		return ErrWrongPhase
	}
	if err := o.append(ctx, Draft{
		Type: EventNightKillSelect, Kind: KindPlayer,
		Payload: Payload{SeatNumber: actor, TargetSeatNumber: target},
	}); err != nil {
		return err
	}
	return o.host(ctx, fmt.Sprintf("Kill target selected: %s.", o.seatLabel(target)))
}

// BossGuess records the boss's sheriff check and its private result,
// then hands the night to the sheriff or to resolution. Only the real
// boss ever guesses.
func (o *Orchestrator) BossGuess(ctx context.Context, target int) error {
	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightBossGuess {
		return ErrWrongPhase
	}
	aliveSet := snap.AliveSet()
	roles := snap.RolesBySeat
	boss := BossSeat(aliveSet, roles)
	if boss == 0 {
		return ErrWrongPhase
	}
	if target == boss {
		return fmt.Errorf("boss cannot check their own seat")
	}

	isSheriff := RoleOf(roles, target) == RoleSheriff
	if err := o.append(ctx, Draft{
		Type: EventNightBossGuess, Kind: KindPlayer,
		Payload: Payload{SeatNumber: boss, TargetSeatNumber: target, IsSheriff: isSheriff},
	}); err != nil {
		return err
	}
	verdict := fmt.Sprintf("%s is NOT the Sheriff.", o.seatLabel(target))
	if isSheriff {
		verdict = fmt.Sprintf("%s is the Sheriff.", o.seatLabel(target))
	}
	if err := o.host(ctx, verdict); err != nil {
		return err
	}
	return o.afterBossGuess(ctx)
}

// SheriffInvestigate records the sheriff's check and its private
// result, then resolves the night.
func (o *Orchestrator) SheriffInvestigate(ctx context.Context, target int) error {
	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightSheriffAction {
		return ErrWrongPhase
	}
	aliveSet := snap.AliveSet()
	roles := snap.RolesBySeat
	sheriff := SheriffSeat(aliveSet, roles)
	if sheriff == 0 {
		return ErrWrongPhase
	}
	if target == sheriff {
		return fmt.Errorf("sheriff cannot investigate their own seat")
	}

	isMafia := RoleOf(roles, target).MafiaAligned()
	if err := o.append(ctx, Draft{
		Type: EventNightSheriffCheck, Kind: KindPlayer,
		Payload: Payload{SeatNumber: sheriff, TargetSeatNumber: target, IsMafia: isMafia},
	}); err != nil {
		return err
	}
	verdict := fmt.Sprintf("%s is TOWN.", o.seatLabel(target))
	if isMafia {
		verdict = fmt.Sprintf("%s is MAFIA.", o.seatLabel(target))
	}
	if err := o.host(ctx, verdict); err != nil {
		return err
	}
	return o.resolveNight(ctx)
}

func (o *Orchestrator) startNight(ctx context.Context, aliveSet map[int]bool, roles map[int]RoleID) error {
	return o.startNightFrom(ctx, o.Snapshot().PhaseID, aliveSet, roles)
}

func (o *Orchestrator) startNightFrom(ctx context.Context, from PhaseID, aliveSet map[int]bool, roles map[int]RoleID) error {
	order := BossLastOrder(MafiaSeats(aliveSet, roles), BossSeat(aliveSet, roles))
	if err := o.append(ctx, Draft{Type: EventNightStarted, Kind: KindSystem, Payload: Payload{}}); err != nil {
		return err
	}
	if err := o.changePhase(ctx, Payload{From: from, To: PhaseNightMafiaDiscuss, Speakers: order}); err != nil {
		return err
	}
	return o.host(ctx, "Night falls. Mafia wake up.")
}

// resolveNight applies the recorded kill (if any) and opens the next
// morning: elimination speech for a kill, straight to day discussion
// otherwise.
func (o *Orchestrator) resolveNight(ctx context.Context) error {
	snap := o.Snapshot()
	kill := NightKillTarget(o.Events)
	aliveSet := snap.AliveSet()

	if err := o.host(ctx, "Morning comes. Everyone wakes up."); err != nil {
		return err
	}
	if err := o.changePhase(ctx, Payload{From: snap.PhaseID, To: PhaseMorningReveal}); err != nil {
		return err
	}

	if kill != 0 && aliveSet[kill] {
		if err := o.host(ctx, fmt.Sprintf("%s was killed during the night.", o.seatLabel(kill))); err != nil {
			return err
		}
		if err := o.append(ctx, Draft{Type: EventNightResult, Kind: KindSystem, Payload: Payload{TargetSeatNumber: kill}}); err != nil {
			return err
		}
		if err := o.eliminate(ctx, kill, ReasonNightKill); err != nil {
			return err
		}
		if err := o.append(ctx, Draft{Type: EventNightEnded, Kind: KindSystem, Payload: Payload{}}); err != nil {
			return err
		}
		if err := o.changePhase(ctx, Payload{From: PhaseMorningReveal, To: PhaseEliminationSpeech, Eliminated: []int{kill}}); err != nil {
			return err
		}
		return o.host(ctx, fmt.Sprintf("Final words: %s.", o.seatLabel(kill)))
	}

	if err := o.host(ctx, "No one was killed tonight."); err != nil {
		return err
	}
	if err := o.append(ctx, Draft{Type: EventNightResult, Kind: KindSystem, Payload: Payload{}}); err != nil {
		return err
	}
	if err := o.append(ctx, Draft{Type: EventNightEnded, Kind: KindSystem, Payload: Payload{}}); err != nil {
		return err
	}
	if err := o.changePhase(ctx, Payload{From: PhaseMorningReveal, To: PhaseDayDiscussion}); err != nil {
		return err
	}
	return o.announceDayDiscussion(ctx)
}

func (o *Orchestrator) announceDayDiscussion(ctx context.Context) error {
	snap := o.Snapshot()
	first, ok := o.Meta.PlayerBySeat(snap.CurrentSpeakerSeat)
	text := fmt.Sprintf("Day %d discussion begins.", snap.DayNumber)
	if ok {
		text = fmt.Sprintf("Day %d discussion. %s (%s) will speak first.", snap.DayNumber, first.Name, first.Nickname)
	}
	return o.append(ctx, Draft{Type: EventHostMessage, Kind: KindHost, Payload: Payload{Tag: "DISCUSSION_START", Text: text}})
}

// checkWin evaluates win conditions and, on a win, records the result
// and moves to GAME_END. Returns whether the game ended.
func (o *Orchestrator) checkWin(ctx context.Context) (bool, error) {
	snap := o.Snapshot()
	winner := EvaluateWin(snap.Alive, snap.RolesBySeat)
	if winner == WinnerNone {
		return false, nil
	}
	if err := o.append(ctx, Draft{Type: EventWinResult, Kind: KindSystem, Payload: Payload{Winner: string(winner)}}); err != nil {
		return false, err
	}
	text := "Town wins!"
	if winner == WinnerMafia {
		text = "Mafia wins!"
	}
	if err := o.host(ctx, text); err != nil {
		return false, err
	}
	if err := o.changePhase(ctx, Payload{From: PhaseWinCheck, To: PhaseGameEnd}); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Orchestrator) eliminate(ctx context.Context, seat int, reason string) error {
	return o.append(ctx, Draft{
		Type: EventPlayerEliminated, Kind: KindSystem,
		Payload: Payload{SeatNumber: seat, Reason: reason},
	})
}

func indexOf(seats []int, seat int) int {
	for i, s := range seats {
		if s == seat {
			return i
		}
	}
	return -1
}
