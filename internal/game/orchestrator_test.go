package game

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// logSink is an in-memory Sink assigning sequential ids, mirroring
// what the store does on append.
type logSink struct {
	n      int
	events []Event
}

func (s *logSink) Append(_ context.Context, d Draft) (Event, error) {
	s.n++
	ev := Event{
		ID:        fmt.Sprintf("ev-%04d", s.n),
		Type:      d.Type,
		Kind:      d.Kind,
		CreatedAt: time.Unix(int64(s.n), 0).UTC(),
		Payload:   d.Payload,
	}
	s.events = append(s.events, ev)
	return ev, nil
}

var testNames = []string{"Ava", "Ben", "Cara", "Dan", "Eva", "Finn", "Gia", "Hugo", "Iris", "Jack"}

func testMeta() Meta {
	m := Meta{ID: "g-test", CreatedAt: time.Unix(0, 0).UTC(), Host: Host{ID: "h1", Name: "Victor", Nickname: "the Host"}}
	for i := 0; i < NumSeats; i++ {
		m.Players = append(m.Players, Player{
			ID:         fmt.Sprintf("p%d", i+1),
			SeatNumber: i + 1,
			Name:       testNames[i],
			Nickname:   fmt.Sprintf("nick%d", i+1),
		})
	}
	return m
}

// testRoles: mafia at 2 and 6, boss at 9, sheriff at 5.
func testRoles() map[string]RoleID {
	roles := map[string]RoleID{}
	for n := 1; n <= NumSeats; n++ {
		roles[fmt.Sprintf("%d", n)] = RoleTown
	}
	roles["2"] = RoleMafia
	roles["6"] = RoleMafia
	roles["9"] = RoleMafiaBoss
	roles["5"] = RoleSheriff
	return roles
}

func newTestOrchestrator(t *testing.T, pre ...Draft) (*Orchestrator, *logSink) {
	t.Helper()
	sink := &logSink{}
	ctx := context.Background()
	setup := []Draft{
		{Type: EventGameCreated, Kind: KindSystem},
		{Type: EventGameSetup, Kind: KindSystem, Payload: Payload{RolesBySeat: testRoles()}},
	}
	for _, d := range append(setup, pre...) {
		if _, err := sink.Append(ctx, d); err != nil {
			t.Fatalf("seed append: %v", err)
		}
	}
	o := NewOrchestrator(testMeta(), append([]Event(nil), sink.events...), sink)
	return o, sink
}

func lastPhaseChange(events []Event) (Payload, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == EventPhaseChanged {
			return events[i].Payload, true
		}
	}
	return Payload{}, false
}

func countPhaseEntries(events []Event, phase PhaseID) int {
	n := 0
	for _, ev := range events {
		if ev.Type == EventPhaseChanged && ev.Payload.To == phase {
			n++
		}
	}
	return n
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiscussionNoNominationsGoesToNight(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	ctx := context.Background()

	for i := 0; i < NumSeats; i++ {
		if err := o.EndTurn(ctx); err != nil {
			t.Fatalf("end turn %d: %v", i+1, err)
		}
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightMafiaDiscuss {
		t.Fatalf("expected %s, got %s", PhaseNightMafiaDiscuss, snap.PhaseID)
	}
	pc, ok := lastPhaseChange(sink.events)
	if !ok {
		t.Fatalf("no phase change recorded")
	}
	if !equalInts(pc.Speakers, []int{2, 6, 9}) {
		t.Fatalf("expected boss-last speakers [2 6 9], got %v", pc.Speakers)
	}
	if snap.CurrentSpeakerSeat != 2 {
		t.Fatalf("expected seat 2 to speak first, got %d", snap.CurrentSpeakerSeat)
	}
}

func TestDiscussionSingleNomineeAutoEliminated(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()

	if err := o.Nominate(ctx, 4); err != nil {
		t.Fatalf("nominate: %v", err)
	}
	for i := 0; i < NumSeats; i++ {
		if err := o.EndTurn(ctx); err != nil {
			t.Fatalf("end turn %d: %v", i+1, err)
		}
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseEliminationSpeech {
		t.Fatalf("expected %s, got %s", PhaseEliminationSpeech, snap.PhaseID)
	}
	if !equalInts(snap.EliminationQueue, []int{4}) {
		t.Fatalf("expected queue [4], got %v", snap.EliminationQueue)
	}
	if snap.CurrentSpeakerSeat != 4 {
		t.Fatalf("expected seat 4 to give final words, got %d", snap.CurrentSpeakerSeat)
	}
	if EliminationReason(o.Events, 4) != ReasonVote {
		t.Fatalf("expected reason %s, got %s", ReasonVote, EliminationReason(o.Events, 4))
	}
	for _, s := range snap.Alive {
		if s == 4 {
			t.Fatalf("seat 4 still alive: %v", snap.Alive)
		}
	}

	// Day elimination speeches end, no winner yet: night begins.
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end final words: %v", err)
	}
	if got := o.Snapshot().PhaseID; got != PhaseNightMafiaDiscuss {
		t.Fatalf("expected night after day elimination, got %s", got)
	}
}

func TestNominateTwicePerTurnRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()

	if err := o.Nominate(ctx, 4); err != nil {
		t.Fatalf("first nomination: %v", err)
	}
	if err := o.Nominate(ctx, 7); err == nil {
		t.Fatalf("expected second nomination in one turn to fail")
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if err := o.Nominate(ctx, 7); err != nil {
		t.Fatalf("next speaker nomination: %v", err)
	}
}

// driveDayToVoting nominates two candidates and runs out the
// discussion rotation.
func driveDayToVoting(t *testing.T, o *Orchestrator, a, b int) {
	t.Helper()
	ctx := context.Background()
	if err := o.Nominate(ctx, a); err != nil {
		t.Fatalf("nominate %d: %v", a, err)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if err := o.Nominate(ctx, b); err != nil {
		t.Fatalf("nominate %d: %v", b, err)
	}
	for i := 0; i < NumSeats-1; i++ {
		if err := o.EndTurn(ctx); err != nil {
			t.Fatalf("end turn: %v", err)
		}
	}
	if got := o.Snapshot().PhaseID; got != PhaseDayVoting {
		t.Fatalf("expected %s, got %s", PhaseDayVoting, got)
	}
}

func TestVotingUniqueMaxEliminates(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	driveDayToVoting(t, o, 3, 7)

	for voter := 1; voter <= NumSeats; voter++ {
		target := 3
		if voter > 6 {
			target = 7
		}
		if got := o.Snapshot().CurrentSpeakerSeat; got != voter {
			t.Fatalf("expected voter %d, got %d", voter, got)
		}
		if err := o.CastVote(ctx, target); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseEliminationSpeech {
		t.Fatalf("expected %s, got %s", PhaseEliminationSpeech, snap.PhaseID)
	}
	if !equalInts(snap.EliminationQueue, []int{3}) {
		t.Fatalf("expected queue [3], got %v", snap.EliminationQueue)
	}
	if EliminationReason(o.Events, 3) != ReasonVote {
		t.Fatalf("wrong elimination reason: %s", EliminationReason(o.Events, 3))
	}
}

func TestVotingTieGoesToTieDiscussionThenRevote(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	driveDayToVoting(t, o, 3, 7)

	for voter := 1; voter <= NumSeats; voter++ {
		target := 3
		if voter > 5 {
			target = 7
		}
		if err := o.CastVote(ctx, target); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseTieDiscussion {
		t.Fatalf("expected %s, got %s", PhaseTieDiscussion, snap.PhaseID)
	}
	if !equalInts(snap.TieCandidates, []int{3, 7}) {
		t.Fatalf("expected candidates [3 7], got %v", snap.TieCandidates)
	}
	if snap.CurrentSpeakerSeat != 3 {
		t.Fatalf("expected candidate 3 to speak, got %d", snap.CurrentSpeakerSeat)
	}

	// Only the tied candidates speak, then the revote opens.
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end tie turn: %v", err)
	}
	if got := o.Snapshot().CurrentSpeakerSeat; got != 7 {
		t.Fatalf("expected candidate 7 to speak, got %d", got)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end tie turn: %v", err)
	}
	if got := o.Snapshot().PhaseID; got != PhaseTieRevote {
		t.Fatalf("expected %s, got %s", PhaseTieRevote, got)
	}
}

func TestRevoteTieEscalatesToMassElimination(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	driveDayToVoting(t, o, 3, 7)

	vote55 := func() {
		for voter := 1; voter <= NumSeats; voter++ {
			target := 3
			if voter > 5 {
				target = 7
			}
			if err := o.CastVote(ctx, target); err != nil {
				t.Fatalf("vote by %d: %v", voter, err)
			}
		}
	}
	vote55()
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("tie turn: %v", err)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("tie turn: %v", err)
	}
	vote55()

	snap := o.Snapshot()
	if snap.PhaseID != PhaseMassElimProposal {
		t.Fatalf("expected %s, got %s", PhaseMassElimProposal, snap.PhaseID)
	}
	if !equalInts(snap.TieCandidates, []int{3, 7}) {
		t.Fatalf("expected candidates [3 7], got %v", snap.TieCandidates)
	}

	// Majority YES eliminates every tied candidate, ascending.
	for voter := 1; voter <= NumSeats; voter++ {
		if err := o.CastProposalVote(ctx, voter <= 6); err != nil {
			t.Fatalf("proposal vote by %d: %v", voter, err)
		}
	}
	snap = o.Snapshot()
	if snap.PhaseID != PhaseEliminationSpeech {
		t.Fatalf("expected %s, got %s", PhaseEliminationSpeech, snap.PhaseID)
	}
	if !equalInts(snap.EliminationQueue, []int{3, 7}) {
		t.Fatalf("expected queue [3 7], got %v", snap.EliminationQueue)
	}
	if EliminationReason(o.Events, 3) != ReasonMassElim || EliminationReason(o.Events, 7) != ReasonMassElim {
		t.Fatalf("expected mass elimination reasons, got %s / %s",
			EliminationReason(o.Events, 3), EliminationReason(o.Events, 7))
	}
}

func TestMassEliminationExactHalfFails(t *testing.T) {
	// Seed the proposal phase directly: candidates 3 and 7 tied.
	o, _ := newTestOrchestrator(t, Draft{
		Type: EventPhaseChanged, Kind: KindSystem,
		Payload: Payload{From: PhaseTieRevote, To: PhaseMassElimProposal, Candidates: []int{3, 7}},
	})
	ctx := context.Background()

	// 5 YES of 10 alive is not a strict majority.
	for voter := 1; voter <= NumSeats; voter++ {
		if err := o.CastProposalVote(ctx, voter <= 5); err != nil {
			t.Fatalf("proposal vote by %d: %v", voter, err)
		}
	}
	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightMafiaDiscuss {
		t.Fatalf("expected rejected proposal to start the night, got %s", snap.PhaseID)
	}
	if len(snap.Alive) != NumSeats {
		t.Fatalf("no one should be eliminated, alive=%v", snap.Alive)
	}
}

func TestNightFullFlowWithBoss(t *testing.T) {
	o, sink := newTestOrchestrator(t, Draft{
		Type: EventPhaseChanged, Kind: KindSystem,
		Payload: Payload{From: PhaseDayDiscussion, To: PhaseNightMafiaDiscuss, Speakers: []int{2, 6, 9}},
	})
	ctx := context.Background()

	if err := o.SuggestKill(ctx, 4); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := o.EndTurn(ctx); err != nil {
			t.Fatalf("mafia turn: %v", err)
		}
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseNightMafiaKill {
		t.Fatalf("expected %s, got %s", PhaseNightMafiaKill, snap.PhaseID)
	}
	if snap.CurrentSpeakerSeat != 9 {
		t.Fatalf("expected boss seat 9 to act, got %d", snap.CurrentSpeakerSeat)
	}
	if err := o.SelectKill(ctx, 4); err != nil {
		t.Fatalf("select kill: %v", err)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end kill select: %v", err)
	}

	if got := o.Snapshot().PhaseID; got != PhaseNightBossGuess {
		t.Fatalf("expected %s, got %s", PhaseNightBossGuess, got)
	}
	if err := o.BossGuess(ctx, 5); err != nil {
		t.Fatalf("boss guess: %v", err)
	}
	var guess *Event
	for i := range sink.events {
		if sink.events[i].Type == EventNightBossGuess {
			guess = &sink.events[i]
		}
	}
	if guess == nil || !guess.Payload.IsSheriff {
		t.Fatalf("expected boss check of seat 5 to find the sheriff: %+v", guess)
	}

	if got := o.Snapshot().PhaseID; got != PhaseNightSheriffAction {
		t.Fatalf("expected %s, got %s", PhaseNightSheriffAction, got)
	}
	if err := o.SheriffInvestigate(ctx, 9); err != nil {
		t.Fatalf("investigate: %v", err)
	}
	var check *Event
	for i := range sink.events {
		if sink.events[i].Type == EventNightSheriffCheck {
			check = &sink.events[i]
		}
	}
	if check == nil || !check.Payload.IsMafia {
		t.Fatalf("expected investigation of seat 9 to find mafia: %+v", check)
	}

	// Morning: the kill is applied and the victim gets final words.
	snap = o.Snapshot()
	if snap.PhaseID != PhaseEliminationSpeech {
		t.Fatalf("expected %s, got %s", PhaseEliminationSpeech, snap.PhaseID)
	}
	if !equalInts(snap.EliminationQueue, []int{4}) {
		t.Fatalf("expected queue [4], got %v", snap.EliminationQueue)
	}
	if EliminationReason(o.Events, 4) != ReasonNightKill {
		t.Fatalf("wrong reason: %s", EliminationReason(o.Events, 4))
	}

	// After final words the next day opens.
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("final words: %v", err)
	}
	snap = o.Snapshot()
	if snap.PhaseID != PhaseDayDiscussion {
		t.Fatalf("expected %s, got %s", PhaseDayDiscussion, snap.PhaseID)
	}
	if snap.DayNumber != 2 {
		t.Fatalf("expected day 2, got %d", snap.DayNumber)
	}
}

func TestNightBossDeadSkipsKillSelectAndGuess(t *testing.T) {
	o, sink := newTestOrchestrator(t,
		Draft{Type: EventPlayerEliminated, Kind: KindSystem, Payload: Payload{SeatNumber: 9, Reason: ReasonVote}},
		Draft{Type: EventPhaseChanged, Kind: KindSystem,
			Payload: Payload{From: PhaseDayDiscussion, To: PhaseNightMafiaDiscuss, Speakers: []int{2, 6}}},
	)
	ctx := context.Background()

	if got := o.Snapshot().CurrentSpeakerSeat; got != 2 {
		t.Fatalf("expected seat 2 first, got %d", got)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("mafia turn: %v", err)
	}

	// Seat 6 is last in the boss-last rotation and inherits the kill.
	if got := o.Snapshot().CurrentSpeakerSeat; got != 6 {
		t.Fatalf("expected acting boss 6, got %d", got)
	}
	if err := o.SelectKill(ctx, 4); err != nil {
		t.Fatalf("acting boss select: %v", err)
	}
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("end acting boss turn: %v", err)
	}

	if n := countPhaseEntries(sink.events, PhaseNightMafiaKill); n != 0 {
		t.Fatalf("kill-select phase should be skipped, entered %d times", n)
	}
	if n := countPhaseEntries(sink.events, PhaseNightBossGuess); n != 0 {
		t.Fatalf("boss-guess phase should be skipped, entered %d times", n)
	}
	if got := o.Snapshot().PhaseID; got != PhaseNightSheriffAction {
		t.Fatalf("expected %s, got %s", PhaseNightSheriffAction, got)
	}

	if err := o.SheriffInvestigate(ctx, 2); err != nil {
		t.Fatalf("investigate: %v", err)
	}
	snap := o.Snapshot()
	if snap.PhaseID != PhaseEliminationSpeech || !equalInts(snap.EliminationQueue, []int{4}) {
		t.Fatalf("expected final words for seat 4, got %s %v", snap.PhaseID, snap.EliminationQueue)
	}
}

func TestNightNoKillGoesStraightToDay(t *testing.T) {
	o, _ := newTestOrchestrator(t, Draft{
		Type: EventPhaseChanged, Kind: KindSystem,
		Payload: Payload{From: PhaseDayDiscussion, To: PhaseNightMafiaDiscuss, Speakers: []int{2, 6, 9}},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := o.EndTurn(ctx); err != nil {
			t.Fatalf("mafia turn: %v", err)
		}
	}
	// Boss declines to kill.
	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("kill select pass: %v", err)
	}
	if err := o.BossGuess(ctx, 3); err != nil {
		t.Fatalf("boss guess: %v", err)
	}
	if err := o.SheriffInvestigate(ctx, 9); err != nil {
		t.Fatalf("investigate: %v", err)
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseDayDiscussion {
		t.Fatalf("expected %s, got %s", PhaseDayDiscussion, snap.PhaseID)
	}
	if snap.DayNumber != 2 {
		t.Fatalf("expected day 2, got %d", snap.DayNumber)
	}
	if len(snap.Alive) != NumSeats {
		t.Fatalf("no one should have died, alive=%v", snap.Alive)
	}
}

func TestBossCannotCheckOwnSeat(t *testing.T) {
	o, _ := newTestOrchestrator(t, Draft{
		Type: EventPhaseChanged, Kind: KindSystem,
		Payload: Payload{From: PhaseNightMafiaKill, To: PhaseNightBossGuess, Speakers: []int{9}},
	})
	if err := o.BossGuess(context.Background(), 9); err == nil {
		t.Fatalf("expected self-check to be rejected")
	}
}

func TestWinCheckMafiaParityEndsGame(t *testing.T) {
	// Alive after the pending elimination: 1 (town), 2, 6, 9 (mafia).
	pre := []Draft{}
	for _, s := range []int{3, 5, 7, 8, 10} {
		pre = append(pre, Draft{Type: EventPlayerEliminated, Kind: KindSystem, Payload: Payload{SeatNumber: s, Reason: ReasonVote}})
	}
	pre = append(pre,
		Draft{Type: EventPlayerEliminated, Kind: KindSystem, Payload: Payload{SeatNumber: 4, Reason: ReasonVote}},
		Draft{Type: EventPhaseChanged, Kind: KindSystem,
			Payload: Payload{From: PhaseDayVoting, To: PhaseEliminationSpeech, Eliminated: []int{4}}},
	)
	o, sink := newTestOrchestrator(t, pre...)
	ctx := context.Background()

	if err := o.EndTurn(ctx); err != nil {
		t.Fatalf("final words: %v", err)
	}

	snap := o.Snapshot()
	if snap.PhaseID != PhaseGameEnd {
		t.Fatalf("expected %s, got %s", PhaseGameEnd, snap.PhaseID)
	}
	var win *Event
	for i := range sink.events {
		if sink.events[i].Type == EventWinResult {
			win = &sink.events[i]
		}
	}
	if win == nil || win.Payload.Winner != string(WinnerMafia) {
		t.Fatalf("expected mafia win result, got %+v", win)
	}
}

func TestWinCheckTownWinsWhenMafiaGone(t *testing.T) {
	pre := []Draft{}
	for _, s := range []int{2, 6} {
		pre = append(pre, Draft{Type: EventPlayerEliminated, Kind: KindSystem, Payload: Payload{SeatNumber: s, Reason: ReasonVote}})
	}
	pre = append(pre,
		Draft{Type: EventPlayerEliminated, Kind: KindSystem, Payload: Payload{SeatNumber: 9, Reason: ReasonVote}},
		Draft{Type: EventPhaseChanged, Kind: KindSystem,
			Payload: Payload{From: PhaseDayVoting, To: PhaseEliminationSpeech, Eliminated: []int{9}}},
	)
	o, sink := newTestOrchestrator(t, pre...)

	if err := o.EndTurn(context.Background()); err != nil {
		t.Fatalf("final words: %v", err)
	}
	var win *Event
	for i := range sink.events {
		if sink.events[i].Type == EventWinResult {
			win = &sink.events[i]
		}
	}
	if win == nil || win.Payload.Winner != string(WinnerTown) {
		t.Fatalf("expected town win result, got %+v", win)
	}
	if got := o.Snapshot().PhaseID; got != PhaseGameEnd {
		t.Fatalf("expected %s, got %s", PhaseGameEnd, got)
	}
}

func TestActionsRejectedInWrongPhase(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()

	if err := o.CastVote(ctx, 3); err != ErrWrongPhase {
		t.Fatalf("vote in discussion: %v", err)
	}
	if err := o.CastProposalVote(ctx, true); err != ErrWrongPhase {
		t.Fatalf("proposal vote in discussion: %v", err)
	}
	if err := o.SuggestKill(ctx, 3); err != ErrWrongPhase {
		t.Fatalf("suggest in discussion: %v", err)
	}
	if err := o.BossGuess(ctx, 3); err != ErrWrongPhase {
		t.Fatalf("guess in discussion: %v", err)
	}
	if err := o.SheriffInvestigate(ctx, 3); err != ErrWrongPhase {
		t.Fatalf("investigate in discussion: %v", err)
	}
}

func TestObserveDeduplicatesByID(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	before := len(o.Events)
	o.Observe(sink.events[0])
	if len(o.Events) != before {
		t.Fatalf("duplicate observe grew the log: %d -> %d", before, len(o.Events))
	}
}
