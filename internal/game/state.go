package game

import "sort"

// Snapshot is the state derived from replaying a game's log. It is
// never persisted; any two replays of the same event prefix produce an
// identical Snapshot.
type Snapshot struct {
	PhaseID            PhaseID
	DayNumber          int
	CurrentSpeakerSeat int

	Alive []int // ascending

	// Order is the rotation for the current phase; Index points at the
	// current actor. ElimIndex is a separate cursor for the elimination
	// speech queue.
	Order     []int
	Index     int
	ElimIndex int

	TieCandidates    []int
	EliminationQueue []int

	RolesBySeat map[int]RoleID
}

func (s Snapshot) AliveSet() map[int]bool {
	set := make(map[int]bool, len(s.Alive))
	for _, n := range s.Alive {
		set[n] = true
	}
	return set
}

// LastInRotation reports whether the current actor is the final one in
// the phase's rotation, i.e. the rotation is about to be exhausted.
func (s Snapshot) LastInRotation() bool {
	if s.PhaseID == PhaseEliminationSpeech {
		return s.ElimIndex >= len(s.Order)-1
	}
	return s.Index >= len(s.Order)-1
}

// Reconstruct folds an ordered event list into the current loop state.
// All ten seats start alive, phase DAY_DISCUSSION, day 1, seat 1 first.
func Reconstruct(events []Event) Snapshot {
	s := Snapshot{
		PhaseID:     PhaseDayDiscussion,
		DayNumber:   1,
		RolesBySeat: map[int]RoleID{},
	}

	alive := make(map[int]bool, NumSeats)
	for n := 1; n <= NumSeats; n++ {
		alive[n] = true
	}
	var speakers []int // explicit rotation from the last PHASE_CHANGED, if any

	recompute := func() {
		aliveAsc := sortedSeats(alive)
		switch s.PhaseID {
		case PhaseNightMafiaDiscuss, PhaseNightMafiaKill, PhaseNightBossGuess, PhaseNightSheriffAction, PhaseMorningReveal:
			src := aliveAsc
			if len(speakers) > 0 {
				src = speakers
			}
			// Dead seats are filtered at evaluation time: a speaker who
			// died after the list was recorded is skipped.
			order := make([]int, 0, len(src))
			for _, n := range src {
				if alive[n] {
					order = append(order, n)
				}
			}
			s.Order = order
			s.Index = 0
		case PhaseTieDiscussion:
			s.Order = append([]int(nil), s.TieCandidates...)
			sort.Ints(s.Order)
			s.Index = 0
		case PhaseEliminationSpeech:
			s.Order = append([]int(nil), s.EliminationQueue...)
			s.ElimIndex = 0
		default:
			s.Order = aliveAsc
			s.Index = 0
		}
	}
	recompute()

	for _, ev := range events {
		switch ev.Type {
		case EventGameSetup:
			for k, role := range ev.Payload.RolesBySeat {
				if seat, ok := parseSeat(k); ok {
					s.RolesBySeat[seat] = role
				}
			}

		case EventPlayerEliminated:
			if ValidSeat(ev.Payload.SeatNumber) {
				delete(alive, ev.Payload.SeatNumber)
			}

		case EventPhaseChanged:
			to := ev.Payload.To
			if to == "" {
				break
			}
			s.PhaseID = to
			speakers = filterSeats(ev.Payload.Speakers)
			switch to {
			case PhaseDayDiscussion:
				// Day 1 is the implicit initial phase, never announced by
				// an event. Every explicit entry is a new morning.
				s.DayNumber++
			case PhaseTieDiscussion, PhaseTieRevote, PhaseMassElimProposal:
				if c := filterSeats(ev.Payload.Candidates); len(c) > 0 {
					s.TieCandidates = c
				}
			case PhaseEliminationSpeech:
				s.EliminationQueue = filterSeats(ev.Payload.Eliminated)
			}
			recompute()

		case EventTurnEnded:
			// The cursor saturates at the last valid index; exhaustion
			// is the orchestrator's call, never a wraparound.
			if s.PhaseID == PhaseEliminationSpeech {
				s.ElimIndex = saturate(s.ElimIndex+1, len(s.Order))
			} else {
				s.Index = saturate(s.Index+1, len(s.Order))
			}

		case EventGameEnded:
			s.PhaseID = PhaseGameEnd
			recompute()
		}
	}

	s.Alive = sortedSeats(alive)

	switch {
	case s.PhaseID == PhaseEliminationSpeech && s.ElimIndex < len(s.Order):
		s.CurrentSpeakerSeat = s.Order[s.ElimIndex]
	case s.PhaseID != PhaseEliminationSpeech && s.Index < len(s.Order):
		s.CurrentSpeakerSeat = s.Order[s.Index]
	default:
		s.CurrentSpeakerSeat = 1
	}
	return s
}

// AliveSeats folds only eliminations, for callers that do not need the
// whole snapshot.
func AliveSeats(events []Event) map[int]bool {
	alive := make(map[int]bool, NumSeats)
	for n := 1; n <= NumSeats; n++ {
		alive[n] = true
	}
	for _, ev := range events {
		if ev.Type == EventPlayerEliminated && ValidSeat(ev.Payload.SeatNumber) {
			delete(alive, ev.Payload.SeatNumber)
		}
	}
	return alive
}

// PhaseWindow returns the suffix of events starting at the most recent
// PHASE_CHANGED into the given phase (or the whole log if the phase was
// never entered). Phase-scoped queries (votes, tallies, night picks)
// operate on this window.
func PhaseWindow(events []Event, phase PhaseID) []Event {
	start := 0
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Type == EventPhaseChanged && ev.Payload.To == phase {
			start = i
			break
		}
	}
	return events[start:]
}

// Nominees lists the alive seats nominated in the current day
// discussion window, deduplicated, ascending.
func Nominees(events []Event, alive map[int]bool) []int {
	w := PhaseWindow(events, PhaseDayDiscussion)
	set := map[int]bool{}
	for _, ev := range w {
		if ev.Type != EventPlayerNominate {
			continue
		}
		t := ev.Payload.TargetSeatNumber
		if ValidSeat(t) && alive[t] {
			set[t] = true
		}
	}
	return sortedSeats(set)
}

// TieCandidates reads the candidate set recorded by the most recent
// PHASE_CHANGED into the given phase's window.
func TieCandidates(events []Event, phase PhaseID) []int {
	w := PhaseWindow(events, phase)
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].Type == EventPhaseChanged {
			c := filterSeats(w[i].Payload.Candidates)
			sort.Ints(c)
			return c
		}
	}
	return nil
}

// EliminationQueue reads the elimination-speech queue recorded on entry
// into the given phase.
func EliminationQueue(events []Event, phase PhaseID) []int {
	w := PhaseWindow(events, phase)
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].Type == EventPhaseChanged {
			return filterSeats(w[i].Payload.Eliminated)
		}
	}
	return nil
}

// VotesByVoter maps voter seat to target seat for the current window of
// the given voting phase. A revote by the same seat overwrites.
func VotesByVoter(events []Event, phase PhaseID) map[int]int {
	m := map[int]int{}
	for _, ev := range PhaseWindow(events, phase) {
		if ev.Type != EventPlayerVote {
			continue
		}
		if ValidSeat(ev.Payload.VoterSeatNumber) && ValidSeat(ev.Payload.TargetSeatNumber) {
			m[ev.Payload.VoterSeatNumber] = ev.Payload.TargetSeatNumber
		}
	}
	return m
}

// VoteCounts tallies votes per candidate for the given phase window.
// Votes for seats outside the candidate list are discarded.
func VoteCounts(events []Event, phase PhaseID, candidates []int) map[int]int {
	counts := make(map[int]int, len(candidates))
	for _, c := range candidates {
		counts[c] = 0
	}
	for _, target := range VotesByVoter(events, phase) {
		if _, ok := counts[target]; ok {
			counts[target]++
		}
	}
	return counts
}

// MassVotes maps voter seat to YES/NO within the current
// MASS_ELIMINATION_PROPOSAL window.
func MassVotes(events []Event) map[int]string {
	m := map[int]string{}
	for _, ev := range PhaseWindow(events, PhaseMassElimProposal) {
		if ev.Type != EventMassElimVote {
			continue
		}
		v := ev.Payload.Vote
		if ValidSeat(ev.Payload.VoterSeatNumber) && (v == VoteYes || v == VoteNo) {
			m[ev.Payload.VoterSeatNumber] = v
		}
	}
	return m
}

// NightKillTarget returns the most recent kill selection of the current
// night window, or 0 if the mafia chose no one.
func NightKillTarget(events []Event) int {
	w := PhaseWindow(events, PhaseNightMafiaDiscuss)
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].Type == EventNightKillSelect && ValidSeat(w[i].Payload.TargetSeatNumber) {
			return w[i].Payload.TargetSeatNumber
		}
	}
	return 0
}

// HasNominatedThisTurn reports whether the seat already nominated since
// its last TURN_ENDED in the current discussion window. One nomination
// per turn.
func HasNominatedThisTurn(events []Event, seat int) bool {
	w := PhaseWindow(events, PhaseDayDiscussion)
	lastEnd := -1
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].Type == EventTurnEnded && w[i].Payload.SeatNumber == seat {
			lastEnd = i
			break
		}
	}
	for i := lastEnd + 1; i < len(w); i++ {
		if w[i].Type == EventPlayerNominate && w[i].Payload.SeatNumber == seat {
			return true
		}
	}
	return false
}

// EliminationSpeechEnteredFrom returns the phase that led into the
// current elimination-speech window. The post-WIN_CHECK successor
// depends on it: a morning reveal continues into the day, a day
// elimination continues into the night.
func EliminationSpeechEnteredFrom(events []Event) PhaseID {
	w := PhaseWindow(events, PhaseEliminationSpeech)
	for _, ev := range w {
		if ev.Type == EventPhaseChanged && ev.Payload.To == PhaseEliminationSpeech {
			return ev.Payload.From
		}
	}
	return ""
}

// EliminationReason returns the recorded reason a seat left the game.
func EliminationReason(events []Event, seat int) string {
	for _, ev := range events {
		if ev.Type == EventPlayerEliminated && ev.Payload.SeatNumber == seat {
			return ev.Payload.Reason
		}
	}
	return ""
}

// Role lookups over the GAME_SETUP assignment.

func RolesBySeat(events []Event) map[int]RoleID {
	for _, ev := range events {
		if ev.Type != EventGameSetup {
			continue
		}
		roles := make(map[int]RoleID, NumSeats)
		for k, role := range ev.Payload.RolesBySeat {
			if seat, ok := parseSeat(k); ok {
				roles[seat] = role
			}
		}
		return roles
	}
	return map[int]RoleID{}
}

func RoleOf(roles map[int]RoleID, seat int) RoleID {
	if r, ok := roles[seat]; ok {
		return r
	}
	return RoleTown
}

// MafiaSeats lists alive mafia-aligned seats ascending.
func MafiaSeats(alive map[int]bool, roles map[int]RoleID) []int {
	var out []int
	for _, s := range sortedSeats(alive) {
		if RoleOf(roles, s).MafiaAligned() {
			out = append(out, s)
		}
	}
	return out
}

// BossSeat returns the alive MAFIA_BOSS seat, or 0.
func BossSeat(alive map[int]bool, roles map[int]RoleID) int {
	for _, s := range sortedSeats(alive) {
		if RoleOf(roles, s) == RoleMafiaBoss {
			return s
		}
	}
	return 0
}

// SheriffSeat returns the alive SHERIFF seat, or 0.
func SheriffSeat(alive map[int]bool, roles map[int]RoleID) int {
	for _, s := range sortedSeats(alive) {
		if RoleOf(roles, s) == RoleSheriff {
			return s
		}
	}
	return 0
}

// ActingBossSeat is the real boss if alive, otherwise the last seat of
// the boss-last mafia rotation. The fallback inherits the kill
// decision; the sheriff-guess ability dies with the real boss.
func ActingBossSeat(alive map[int]bool, roles map[int]RoleID) int {
	if boss := BossSeat(alive, roles); boss != 0 {
		return boss
	}
	mafia := MafiaSeats(alive, roles)
	if len(mafia) == 0 {
		return 0
	}
	return mafia[len(mafia)-1]
}

// BossLastOrder sorts seats ascending and moves the boss (if present)
// to the end, so the boss hears every suggestion before acting.
func BossLastOrder(seats []int, boss int) []int {
	out := append([]int(nil), seats...)
	sort.Ints(out)
	if boss == 0 {
		return out
	}
	for i, s := range out {
		if s == boss {
			out = append(out[:i], out[i+1:]...)
			out = append(out, boss)
			break
		}
	}
	return out
}

func sortedSeats(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func filterSeats(in []int) []int {
	var out []int
	for _, n := range in {
		if ValidSeat(n) {
			out = append(out, n)
		}
	}
	return out
}

func saturate(idx, length int) int {
	if max := length - 1; idx > max {
		if max < 0 {
			return 0
		}
		return max
	}
	return idx
}

func parseSeat(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if !ValidSeat(n) {
		return 0, false
	}
	return n, true
}
