package game

import (
	"fmt"
	"strings"
)

// RoleLogs holds the per-role transcripts fed to automated players.
// The projector is the visibility boundary: a role only ever receives
// lines derived from events that role is entitled to observe.
type RoleLogs struct {
	Town    string
	Sheriff string
	Mafia   string
	Boss    string
}

func (l RoleLogs) For(role RoleID) string {
	switch role {
	case RoleSheriff:
		return l.Sheriff
	case RoleMafia:
		return l.Mafia
	case RoleMafiaBoss:
		return l.Boss
	default:
		return l.Town
	}
}

func seatRef(meta Meta, seat int) string {
	if p, ok := meta.PlayerBySeat(seat); ok {
		return fmt.Sprintf("#%d %s", seat, p.Name)
	}
	return fmt.Sprintf("#%d Seat #%d", seat, seat)
}

func seatRefs(meta Meta, seats []int) string {
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		parts = append(parts, seatRef(meta, s))
	}
	return strings.Join(parts, ", ")
}

func phaseChangedLine(meta Meta, p Payload) string {
	switch p.To {
	case PhaseDayDiscussion:
		return "Day discussion starts."
	case PhaseDayVoting:
		return "Voting starts."
	case PhaseTieDiscussion:
		return "Tie discussion starts."
	case PhaseTieRevote:
		return "Tie revote starts."
	case PhaseMassElimProposal:
		return "Mass elimination proposal vote starts."
	case PhaseEliminationSpeech:
		if q := filterSeats(p.Eliminated); len(q) > 0 {
			return fmt.Sprintf("Final words: %s.", seatRefs(meta, q))
		}
		return "Final words phase starts."
	case PhaseNightMafiaDiscuss:
		return "Night falls. Mafia discuss."
	case PhaseNightMafiaKill:
		return "Night: kill selection starts."
	case PhaseNightBossGuess:
		return "Night: mafia boss check starts."
	case PhaseNightSheriffAction:
		return "Night: sheriff investigation starts."
	case PhaseMorningReveal:
		return "Morning reveal."
	case PhaseWinCheck:
		return "Checking win conditions."
	case PhaseGameEnd:
		return "Game ended."
	default:
		if p.From != "" && p.To != "" {
			return fmt.Sprintf("Phase: %s -> %s.", p.From, p.To)
		}
		return ""
	}
}

// formatEventLine textualizes one event, or returns "" for events that
// never appear in transcripts (host messages are narrated separately
// and would leak night results).
func formatEventLine(meta Meta, ev Event) string {
	p := ev.Payload
	switch ev.Type {
	case EventPlayerSpeak:
		if !ValidSeat(p.SeatNumber) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%s: %s", seatRef(meta, p.SeatNumber), p.Text))
	case EventPlayerNominate:
		if !ValidSeat(p.SeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		return fmt.Sprintf("%s nominated %s.", seatRef(meta, p.SeatNumber), seatRef(meta, p.TargetSeatNumber))
	case EventPlayerVote:
		if !ValidSeat(p.VoterSeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		return fmt.Sprintf("%s voted for %s.", seatRef(meta, p.VoterSeatNumber), seatRef(meta, p.TargetSeatNumber))
	case EventMassElimVote:
		if !ValidSeat(p.VoterSeatNumber) {
			return ""
		}
		vote := VoteNo
		if p.Vote == VoteYes {
			vote = VoteYes
		}
		return fmt.Sprintf("%s voted %s for mass elimination.", seatRef(meta, p.VoterSeatNumber), vote)
	case EventPlayerEliminated:
		if !ValidSeat(p.SeatNumber) {
			return ""
		}
		reason := p.Reason
		if reason == "" {
			reason = "UNKNOWN"
		}
		return fmt.Sprintf("%s was eliminated (reason: %s).", seatRef(meta, p.SeatNumber), reason)
	case EventNightKillSuggest:
		if !ValidSeat(p.SeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		return fmt.Sprintf("%s suggested killing %s.", seatRef(meta, p.SeatNumber), seatRef(meta, p.TargetSeatNumber))
	case EventNightKillSelect:
		if !ValidSeat(p.SeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		return fmt.Sprintf("%s selected kill target: %s.", seatRef(meta, p.SeatNumber), seatRef(meta, p.TargetSeatNumber))
	case EventNightBossGuess:
		if !ValidSeat(p.SeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		verdict := "Not Sheriff"
		if p.IsSheriff {
			verdict = "Sheriff"
		}
		return fmt.Sprintf("%s (boss) checked %s -> %s.", seatRef(meta, p.SeatNumber), seatRef(meta, p.TargetSeatNumber), verdict)
	case EventNightSheriffCheck:
		if !ValidSeat(p.SeatNumber) || !ValidSeat(p.TargetSeatNumber) {
			return ""
		}
		verdict := "Town"
		if p.IsMafia {
			verdict = "Mafia"
		}
		return fmt.Sprintf("%s (sheriff) investigated %s -> %s.", seatRef(meta, p.SeatNumber), seatRef(meta, p.TargetSeatNumber), verdict)
	case EventPhaseChanged:
		if p.From == "" || p.To == "" {
			return ""
		}
		return phaseChangedLine(meta, p)
	case EventWinResult:
		return strings.TrimSpace("WINNER: " + p.Winner)
	case EventGameEnded:
		return "GAME ENDED."
	default:
		return ""
	}
}

// visibleTo decides whether a role may see the given event. phaseAt is
// the phase in effect when the event was appended. Day-phase public
// events are visible to everyone; night actions only to the roles that
// were awake for them. Host messages are suppressed during the boss
// and sheriff result phases so results cannot leak through narration.
func visibleTo(role RoleID, phaseAt PhaseID, ev Event) bool {
	mafiaAction := ev.Type == EventNightKillSuggest || ev.Type == EventNightKillSelect
	bossCheck := ev.Type == EventNightBossGuess
	sheriffCheck := ev.Type == EventNightSheriffCheck

	hostResultLeak := ev.Type == EventHostMessage &&
		(phaseAt == PhaseNightBossGuess || phaseAt == PhaseNightSheriffAction)

	public := phaseAt.Day() && !hostResultLeak && !mafiaAction && !bossCheck && !sheriffCheck

	switch role {
	case RoleSheriff:
		return public || sheriffCheck
	case RoleMafia:
		return public || mafiaAction ||
			(ev.Type == EventHostMessage && phaseAt == PhaseNightMafiaDiscuss)
	case RoleMafiaBoss:
		return public || mafiaAction || bossCheck ||
			(ev.Type == EventHostMessage &&
				(phaseAt == PhaseNightMafiaDiscuss || phaseAt == PhaseNightMafiaKill || phaseAt == PhaseNightBossGuess))
	default:
		return public
	}
}

// BuildRoleLogs renders the event history into one transcript per
// role, each prefixed with a header of the current table state.
func BuildRoleLogs(meta Meta, events []Event) RoleLogs {
	snap := Reconstruct(events)

	header := []string{
		"Game: " + meta.ID,
		fmt.Sprintf("Day: %d", snap.DayNumber),
		"Current phase: " + string(snap.PhaseID),
		fmt.Sprintf("Alive (%d): %s", len(snap.Alive), seatRefs(meta, snap.Alive)),
		"",
	}

	rolesOrder := []RoleID{RoleTown, RoleSheriff, RoleMafia, RoleMafiaBoss}
	lines := map[RoleID][]string{}
	for _, r := range rolesOrder {
		lines[r] = append([]string(nil), header...)
	}

	phase := PhaseDayDiscussion
	for _, ev := range events {
		phaseAt := phase
		if ev.Type == EventPhaseChanged && ev.Payload.To != "" {
			phase = ev.Payload.To
			phaseAt = phase
		}

		line := formatEventLine(meta, ev)
		if line == "" {
			continue
		}
		for _, r := range rolesOrder {
			if visibleTo(r, phaseAt, ev) {
				lines[r] = append(lines[r], line)
			}
		}
	}

	return RoleLogs{
		Town:    strings.Join(lines[RoleTown], "\n"),
		Sheriff: strings.Join(lines[RoleSheriff], "\n"),
		Mafia:   strings.Join(lines[RoleMafia], "\n"),
		Boss:    strings.Join(lines[RoleMafiaBoss], "\n"),
	}
}
