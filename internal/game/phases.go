package game

type PhaseID string

const (
	PhaseDayDiscussion      PhaseID = "DAY_DISCUSSION"
	PhaseDayVoting          PhaseID = "DAY_VOTING"
	PhaseTieDiscussion      PhaseID = "TIE_DISCUSSION"
	PhaseTieRevote          PhaseID = "TIE_REVOTE"
	PhaseMassElimProposal   PhaseID = "MASS_ELIMINATION_PROPOSAL"
	PhaseEliminationSpeech  PhaseID = "ELIMINATION_SPEECH"
	PhaseWinCheck           PhaseID = "WIN_CHECK"
	PhaseNightMafiaDiscuss  PhaseID = "NIGHT_MAFIA_DISCUSSION"
	PhaseNightMafiaKill     PhaseID = "NIGHT_MAFIA_KILL_SELECT"
	PhaseNightBossGuess     PhaseID = "NIGHT_MAFIA_BOSS_GUESS"
	PhaseNightSheriffAction PhaseID = "NIGHT_SHERIFF_ACTION"
	PhaseMorningReveal      PhaseID = "MORNING_REVEAL"
	PhaseGameEnd            PhaseID = "GAME_END"
)

type PhaseKind string

const (
	PhaseKindDay        PhaseKind = "DAY"
	PhaseKindNight      PhaseKind = "NIGHT"
	PhaseKindTransition PhaseKind = "TRANSITION"
	PhaseKindEnd        PhaseKind = "END"
)

type PhaseDef struct {
	ID          PhaseID
	DisplayName string
	Kind        PhaseKind
}

// Phases is the static phase catalog. Transitions live in the
// orchestrator; this table only carries display metadata.
var Phases = map[PhaseID]PhaseDef{
	PhaseDayDiscussion:      {PhaseDayDiscussion, "Day Discussion", PhaseKindDay},
	PhaseDayVoting:          {PhaseDayVoting, "Day Voting", PhaseKindDay},
	PhaseTieDiscussion:      {PhaseTieDiscussion, "Tie Discussion", PhaseKindDay},
	PhaseTieRevote:          {PhaseTieRevote, "Tie Revote", PhaseKindDay},
	PhaseMassElimProposal:   {PhaseMassElimProposal, "Mass Elimination Proposal", PhaseKindDay},
	PhaseEliminationSpeech:  {PhaseEliminationSpeech, "Elimination Speech", PhaseKindTransition},
	PhaseWinCheck:           {PhaseWinCheck, "Win Check", PhaseKindTransition},
	PhaseNightMafiaDiscuss:  {PhaseNightMafiaDiscuss, "Night: Mafia Discussion", PhaseKindNight},
	PhaseNightMafiaKill:     {PhaseNightMafiaKill, "Night: Kill Select", PhaseKindNight},
	PhaseNightBossGuess:     {PhaseNightBossGuess, "Night: Boss Sheriff Guess", PhaseKindNight},
	PhaseNightSheriffAction: {PhaseNightSheriffAction, "Night: Sheriff Action", PhaseKindNight},
	PhaseMorningReveal:      {PhaseMorningReveal, "Morning Reveal", PhaseKindTransition},
	PhaseGameEnd:            {PhaseGameEnd, "Game End", PhaseKindEnd},
}

func (p PhaseID) Known() bool {
	_, ok := Phases[p]
	return ok
}

// dayPhases are the phases whose events are public table knowledge.
// Used by the role-scoped log projector.
var dayPhases = map[PhaseID]bool{
	PhaseDayDiscussion:     true,
	PhaseDayVoting:         true,
	PhaseTieDiscussion:     true,
	PhaseTieRevote:         true,
	PhaseMassElimProposal:  true,
	PhaseEliminationSpeech: true,
	PhaseMorningReveal:     true,
	PhaseWinCheck:          true,
	PhaseGameEnd:           true,
}

func (p PhaseID) Day() bool { return dayPhases[p] }
