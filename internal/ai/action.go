package ai

import "mafia-table/internal/game"

// Action names one decision an automated player (or the bulk-vote
// orchestrator) is asked to make.
type Action string

const (
	ActionDayDiscussionSpeak      Action = "DAY_DISCUSSION_SPEAK"
	ActionDayVotingDecideAll      Action = "DAY_VOTING_DECIDE_ALL"
	ActionTieRevoteDecideAll      Action = "TIE_REVOTE_DECIDE_ALL"
	ActionMassElimDecideAll       Action = "MASS_ELIMINATION_PROPOSAL_DECIDE_ALL"
	ActionEliminationLastWords    Action = "ELIMINATION_SPEECH_LAST_WORDS"
	ActionNightMafiaSpeak         Action = "NIGHT_MAFIA_DISCUSSION_SPEAK"
	ActionNightBossSpeakAndPick   Action = "NIGHT_MAFIA_BOSS_DISCUSSION_SELECT_KILL_GUESS_SHERIFF"
	ActionNightBossGuessSheriff   Action = "NIGHT_MAFIA_BOSS_GUESS_SHERIFF"
	ActionNightSheriffInvestigate Action = "NIGHT_SHERIFF_INVESTIGATE"
)

var knownActions = map[Action]bool{
	ActionDayDiscussionSpeak: true, ActionDayVotingDecideAll: true,
	ActionTieRevoteDecideAll: true, ActionMassElimDecideAll: true,
	ActionEliminationLastWords: true, ActionNightMafiaSpeak: true,
	ActionNightBossSpeakAndPick: true, ActionNightBossGuessSheriff: true,
	ActionNightSheriffInvestigate: true,
}

func (a Action) Known() bool { return knownActions[a] }

// Persona identifies the seat the model plays.
type Persona struct {
	SeatNumber int         `json:"seatNumber"`
	RoleID     game.RoleID `json:"roleId"`
	Name       string      `json:"name"`
	Nickname   string      `json:"nickname,omitempty"`
	Profile    string      `json:"profile,omitempty"`
}

// Request carries everything the prompt builder needs. The role log
// text is the only game history the model sees; the seat lists scope
// the valid choices for the current action.
type Request struct {
	Model   string       `json:"model,omitempty"`
	Action  Action       `json:"action"`
	PhaseID game.PhaseID `json:"phaseId"`
	GameID  string       `json:"gameId"`
	RoleLog string       `json:"roleLogText"`
	Persona Persona      `json:"persona"`

	AliveSeats         []int `json:"aliveSeatNumbers,omitempty"`
	KillTargetSeats    []int `json:"killTargetSeatNumbers,omitempty"`
	AwakeSeats         []int `json:"awakeSeatNumbers,omitempty"`
	InvestigateTargets []int `json:"investigateTargetSeatNumbers,omitempty"`
	VoteCandidates     []int `json:"voteCandidateSeatNumbers,omitempty"`
}

type Vote struct {
	VoterSeatNumber  int `json:"voterSeatNumber"`
	TargetSeatNumber int `json:"targetSeatNumber"`
}

type MassVote struct {
	VoterSeatNumber int    `json:"voterSeatNumber"`
	Vote            string `json:"vote"`
}

// Decision is the parsed model output. Only the fields relevant to
// the request's action are populated; optional seat picks stay nil
// when the model declined.
type Decision struct {
	Say                    string     `json:"say,omitempty"`
	NominateSeatNumber     *int       `json:"nominateSeatNumber,omitempty"`
	SuggestKillSeatNumber  *int       `json:"suggestKillSeatNumber,omitempty"`
	SelectKillSeatNumber   *int       `json:"selectKillSeatNumber,omitempty"`
	GuessSheriffSeatNumber int        `json:"guessSheriffSeatNumber,omitempty"`
	InvestigateSeatNumber  int        `json:"investigateSeatNumber,omitempty"`
	Votes                  []Vote     `json:"votes,omitempty"`
	MassVotes              []MassVote `json:"massVotes,omitempty"`
}

// Result reports one completed model call, parsed or not. A parse
// failure leaves Decision nil and sets ParseError; the caller decides
// whether to retry.
type Result struct {
	RequestID  string    `json:"requestId"`
	Model      string    `json:"model"`
	Prompt     string    `json:"prompt"`
	OutputText string    `json:"outputText"`
	LatencyMS  int64     `json:"latencyMs"`
	Decision   *Decision `json:"parsed"`
	ParseError string    `json:"parseError,omitempty"`
}
