package game

import "time"

type EventType string

const (
	EventGameCreated       EventType = "GAME_CREATED"
	EventGameSetup         EventType = "GAME_SETUP"
	EventGameEnded         EventType = "GAME_ENDED"
	EventHostMessage       EventType = "HOST_MESSAGE"
	EventPlayerSpeak       EventType = "PLAYER_SPEAK"
	EventPlayerNominate    EventType = "PLAYER_NOMINATE"
	EventPlayerVote        EventType = "PLAYER_VOTE"
	EventMassElimVote      EventType = "MASS_ELIMINATION_VOTE"
	EventPlayerEliminated  EventType = "PLAYER_ELIMINATED"
	EventNightKillSuggest  EventType = "NIGHT_KILL_SUGGEST"
	EventNightKillSelect   EventType = "NIGHT_KILL_SELECT"
	EventNightBossGuess    EventType = "NIGHT_BOSS_GUESS"
	EventNightSheriffCheck EventType = "NIGHT_SHERIFF_INVESTIGATE"
	EventWinResult         EventType = "WIN_RESULT"
	EventTurnEnded         EventType = "TURN_ENDED"
	EventPhaseChanged      EventType = "PHASE_CHANGED"
	EventNightStarted      EventType = "NIGHT_STARTED"
	EventNightResult       EventType = "NIGHT_RESULT"
	EventNightEnded        EventType = "NIGHT_ENDED"
)

var knownEventTypes = map[EventType]bool{
	EventGameCreated: true, EventGameSetup: true, EventGameEnded: true,
	EventHostMessage: true, EventPlayerSpeak: true, EventPlayerNominate: true,
	EventPlayerVote: true, EventMassElimVote: true, EventPlayerEliminated: true,
	EventNightKillSuggest: true, EventNightKillSelect: true,
	EventNightBossGuess: true, EventNightSheriffCheck: true,
	EventWinResult: true, EventTurnEnded: true, EventPhaseChanged: true,
	EventNightStarted: true, EventNightResult: true, EventNightEnded: true,
}

func (t EventType) Known() bool { return knownEventTypes[t] }

type EventKind string

const (
	KindSystem EventKind = "system"
	KindHost   EventKind = "host"
	KindPlayer EventKind = "player"
)

func (k EventKind) Valid() bool {
	return k == KindSystem || k == KindHost || k == KindPlayer
}

// Payload carries the per-type event fields. The set of fields each
// event type uses is closed; everything else is left zero and omitted
// on the wire. Readers must treat missing or out-of-range seat values
// as absent rather than failing the replay.
type Payload struct {
	Text string `json:"text,omitempty"`
	Tag  string `json:"tag,omitempty"`

	SeatNumber       int    `json:"seatNumber,omitempty"`
	TargetSeatNumber int    `json:"targetSeatNumber,omitempty"`
	VoterSeatNumber  int    `json:"voterSeatNumber,omitempty"`
	Vote             string `json:"vote,omitempty"`
	Reason           string `json:"reason,omitempty"`

	From       PhaseID `json:"from,omitempty"`
	To         PhaseID `json:"to,omitempty"`
	Candidates []int   `json:"candidates,omitempty"`
	Eliminated []int   `json:"eliminated,omitempty"`
	Speakers   []int   `json:"speakers,omitempty"`

	RolesBySeat map[string]RoleID `json:"rolesBySeat,omitempty"`

	Winner    string `json:"winner,omitempty"`
	IsSheriff bool   `json:"isSheriff,omitempty"`
	IsMafia   bool   `json:"isMafia,omitempty"`
}

// Elimination reasons.
const (
	ReasonVote      = "VOTE"
	ReasonMassElim  = "MASS_ELIMINATION"
	ReasonNightKill = "MAFIA"
)

// Mass-elimination ballots.
const (
	VoteYes = "YES"
	VoteNo  = "NO"
)

// Event is an immutable fact in a game's append-only log. ID and
// CreatedAt are assigned by the store on append; ordering is append
// order.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Kind      EventKind `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	Payload   Payload   `json:"payload"`
}

// Draft is an event before the store assigns identity.
type Draft struct {
	Type    EventType `json:"type"`
	Kind    EventKind `json:"kind"`
	Payload Payload   `json:"payload"`
}

// ValidSeat reports whether n is a real seat number.
func ValidSeat(n int) bool { return n >= 1 && n <= NumSeats }
