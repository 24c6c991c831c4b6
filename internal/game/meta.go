package game

import "time"

// Player is one of the 10 fixed seats. Immutable once the game starts.
type Player struct {
	ID         string `json:"id"`
	SeatNumber int    `json:"seatNumber"`
	Name       string `json:"name"`
	Nickname   string `json:"nickname"`
	Profile    string `json:"profile,omitempty"`
}

// Host narrates the game. Not a seat: never eliminated, never votes.
type Host struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type Meta struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Players   []Player   `json:"players"`
	Host      Host       `json:"host"`
}

func (m Meta) Ended() bool { return m.EndedAt != nil }

func (m Meta) PlayerBySeat(seat int) (Player, bool) {
	for _, p := range m.Players {
		if p.SeatNumber == seat {
			return p, true
		}
	}
	return Player{}, false
}
