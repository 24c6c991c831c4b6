package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"mafia-table/internal/ai"
	"mafia-table/internal/game"
	"mafia-table/internal/store"
)

type aiActRequest struct {
	GameID     string    `json:"gameId"`
	SeatNumber int       `json:"seatNumber"`
	Action     ai.Action `json:"action"`
	Model      string    `json:"model"`
	PhaseToken string    `json:"phaseToken"`
}

// aiActHandler assembles the role-scoped view of the game for one seat
// and runs a single model call. Bulk-vote actions act on behalf of the
// whole table and use the public transcript.
func (s *server) aiActHandler(w http.ResponseWriter, r *http.Request) {
	var body aiActRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !body.Action.Known() {
		writeHTTPError(w, http.StatusBadRequest, "invalid_action")
		return
	}

	meta, err := s.store.Game(r.Context(), body.GameID)
	if errors.Is(err, store.ErrNotFound) {
		writeHTTPError(w, http.StatusNotFound, "game_not_found")
		return
	}
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	events, err := s.store.Events(r.Context(), body.GameID)
	if err != nil {
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	req, err := buildActRequest(meta, events, body)
	if err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	token := body.PhaseToken
	if token == "" {
		token = fmt.Sprintf("%s:%d", req.PhaseID, len(events))
	}

	res, err := s.driver.Act(r.Context(), req, token)
	if errors.Is(err, ai.ErrBusy) {
		writeHTTPError(w, http.StatusTooManyRequests, "ai_busy")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game_id", body.GameID).Str("action", string(body.Action)).
			Msg("ai act failed")
		writeHTTPError(w, http.StatusBadGateway, "ai_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func buildActRequest(meta game.Meta, events []game.Event, body aiActRequest) (ai.Request, error) {
	snap := game.Reconstruct(events)
	aliveSet := snap.AliveSet()
	logs := game.BuildRoleLogs(meta, events)

	req := ai.Request{
		Model:      body.Model,
		Action:     body.Action,
		PhaseID:    snap.PhaseID,
		GameID:     meta.ID,
		AliveSeats: snap.Alive,
	}

	switch body.Action {
	case ai.ActionDayVotingDecideAll, ai.ActionTieRevoteDecideAll, ai.ActionMassElimDecideAll:
		// The bulk decider speaks for the table, not for a seat, and
		// only ever sees public information.
		req.Persona = ai.Persona{Name: meta.Host.Name, Nickname: meta.Host.Nickname, RoleID: game.RoleTown}
		req.RoleLog = logs.For(game.RoleTown)
		switch body.Action {
		case ai.ActionDayVotingDecideAll:
			req.VoteCandidates = game.Nominees(events, aliveSet)
		case ai.ActionTieRevoteDecideAll:
			req.VoteCandidates = game.TieCandidates(events, game.PhaseTieRevote)
		default:
			req.VoteCandidates = snap.TieCandidates
		}
		return req, nil
	}

	seat := body.SeatNumber
	if !game.ValidSeat(seat) {
		return ai.Request{}, fmt.Errorf("invalid seat %d", seat)
	}
	player, ok := meta.PlayerBySeat(seat)
	if !ok {
		return ai.Request{}, fmt.Errorf("no player at seat %d", seat)
	}
	role := game.RoleOf(snap.RolesBySeat, seat)

	req.Persona = ai.Persona{
		SeatNumber: seat,
		RoleID:     role,
		Name:       player.Name,
		Nickname:   player.Nickname,
		Profile:    player.Profile,
	}
	req.RoleLog = logs.For(role)

	switch body.Action {
	case ai.ActionNightMafiaSpeak, ai.ActionNightBossSpeakAndPick:
		req.AwakeSeats = game.MafiaSeats(aliveSet, snap.RolesBySeat)
		for _, n := range snap.Alive {
			if !game.RoleOf(snap.RolesBySeat, n).MafiaAligned() {
				req.KillTargetSeats = append(req.KillTargetSeats, n)
			}
		}
	case ai.ActionNightSheriffInvestigate:
		for _, n := range snap.Alive {
			if n != seat {
				req.InvestigateTargets = append(req.InvestigateTargets, n)
			}
		}
	}
	return req, nil
}
