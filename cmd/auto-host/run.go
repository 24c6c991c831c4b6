package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"mafia-table/internal/ai"
	"mafia-table/internal/game"
)

// actFunc produces one decision for a seat. Seat 0 means the bulk
// decider acting for the whole table.
type actFunc func(ctx context.Context, seat int, action ai.Action) (*ai.Decision, error)

// step advances the game by one turn: it asks the model for the
// current actor's decision and applies it through the orchestrator.
// Returns true when the game has reached its terminal phase.
func step(ctx context.Context, orch *game.Orchestrator, act actFunc) (bool, error) {
	snap := orch.Snapshot()
	seat := snap.CurrentSpeakerSeat

	switch snap.PhaseID {
	case game.PhaseGameEnd:
		return true, nil

	case game.PhaseDayDiscussion:
		d, err := act(ctx, seat, ai.ActionDayDiscussionSpeak)
		if err != nil {
			return false, err
		}
		if err := orch.Speak(ctx, d.Say); err != nil {
			return false, err
		}
		if d.NominateSeatNumber != nil {
			if err := orch.Nominate(ctx, *d.NominateSeatNumber); err != nil {
				log.Warn().Err(err).Int("seat", seat).Msg("nomination dropped")
			}
		}
		return false, orch.EndTurn(ctx)

	case game.PhaseTieDiscussion:
		d, err := act(ctx, seat, ai.ActionDayDiscussionSpeak)
		if err != nil {
			return false, err
		}
		if err := orch.Speak(ctx, d.Say); err != nil {
			return false, err
		}
		return false, orch.EndTurn(ctx)

	case game.PhaseEliminationSpeech:
		d, err := act(ctx, seat, ai.ActionEliminationLastWords)
		if err != nil {
			return false, err
		}
		if err := orch.Speak(ctx, d.Say); err != nil {
			return false, err
		}
		return false, orch.EndTurn(ctx)

	case game.PhaseDayVoting:
		return false, castBallots(ctx, orch, act, ai.ActionDayVotingDecideAll, game.PhaseDayVoting)

	case game.PhaseTieRevote:
		return false, castBallots(ctx, orch, act, ai.ActionTieRevoteDecideAll, game.PhaseTieRevote)

	case game.PhaseMassElimProposal:
		d, err := act(ctx, 0, ai.ActionMassElimDecideAll)
		if err != nil {
			return false, err
		}
		byVoter := map[int]string{}
		for _, v := range d.MassVotes {
			byVoter[v.VoterSeatNumber] = v.Vote
		}
		for {
			cur := orch.Snapshot()
			if cur.PhaseID != game.PhaseMassElimProposal {
				return false, nil
			}
			vote, ok := byVoter[cur.CurrentSpeakerSeat]
			if !ok {
				return false, fmt.Errorf("no ballot for seat %d", cur.CurrentSpeakerSeat)
			}
			if err := orch.CastProposalVote(ctx, vote == game.VoteYes); err != nil {
				return false, err
			}
		}

	case game.PhaseNightMafiaDiscuss:
		acting := game.ActingBossSeat(snap.AliveSet(), snap.RolesBySeat)
		if seat == acting {
			d, err := act(ctx, seat, ai.ActionNightBossSpeakAndPick)
			if err != nil {
				return false, err
			}
			if err := orch.Speak(ctx, d.Say); err != nil {
				return false, err
			}
			if d.SelectKillSeatNumber != nil {
				if err := orch.SelectKill(ctx, *d.SelectKillSeatNumber); err != nil {
					log.Warn().Err(err).Int("seat", seat).Msg("kill selection dropped")
				}
			}
			return false, orch.EndTurn(ctx)
		}
		d, err := act(ctx, seat, ai.ActionNightMafiaSpeak)
		if err != nil {
			return false, err
		}
		if err := orch.Speak(ctx, d.Say); err != nil {
			return false, err
		}
		if d.SuggestKillSeatNumber != nil {
			if err := orch.SuggestKill(ctx, *d.SuggestKillSeatNumber); err != nil {
				log.Warn().Err(err).Int("seat", seat).Msg("kill suggestion dropped")
			}
		}
		return false, orch.EndTurn(ctx)

	case game.PhaseNightMafiaKill:
		// The boss already picked (or declined) during their discussion
		// turn; this phase only hands the night onward.
		return false, orch.EndTurn(ctx)

	case game.PhaseNightBossGuess:
		d, err := act(ctx, seat, ai.ActionNightBossGuessSheriff)
		if err != nil {
			return false, err
		}
		return false, orch.BossGuess(ctx, d.GuessSheriffSeatNumber)

	case game.PhaseNightSheriffAction:
		d, err := act(ctx, seat, ai.ActionNightSheriffInvestigate)
		if err != nil {
			return false, err
		}
		return false, orch.SheriffInvestigate(ctx, d.InvestigateSeatNumber)

	default:
		return false, fmt.Errorf("cannot act in phase %s", snap.PhaseID)
	}
}

func castBallots(ctx context.Context, orch *game.Orchestrator, act actFunc, action ai.Action, phase game.PhaseID) error {
	d, err := act(ctx, 0, action)
	if err != nil {
		return err
	}
	byVoter := map[int]int{}
	for _, v := range d.Votes {
		byVoter[v.VoterSeatNumber] = v.TargetSeatNumber
	}
	for {
		cur := orch.Snapshot()
		if cur.PhaseID != phase {
			return nil
		}
		target, ok := byVoter[cur.CurrentSpeakerSeat]
		if !ok {
			return fmt.Errorf("no ballot for seat %d", cur.CurrentSpeakerSeat)
		}
		if err := orch.CastVote(ctx, target); err != nil {
			return err
		}
	}
}
