package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"mafia-table/internal/ai"
	"mafia-table/internal/config"
	"mafia-table/internal/game"
	"mafia-table/internal/logging"
)

// defaultCast seats ten stock personas when no game exists yet.
var defaultCast = []game.Player{
	{SeatNumber: 1, Name: "Ava", Nickname: "the Analyst", Profile: "Methodical, keeps a mental ledger of who said what."},
	{SeatNumber: 2, Name: "Ben", Nickname: "the Charmer", Profile: "Smooth talker, deflects pressure with jokes."},
	{SeatNumber: 3, Name: "Cara", Nickname: "the Quiet", Profile: "Speaks rarely, watches everything."},
	{SeatNumber: 4, Name: "Dan", Nickname: "the Hothead", Profile: "Quick to accuse, quick to apologize."},
	{SeatNumber: 5, Name: "Eva", Nickname: "the Skeptic", Profile: "Trusts no claim without a reason attached."},
	{SeatNumber: 6, Name: "Finn", Nickname: "the Gambler", Profile: "Loves long-shot reads and bold votes."},
	{SeatNumber: 7, Name: "Gwen", Nickname: "the Peacemaker", Profile: "Tries to cool down every argument."},
	{SeatNumber: 8, Name: "Hugo", Nickname: "the Lawyer", Profile: "Argues both sides before committing."},
	{SeatNumber: 9, Name: "Iris", Nickname: "the Storyteller", Profile: "Wraps every read in a little narrative."},
	{SeatNumber: 10, Name: "Jack", Nickname: "the Veteran", Profile: "Claims to have seen every trick before."},
}

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadHostBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	api := newAPIClient(cfg.ServerURL, time.Duration(cfg.TurnTimeoutMS)*time.Millisecond)
	ctx := context.Background()

	meta, err := resolveGame(ctx, api, cfg.GameID)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve game failed")
	}
	log.Info().Str("game_id", meta.ID).Msg("hosting game")

	if err := runGame(ctx, api, meta, time.Duration(cfg.PollIntervalMS)*time.Millisecond); err != nil {
		log.Fatal().Err(err).Msg("host loop failed")
	}
	log.Info().Str("game_id", meta.ID).Msg("game finished")
}

func resolveGame(ctx context.Context, api *apiClient, gameID string) (game.Meta, error) {
	if gameID != "" {
		return api.Game(ctx, gameID)
	}
	meta, err := api.ActiveGame(ctx)
	if err == nil {
		return meta, nil
	}
	if !strings.Contains(err.Error(), "game_not_found") {
		return game.Meta{}, err
	}
	return api.CreateGame(ctx, defaultCast, game.Host{Name: "Victor", Nickname: "the Host"})
}

func runGame(ctx context.Context, api *apiClient, meta game.Meta, poll time.Duration) error {
	act := func(ctx context.Context, seat int, action ai.Action) (*ai.Decision, error) {
		res, err := api.Act(ctx, meta.ID, seat, action)
		if err != nil {
			return nil, err
		}
		if res.Decision == nil {
			return nil, fmt.Errorf("model output rejected: %s", res.ParseError)
		}
		return res.Decision, nil
	}

	failures := 0
	for {
		events, err := api.Events(ctx, meta.ID)
		if err != nil {
			return err
		}
		orch := game.NewOrchestrator(meta, events, &apiSink{api: api, gameID: meta.ID})

		done, err := step(ctx, orch, act)
		if done {
			if err := api.EndGame(ctx, meta.ID); err != nil {
				return err
			}
			return nil
		}
		if err != nil {
			failures++
			if failures >= 10 {
				return errors.New("too many consecutive turn failures")
			}
			log.Warn().Err(err).Int("failures", failures).Msg("turn failed, retrying")
			time.Sleep(poll)
			continue
		}
		failures = 0
		time.Sleep(poll)
	}
}
