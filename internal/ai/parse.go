package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"mafia-table/internal/game"
)

// extractJSONObject pulls the first {...} block out of model output
// that may be wrapped in prose or code fences.
func extractJSONObject(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last <= first {
		return s
	}
	return s[first : last+1]
}

type rawDecision struct {
	Say         *string   `json:"say"`
	Nominate    *int      `json:"nominateSeatNumber"`
	Suggest     *int      `json:"suggestKillSeatNumber"`
	Select      *int      `json:"selectKillSeatNumber"`
	Guess       *int      `json:"guessSheriffSeatNumber"`
	Investigate *int      `json:"investigateSeatNumber"`
	Votes       []rawVote `json:"votes"`
}

type rawVote struct {
	Voter  *int    `json:"voterSeatNumber"`
	Target *int    `json:"targetSeatNumber"`
	Vote   *string `json:"vote"`
}

func optionalSeat(v *int, field string) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if !game.ValidSeat(*v) {
		return nil, fmt.Errorf("%q must be null or an integer 1..10", field)
	}
	n := *v
	return &n, nil
}

func requiredSeat(v *int, field string) (int, error) {
	if v == nil || !game.ValidSeat(*v) {
		return 0, fmt.Errorf("%q must be an integer 1..10", field)
	}
	return *v, nil
}

func requiredSay(s *string) (string, error) {
	if s == nil {
		return "", fmt.Errorf(`missing/empty "say" string`)
	}
	say := strings.TrimSpace(*s)
	if say == "" {
		return "", fmt.Errorf(`missing/empty "say" string`)
	}
	return say, nil
}

// Parse validates model output against the action's expected shape.
// Errors report what was malformed; callers feed them back into a
// retry prompt or give up.
func Parse(action Action, rawText string) (*Decision, error) {
	var raw rawDecision
	if err := json.Unmarshal([]byte(extractJSONObject(rawText)), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	d := &Decision{}
	switch action {
	case ActionDayDiscussionSpeak:
		say, err := requiredSay(raw.Say)
		if err != nil {
			return nil, err
		}
		nominate, err := optionalSeat(raw.Nominate, "nominateSeatNumber")
		if err != nil {
			return nil, err
		}
		d.Say, d.NominateSeatNumber = say, nominate

	case ActionEliminationLastWords:
		say, err := requiredSay(raw.Say)
		if err != nil {
			return nil, err
		}
		d.Say = say

	case ActionNightMafiaSpeak:
		say, err := requiredSay(raw.Say)
		if err != nil {
			return nil, err
		}
		suggest, err := optionalSeat(raw.Suggest, "suggestKillSeatNumber")
		if err != nil {
			return nil, err
		}
		d.Say, d.SuggestKillSeatNumber = say, suggest

	case ActionNightBossSpeakAndPick:
		say, err := requiredSay(raw.Say)
		if err != nil {
			return nil, err
		}
		sel, err := optionalSeat(raw.Select, "selectKillSeatNumber")
		if err != nil {
			return nil, err
		}
		guess, err := requiredSeat(raw.Guess, "guessSheriffSeatNumber")
		if err != nil {
			return nil, err
		}
		d.Say, d.SelectKillSeatNumber, d.GuessSheriffSeatNumber = say, sel, guess

	case ActionNightBossGuessSheriff:
		guess, err := requiredSeat(raw.Guess, "guessSheriffSeatNumber")
		if err != nil {
			return nil, err
		}
		d.GuessSheriffSeatNumber = guess

	case ActionNightSheriffInvestigate:
		seat, err := requiredSeat(raw.Investigate, "investigateSeatNumber")
		if err != nil {
			return nil, err
		}
		d.InvestigateSeatNumber = seat

	case ActionDayVotingDecideAll, ActionTieRevoteDecideAll:
		if raw.Votes == nil {
			return nil, fmt.Errorf(`missing/invalid "votes" array`)
		}
		for _, v := range raw.Votes {
			if v.Voter == nil || v.Target == nil || !game.ValidSeat(*v.Voter) || !game.ValidSeat(*v.Target) {
				return nil, fmt.Errorf("invalid vote entry values")
			}
			d.Votes = append(d.Votes, Vote{VoterSeatNumber: *v.Voter, TargetSeatNumber: *v.Target})
		}

	case ActionMassElimDecideAll:
		if raw.Votes == nil {
			return nil, fmt.Errorf(`missing/invalid "votes" array`)
		}
		for _, v := range raw.Votes {
			if v.Voter == nil || !game.ValidSeat(*v.Voter) {
				return nil, fmt.Errorf("invalid voterSeatNumber")
			}
			if v.Vote == nil || (*v.Vote != game.VoteYes && *v.Vote != game.VoteNo) {
				return nil, fmt.Errorf(`vote must be "YES" or "NO"`)
			}
			d.MassVotes = append(d.MassVotes, MassVote{VoterSeatNumber: *v.Voter, Vote: *v.Vote})
		}

	default:
		return nil, fmt.Errorf("unsupported action: %s", action)
	}
	return d, nil
}

// ValidateBulkVotes enforces the orchestrated-vote constraints: every
// alive voter exactly once, targets within the candidate set, and at
// least two distinct targets when two or more candidates exist.
func ValidateBulkVotes(votes []Vote, alive, candidates []int) error {
	voters := make(map[int]bool, len(alive))
	for _, s := range alive {
		voters[s] = true
	}
	candidateSet := make(map[int]bool, len(candidates))
	for _, s := range candidates {
		candidateSet[s] = true
	}

	seen := map[int]bool{}
	targets := map[int]bool{}
	for _, v := range votes {
		if !voters[v.VoterSeatNumber] {
			return fmt.Errorf("invalid voterSeatNumber: %d", v.VoterSeatNumber)
		}
		if seen[v.VoterSeatNumber] {
			return fmt.Errorf("duplicate voterSeatNumber: %d", v.VoterSeatNumber)
		}
		if len(candidates) > 0 && !candidateSet[v.TargetSeatNumber] {
			return fmt.Errorf("invalid targetSeatNumber: %d", v.TargetSeatNumber)
		}
		seen[v.VoterSeatNumber] = true
		targets[v.TargetSeatNumber] = true
	}
	if len(seen) != len(voters) {
		return fmt.Errorf("missing votes: expected %d, got %d", len(voters), len(seen))
	}
	if len(candidates) >= 2 && len(targets) < 2 {
		return fmt.Errorf("votes must include at least two different targets when 2+ candidates exist")
	}
	return nil
}

// ValidateMassVotes enforces one YES/NO ballot per alive voter.
func ValidateMassVotes(votes []MassVote, alive []int) error {
	voters := make(map[int]bool, len(alive))
	for _, s := range alive {
		voters[s] = true
	}
	seen := map[int]bool{}
	for _, v := range votes {
		if !voters[v.VoterSeatNumber] {
			return fmt.Errorf("invalid voterSeatNumber: %d", v.VoterSeatNumber)
		}
		if seen[v.VoterSeatNumber] {
			return fmt.Errorf("duplicate voterSeatNumber: %d", v.VoterSeatNumber)
		}
		if v.Vote != game.VoteYes && v.Vote != game.VoteNo {
			return fmt.Errorf("invalid vote for %d", v.VoterSeatNumber)
		}
		seen[v.VoterSeatNumber] = true
	}
	if len(seen) != len(voters) {
		return fmt.Errorf("missing votes: expected %d, got %d", len(voters), len(seen))
	}
	return nil
}
