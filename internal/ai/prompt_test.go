package ai

import (
	"strings"
	"testing"

	"mafia-table/internal/game"
)

func speakRequest(roleLog string) Request {
	return Request{
		Action:  ActionDayDiscussionSpeak,
		PhaseID: game.PhaseDayDiscussion,
		GameID:  "g1",
		RoleLog: roleLog,
		Persona: Persona{SeatNumber: 3, RoleID: game.RoleTown, Name: "Cara", Nickname: "the Quiet"},
		AliveSeats: []int{1, 2, 3, 4, 5},
	}
}

func TestBuildPromptFirstSpeakerRule(t *testing.T) {
	p := BuildPrompt(speakRequest("Game: g1\nDay: 1\nCurrent phase: DAY_DISCUSSION"))
	if !strings.Contains(p, "you are the FIRST speaker today") {
		t.Fatalf("missing first-speaker rule:\n%s", p)
	}
	if strings.Contains(p, "Anti-echo rule") {
		t.Fatalf("anti-echo rule should not apply with no prior focus:\n%s", p)
	}
}

func TestBuildPromptAntiEchoRule(t *testing.T) {
	log := "Game: g1\n#1 Ava: I do not trust #4, what do you think #2?"
	p := BuildPrompt(speakRequest(log))
	if !strings.Contains(p, "do NOT target seat #2") {
		t.Fatalf("anti-echo rule missing or wrong focus:\n%s", p)
	}
	if strings.Contains(p, "FIRST speaker") {
		t.Fatalf("first-speaker rule must not fire once someone spoke:\n%s", p)
	}
}

func TestBuildPromptPersonaAndSeatLists(t *testing.T) {
	req := Request{
		Action:          ActionNightMafiaSpeak,
		PhaseID:         game.PhaseNightMafiaDiscuss,
		GameID:          "g1",
		RoleLog:         "night log",
		Persona:         Persona{SeatNumber: 2, RoleID: game.RoleMafia, Name: "Ben", Profile: "a careful talker"},
		AwakeSeats:      []int{2, 6, 9},
		KillTargetSeats: []int{1, 3, 4},
	}
	p := BuildPrompt(req)
	for _, want := range []string{
		"You are seat #2.",
		"Your role: MAFIA.",
		"Bio: a careful talker",
		"Awake seats (mafia): 2, 6, 9.",
		"Valid kill targets: 1, 3, 4.",
		"Phase: NIGHT_MAFIA_DISCUSSION",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPromptBulkVoteConstraints(t *testing.T) {
	req := Request{
		Action:         ActionDayVotingDecideAll,
		PhaseID:        game.PhaseDayVoting,
		GameID:         "g1",
		RoleLog:        "log",
		Persona:        Persona{SeatNumber: 1, RoleID: game.RoleTown, Name: "Host"},
		AliveSeats:     []int{1, 2, 3, 4},
		VoteCandidates: []int{2, 4},
	}
	p := BuildPrompt(req)
	if !strings.Contains(p, "Valid vote candidates: 2, 4.") {
		t.Fatalf("candidates missing:\n%s", p)
	}
	if !strings.Contains(p, "at least TWO different targets") {
		t.Fatalf("spread rule missing:\n%s", p)
	}
	if !strings.Contains(p, "Phase: DAY_VOTING") {
		t.Fatalf("phase label missing:\n%s", p)
	}
}

func TestBuildPromptBossMustNotLeakGuess(t *testing.T) {
	req := Request{
		Action:  ActionNightBossSpeakAndPick,
		PhaseID: game.PhaseNightMafiaDiscuss,
		GameID:  "g1",
		Persona: Persona{SeatNumber: 9, RoleID: game.RoleMafiaBoss, Name: "Iris"},
	}
	p := BuildPrompt(req)
	if !strings.Contains(p, "MUST NOT talk about your guess") {
		t.Fatalf("guess secrecy rule missing:\n%s", p)
	}
}
