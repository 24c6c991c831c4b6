package ai

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SystemPrompt is the table ruleset every request carries. A file can
// override it via AI_SYSTEM_PROMPT_PATH.
const SystemPrompt = `You are playing a 10-seat social deduction game of Mafia at a table of AI players.
Seats are numbered 1..10. Roles: 6 Town, 1 Sheriff, 2 Mafia, 1 Mafia Boss. Roles are never revealed publicly.
Days alternate with nights. During the day everyone discusses and votes to eliminate a seat.
During the night the mafia secretly choose a victim, the boss may check one seat for Sheriff, and the Sheriff investigates one seat.
Stay in character, keep statements short, and reason only from the chat log you are given.
You only know your own role. Never reveal hidden information you should not have.`

func systemPrompt() string {
	if path := strings.TrimSpace(os.Getenv("AI_SYSTEM_PROMPT_PATH")); path != "" {
		if raw, err := os.ReadFile(path); err == nil && len(raw) > 0 {
			return string(raw)
		}
	}
	return SystemPrompt
}

var (
	seatRefPattern    = regexp.MustCompile(`#(\d+)\b`)
	spokenLinePattern = regexp.MustCompile(`#\d+\s+[^:\n]+:`)
)

// lastFocusSeat finds the seat the previous speaker focused on: the
// last #N reference on the last non-empty log line.
func lastFocusSeat(roleLog string) int {
	lines := strings.Split(roleLog, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		matches := seatRefPattern.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			return 0
		}
		var seat int
		fmt.Sscanf(matches[len(matches)-1][1], "%d", &seat)
		if seat >= 1 && seat <= 10 {
			return seat
		}
		return 0
	}
	return 0
}

func joinInts(seats []int) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}

// BuildPrompt renders the user prompt: role log, persona block, then
// the per-action task instructions.
func BuildPrompt(req Request) string {
	var task []string
	push := func(lines ...string) { task = append(task, lines...) }

	switch req.Action {
	case ActionDayDiscussionSpeak:
		focus := lastFocusSeat(req.RoleLog)
		anyoneSpoke := spokenLinePattern.MatchString(req.RoleLog)

		push("You must speak as the current speaker.")
		push("Optionally nominate ONE alive seat (1..10). If you do not nominate, set nominateSeatNumber to null.")
		push("Prefer including at least one direct question to a specific seat number OR one explicit lean (town/suspect) with a seat number.")
		if focus != 0 {
			push(fmt.Sprintf("Anti-echo rule: do NOT target seat #%d in your question/lean; pick a different seat number than the last speaker focused.", focus))
			push("Anti-echo rule: do NOT repeat the previous speaker's question verbatim; introduce a new angle.")
		}
		push("Day 1 speaking style: feel free to introduce yourself briefly (optional).")
		push("Try to add at least one concrete read (suspect or town) tied ONLY to the chat log (no invented events).")
		push("Do NOT claim someone said/did something unless it is explicitly in the log (no invented speech, no invented actions).")
		if !anyoneSpoke {
			push("Important: you are the FIRST speaker today. You have zero prior speeches to read.")
			push("So do NOT describe anyone's tone, pushes, or words. Ask 1-2 players for first reads + vote intent and propose a simple plan.")
			push("In this first-speaker case, prefer nominateSeatNumber = null unless you have a very strong reason from setup alone.")
		} else {
			push("Prefer asking a question to a seat that has already spoken today. If you ask a seat that has not spoken, explicitly ask for their first read + vote intent.")
			push("Voting pressure: If you have a plausible suspect lean from the log, you SHOULD nominate them. Only leave it null if you truly have no plausible reason yet.")
		}
		push("",
			"Output JSON ONLY with this exact shape:",
			`{"say":"...","nominateSeatNumber":null}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			`- "say" must be a single short paragraph (1-5 sentences).`,
			`- "nominateSeatNumber" must be null or an integer 1..10.`,
			"- Prefer nominating someone only if you have a plausible reason from the log.")

	case ActionEliminationLastWords:
		push("You have been eliminated and may say your final words to the table.",
			"You cannot take actions (no voting, no nominating). This is only a final statement.",
			"Keep it impactful and in-character. You may accuse one seat or give one town read.",
			"Do NOT claim your role as confirmed; roles are not publicly revealed.",
			"",
			"Output JSON ONLY with this exact shape:",
			`{"say":"..."}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			`- "say" must be a single short paragraph (1-4 sentences).`)

	case ActionDayVotingDecideAll, ActionTieRevoteDecideAll:
		phaseLabel := "DAY_VOTING"
		if req.Action == ActionTieRevoteDecideAll {
			phaseLabel = "TIE_REVOTE"
		}
		push("You are the game orchestrator. Decide how EVERY alive seat votes this round.",
			"Use only information from the provided full log. Roles are not publicly revealed.",
			"Goal: produce a realistic distribution of votes based on stated suspicions/reads, not random votes.",
			"Phase: "+phaseLabel)
		if len(req.VoteCandidates) > 0 {
			push(fmt.Sprintf("Valid vote candidates: %s.", joinInts(req.VoteCandidates)))
		}
		if len(req.AliveSeats) > 0 {
			push(fmt.Sprintf("Alive voters: %s.", joinInts(req.AliveSeats)))
		}
		push("Rules:",
			"- Every alive seat must cast exactly one vote.",
			"- VoterSeatNumber must be an alive seat.",
			"- TargetSeatNumber must be one of the valid candidates.",
			"- Avoid unanimous votes unless the log strongly supports it.",
			"- If there are 2+ candidates, your votes must include at least TWO different targets (do not hard-stack 10-0).",
			"",
			"Output JSON ONLY with this exact shape:",
			`{"votes":[{"voterSeatNumber":1,"targetSeatNumber":2}]}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.")

	case ActionMassElimDecideAll:
		push("You are the game orchestrator. Decide how EVERY alive seat votes YES/NO on the mass elimination proposal.",
			"Use only information from the provided full log. Roles are not publicly revealed.",
			"Goal: produce realistic votes based on stated suspicions/reads and fear of ties.")
		if len(req.VoteCandidates) > 0 {
			push(fmt.Sprintf("Proposal candidates (would be eliminated if YES passes): %s.", joinInts(req.VoteCandidates)))
		}
		if len(req.AliveSeats) > 0 {
			push(fmt.Sprintf("Alive voters: %s.", joinInts(req.AliveSeats)))
		}
		push("Rules:",
			"- Every alive seat must cast exactly one vote.",
			`- vote must be "YES" or "NO".`,
			"- Avoid unanimous votes unless the log strongly supports it.",
			"",
			"Output JSON ONLY with this exact shape:",
			`{"votes":[{"voterSeatNumber":1,"vote":"YES"}]}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.")

	case ActionNightMafiaSpeak:
		push("You are speaking during mafia night discussion.")
		if len(req.AwakeSeats) > 0 {
			push(fmt.Sprintf("Awake seats (mafia): %s.", joinInts(req.AwakeSeats)))
		}
		push("Discuss briefly and optionally suggest a kill target.")
		if len(req.KillTargetSeats) > 0 {
			push(fmt.Sprintf("Valid kill targets: %s.", joinInts(req.KillTargetSeats)))
		}
		push("Do NOT address sleeping seats with questions. Only address awake mafia seats.",
			`If you suggest a kill, mention it explicitly in "say" as: I suggest we kill #<seatNumber>.`,
			`If you do not suggest, set "suggestKillSeatNumber" to null.`,
			`Your "say" must include at least one direct question to a specific seat number OR one explicit suspicion/lean with a seat number.`,
			"",
			"Output JSON ONLY with this exact shape:",
			`{"say":"...","suggestKillSeatNumber":null}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			`- "say" must be a single short paragraph (1-4 sentences).`,
			`- "suggestKillSeatNumber" must be null or an integer 1..10.`)

	case ActionNightBossSpeakAndPick:
		push("You are the mafia boss. Speak briefly and select a kill target (or no kill).",
			"You will ALSO provide guessSheriffSeatNumber in JSON, but you MUST NOT talk about your guess in 'say' (it will be used later during the boss-guess phase).")
		if len(req.AwakeSeats) > 0 {
			push(fmt.Sprintf("Awake seats (mafia): %s.", joinInts(req.AwakeSeats)))
		}
		if len(req.KillTargetSeats) > 0 {
			push(fmt.Sprintf("Valid kill targets: %s.", joinInts(req.KillTargetSeats)))
		}
		push("Do NOT address sleeping seats with questions. Only address awake mafia seats.",
			`If you select a kill, mention it explicitly in "say" as: I select kill target: #<seatNumber>.`,
			"Mafia tactic: if ANYONE publicly claimed Sheriff today, prioritize killing that seat unless it is not a valid kill target.",
			"",
			"Output JSON ONLY with this exact shape:",
			`{"say":"...","selectKillSeatNumber":null,"guessSheriffSeatNumber":1}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			`- "say" must be a single short paragraph (1-4 sentences).`,
			`- "selectKillSeatNumber" must be null or an integer 1..10.`,
			`- "guessSheriffSeatNumber" must be an integer 1..10 and must not be yourself.`)

	case ActionNightBossGuessSheriff:
		push("You are the mafia boss. Choose ONE alive seat to check for Sheriff.",
			"Do not invent results. The host will tell you the result after you choose.",
			"",
			"Output JSON ONLY with this exact shape:",
			`{"guessSheriffSeatNumber":1}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			"- Choose an alive seat (1..10). Do not choose yourself.")

	case ActionNightSheriffInvestigate:
		push("You are the Sheriff. Choose ONE alive seat to investigate tonight.",
			"Do not invent results. The host will tell you the result after you choose.")
		if len(req.InvestigateTargets) > 0 {
			push(fmt.Sprintf("Valid investigation targets: %s.", joinInts(req.InvestigateTargets)))
		}
		push("",
			"Output JSON ONLY with this exact shape:",
			`{"investigateSeatNumber":1}`,
			"",
			"Hard constraints:",
			"- No markdown. No explanations. Output only JSON.",
			"- Choose an alive seat (1..10). Do not choose yourself.")
	}

	p := req.Persona
	personaName := p.Name
	if p.Nickname != "" {
		personaName = fmt.Sprintf("%s (%s)", p.Name, p.Nickname)
	}

	roleLog := strings.TrimSpace(req.RoleLog)
	if roleLog == "" {
		roleLog = "(empty)"
	}

	sections := []string{
		"## Current state (role-specific log)",
		roleLog,
		"",
		"## Persona",
		fmt.Sprintf("You are seat #%d.", p.SeatNumber),
		fmt.Sprintf("Your role: %s.", p.RoleID),
		fmt.Sprintf("Your name: %s.", personaName),
	}
	if p.Profile != "" {
		sections = append(sections, "Bio: "+p.Profile)
	}
	if len(req.AliveSeats) > 0 {
		sections = append(sections, "Alive seats: "+joinInts(req.AliveSeats))
	}
	if len(req.KillTargetSeats) > 0 {
		sections = append(sections, "Kill target seats: "+joinInts(req.KillTargetSeats))
	}
	if len(req.AwakeSeats) > 0 {
		sections = append(sections, "Awake seats: "+joinInts(req.AwakeSeats))
	}
	if len(req.InvestigateTargets) > 0 {
		sections = append(sections, "Investigation target seats: "+joinInts(req.InvestigateTargets))
	}
	if len(req.VoteCandidates) > 0 {
		sections = append(sections, "Vote candidate seats: "+joinInts(req.VoteCandidates))
	}
	sections = append(sections, "", "## Task", "Phase: "+string(req.PhaseID))
	sections = append(sections, task...)

	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}
