package replay

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/engine"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/sampler"
)

// #region types

// Result captures the outcome of replaying one turn against its expectation.
type Result struct {
	TurnNo     int
	Mood       string
	MoodReason string
	Response   string
	StopReason string
	TokenCount int

	Passed   bool
	Failures []string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Description string
	TotalTurns  int
	Passed      int
	Failed      int
}

// #endregion types

// #region replay
// Run replays every turn of a fixture through a fresh engine over a scripted
// backend. Sampling runs greedy so the scripted token sequence is reproduced
// exactly. Checks are per turn; a failed turn does not stop the run, since
// the tracker state of later turns depends on earlier ones completing.
func Run(fixture *Fixture, library *persona.Library) ([]Result, error) {
	npc, ok := library.NPCByName(fixture.NPCName)
	if !ok {
		return nil, fmt.Errorf("replay: unknown npc %q", fixture.NPCName)
	}

	responses := make([][]int, len(fixture.Turns))
	for i, turn := range fixture.Turns {
		responses[i] = turn.Tokens
	}
	model := engine.NewScriptedModel(fixture.Entries(), fixture.EOS, responses)

	config := engine.DefaultConfig()
	config.Sampling = sampler.Config{Temperature: 0}
	eng, err := engine.New(model, library, config)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	// Fixture token ids come from outside the process; range-check them
	// against the profile before driving the backend.
	for i, turn := range fixture.Turns {
		for _, id := range turn.Tokens {
			if err := eng.Profile().CheckToken(id); err != nil {
				return nil, fmt.Errorf("replay turn %d: %w", i+1, err)
			}
		}
	}

	state := fixture.GameState()
	results := make([]Result, 0, len(fixture.Turns))
	for i, turn := range fixture.Turns {
		tr, err := eng.RunTurn(context.Background(), engine.TurnInput{
			NPC:       npc,
			State:     state,
			UserInput: turn.UserInput,
		})
		if err != nil {
			return nil, fmt.Errorf("replay turn %d: %w", i+1, err)
		}

		r := Result{
			TurnNo:     i + 1,
			Mood:       tr.Mood,
			MoodReason: tr.MoodReason,
			Response:   tr.Response,
			StopReason: tr.StopReason,
			TokenCount: tr.TokenCount,
		}
		r.Failures = check(turn.Expected, tr)
		r.Passed = len(r.Failures) == 0
		results = append(results, r)
	}
	return results, nil
}

// check compares one turn result against its expectation.
func check(want FixtureExpectation, got engine.TurnResult) []string {
	var failures []string
	if want.Mood != "" && got.Mood != want.Mood {
		failures = append(failures, fmt.Sprintf("mood: want %q, got %q", want.Mood, got.Mood))
	}
	if want.StopReason != "" && got.StopReason != want.StopReason {
		failures = append(failures, fmt.Sprintf("stop reason: want %q, got %q", want.StopReason, got.StopReason))
	}
	if want.ResponseContains != "" && !strings.Contains(got.Response, want.ResponseContains) {
		failures = append(failures, fmt.Sprintf("response: want substring %q, got %q", want.ResponseContains, got.Response))
	}
	if want.MinTokens > 0 && got.TokenCount < want.MinTokens {
		failures = append(failures, fmt.Sprintf("token count: want >= %d, got %d", want.MinTokens, got.TokenCount))
	}
	return failures
}

// Summarize computes aggregate stats from replay results.
func Summarize(fixture *Fixture, results []Result) Summary {
	s := Summary{
		Description: fixture.Description,
		TotalTurns:  len(results),
	}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
