package replay

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
)

// testFixture builds an in-memory fixture with the given turns over a small
// word-token vocabulary. Token 0 is EOS, token 17 the bare quote.
func testFixture(turns []FixtureTurn) *Fixture {
	texts := []string{
		"</s>", "I ", "stand ", "my ", "post ", "and ", "watch ", "the ",
		"gate ", "every ", "day ", "without ", "fail ", "as ", "always ",
		"friend ", ". ", "\"", "Aria", ": ", "more", "words", "to", "fill",
		"out", "this", "guard", "vocab", "set", "up",
	}
	vocabulary := make([]FixtureToken, len(texts))
	for i, txt := range texts {
		vocabulary[i] = FixtureToken{ID: i, Text: txt, Score: float32(len(texts) - i)}
	}
	return &Fixture{
		Description: "in-memory test session",
		EOS:         0,
		Vocabulary:  vocabulary,
		NPCName:     "Krackle",
		Player: FixturePlayer{
			Name: "Aria", Class: "rogue", Level: 3, Relationship: "friend",
		},
		Turns: turns,
	}
}

func TestRunMatchesExpectations(t *testing.T) {
	f := testFixture([]FixtureTurn{
		{
			UserInput: "good morning",
			Tokens:    []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			Expected: FixtureExpectation{
				Mood:             "friendly",
				StopReason:       "eos",
				ResponseContains: "I stand my post",
				MinTokens:        16,
			},
		},
	})

	results, err := Run(f, persona.DefaultLibrary())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("turn should pass, failures: %v", results[0].Failures)
	}
	if results[0].MoodReason == "" {
		t.Fatal("expected a mood reason")
	}
}

func TestRunReportsMismatches(t *testing.T) {
	f := testFixture([]FixtureTurn{
		{
			UserInput: "good morning",
			Tokens:    []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			Expected: FixtureExpectation{
				Mood:             "rude",
				StopReason:       "max_tokens",
				ResponseContains: "no such text",
				MinTokens:        500,
			},
		},
	})

	results, err := Run(f, persona.DefaultLibrary())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Passed {
		t.Fatal("turn should fail every check")
	}
	if len(results[0].Failures) != 4 {
		t.Fatalf("expected 4 failures, got %v", results[0].Failures)
	}
}

func TestRunUncheckedFieldsPass(t *testing.T) {
	// An empty expectation checks nothing, so any outcome passes.
	f := testFixture([]FixtureTurn{
		{UserInput: "good morning", Tokens: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
	})

	results, err := Run(f, persona.DefaultLibrary())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("empty expectation should pass, failures: %v", results[0].Failures)
	}
}

func TestRunRejectsOutOfRangeToken(t *testing.T) {
	f := testFixture([]FixtureTurn{
		{UserInput: "hi", Tokens: []int{1, 99}},
	})

	_, err := Run(f, persona.DefaultLibrary())
	if err == nil {
		t.Fatal("expected error for out-of-range fixture token")
	}
	if !strings.Contains(err.Error(), "turn 1") {
		t.Fatalf("error should name the offending turn, got %v", err)
	}
}

func TestRunUnknownNPC(t *testing.T) {
	f := testFixture([]FixtureTurn{
		{UserInput: "hi", Tokens: []int{1}},
	})
	f.NPCName = "Nobody"

	_, err := Run(f, persona.DefaultLibrary())
	if err == nil {
		t.Fatal("expected error for unknown npc")
	}
}

func TestSummarizeCounts(t *testing.T) {
	f := &Fixture{Description: "stats"}
	results := []Result{
		{TurnNo: 1, Passed: true},
		{TurnNo: 2, Passed: false, Failures: []string{"mood"}},
		{TurnNo: 3, Passed: true},
	}

	s := Summarize(f, results)
	if s.Description != "stats" || s.TotalTurns != 3 || s.Passed != 2 || s.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
