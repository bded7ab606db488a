// Package replay runs recorded conversations through the engine with a
// scripted backend, checking the mood decision, stop reason, and response
// text of every turn against recorded expectations.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string         `json:"description"`
	EOS         int            `json:"eos"`
	Vocabulary  []FixtureToken `json:"vocabulary"`
	NPCName     string         `json:"npc_name"`
	Player      FixturePlayer  `json:"player"`
	Turns       []FixtureTurn  `json:"turns"`
}

// FixtureToken mirrors vocab.Entry with JSON tags.
type FixtureToken struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// FixturePlayer is the JSON-serializable player state for the run.
type FixturePlayer struct {
	Name         string `json:"name"`
	Class        string `json:"class"`
	Level        int    `json:"level"`
	Relationship string `json:"relationship"`
	RecentAction string `json:"recent_action"`
}

// FixtureTurn scripts one turn: the player's line, the token ids the backend
// should emit, and the outcome the run must reproduce.
type FixtureTurn struct {
	UserInput string             `json:"user_input"`
	Tokens    []int              `json:"tokens"`
	Expected  FixtureExpectation `json:"expected"`
}

// FixtureExpectation captures the checked outcome per turn. Empty string
// fields are not checked; a MinTokens of zero is not checked.
type FixtureExpectation struct {
	Mood             string `json:"mood"`
	StopReason       string `json:"stop_reason"`
	ResponseContains string `json:"response_contains"`
	MinTokens        int    `json:"min_tokens"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Vocabulary) == 0 {
		return nil, fmt.Errorf("fixture %s: empty vocabulary", path)
	}
	if len(f.Turns) == 0 {
		return nil, fmt.Errorf("fixture %s: no turns", path)
	}
	return &f, nil
}

// Entries converts the fixture vocabulary to vocab entries.
func (f *Fixture) Entries() []vocab.Entry {
	entries := make([]vocab.Entry, len(f.Vocabulary))
	for i, tok := range f.Vocabulary {
		entries[i] = vocab.Entry{ID: tok.ID, Text: tok.Text, Score: tok.Score}
	}
	return entries
}

// GameState converts the fixture player block to a persona game state.
func (f *Fixture) GameState() persona.GameState {
	return persona.GameState{
		PlayerName:   f.Player.Name,
		PlayerClass:  f.Player.Class,
		PlayerLevel:  f.Player.Level,
		Relationship: f.Player.Relationship,
		RecentAction: f.Player.RecentAction,
	}
}

// #endregion fixture-loader
