package persona

import "strings"

// #region game-state
// GameState captures the player-facing conversation context that drives mood
// selection.
type GameState struct {
	PlayerName   string
	PlayerClass  string
	PlayerLevel  int
	Relationship string // "stranger", "friend", "foe"
	RecentAction string // e.g. "threaten", "greet", "ask for help"
}
// #endregion game-state

// #region mood-selection

// MoodDecision records which mood was selected and why, for provenance
// logging alongside the turn.
type MoodDecision struct {
	Mood   string
	Reason string
}

var threatWords = []string{"threaten", "kill", "harm", "attack"}

var royaltyWords = []string{"king", "queen", "majesty", "lord"}

// PickMood chooses a mood for the NPC given the game state and the user's
// input. Precedence: threat override, relationship, gratitude, royalty
// honorifics, then the NPC's first allowed mood.
func PickMood(npc NPC, state GameState, userInput string) MoodDecision {
	input := strings.ToLower(userInput + " " + state.RecentAction)

	allowed := func(mood string) bool {
		for _, m := range npc.AllowedMoods {
			if m == mood {
				return true
			}
		}
		return false
	}

	for _, w := range threatWords {
		if strings.Contains(input, w) && allowed("rude") {
			return MoodDecision{Mood: "rude", Reason: "threat override: " + w}
		}
	}

	switch state.Relationship {
	case "friend":
		if allowed("friendly") {
			return MoodDecision{Mood: "friendly", Reason: "relationship: friend"}
		}
	case "foe":
		if allowed("rude") {
			return MoodDecision{Mood: "rude", Reason: "relationship: foe"}
		}
		if allowed("suspicious") {
			return MoodDecision{Mood: "suspicious", Reason: "relationship: foe"}
		}
	case "stranger":
		if allowed("suspicious") {
			return MoodDecision{Mood: "suspicious", Reason: "relationship: stranger"}
		}
	}

	if strings.Contains(input, "thank") && allowed("friendly") {
		return MoodDecision{Mood: "friendly", Reason: "gratitude"}
	}

	for _, w := range royaltyWords {
		if strings.Contains(input, w) && allowed("deferential") {
			return MoodDecision{Mood: "deferential", Reason: "honorific: " + w}
		}
	}

	return MoodDecision{Mood: npc.AllowedMoods[0], Reason: "default mood"}
}

// #endregion mood-selection
