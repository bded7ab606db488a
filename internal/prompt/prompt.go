// Package prompt builds the per-turn prompt string and cleans up generated
// output before it reaches the player.
package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
)

// #region build
// Build assembles the full conversational prompt for one turn: character
// identity, background, the player-facing situation, the active mood's
// behavior modifier, the in-character rules, and the quoted player line. The
// prompt ends inside an open quote so the model continues as the NPC.
func Build(npc persona.NPC, mood persona.Mood, state persona.GameState, userInput string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s. %s\n\n", npc.Name, npc.BasePrompt)
	fmt.Fprintf(&b, "Background: %s\n\n", npc.Background)
	fmt.Fprintf(&b, "Current situation: You are speaking with %s (a level %d %s) who is a %s to you.\n\n",
		state.PlayerName, state.PlayerLevel, state.PlayerClass, state.Relationship)
	fmt.Fprintf(&b, "Your current mood/behavior: %s\n\n", mood.PromptModifier)

	b.WriteString("Important rules:\n")
	fmt.Fprintf(&b, "- Respond as %s would, staying in character\n", npc.Name)
	b.WriteString("- Give thoughtful, complete responses (not just one word)\n")
	b.WriteString("- Do not speak for the other person or continue their dialogue\n")
	b.WriteString("- Respond naturally as if in a real conversation\n\n")

	fmt.Fprintf(&b, "%s says: %q\n\n", state.PlayerName, userInput)
	fmt.Fprintf(&b, "%s responds: \"", npc.Name)

	return b.String()
}
// #endregion build
