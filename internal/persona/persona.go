// Package persona holds the static persona data tables: role archetypes with
// keyword lists, mood profiles with prompt modifiers and response bounds, and
// NPC definitions. The tables are closed and data-driven: adding an archetype
// or mood is a data change, not a code change.
package persona

import "strings"

// #region types

// Archetype is a role keyword table entry. Keywords are matched as lower-case
// substrings against vocabulary token texts when a turn context is built.
type Archetype struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Mood describes one personality mode: the keyword list used for token
// matching, the prompt modifier injected into the system prompt, and the
// response length bounds the host enforces.
type Mood struct {
	Name           string   `yaml:"name"`
	PromptModifier string   `yaml:"prompt_modifier"`
	MinTokens      int      `yaml:"min_tokens"`
	MaxTokens      int      `yaml:"max_tokens"`
	Keywords       []string `yaml:"keywords"`
}

// NPC is a non-player character definition.
type NPC struct {
	Name         string   `yaml:"name"`
	Archetype    string   `yaml:"archetype"`
	BasePrompt   string   `yaml:"base_prompt"`
	Background   string   `yaml:"background"`
	AllowedMoods []string `yaml:"allowed_moods"`
}

// Library is the full persona data set used by a running engine.
type Library struct {
	Archetypes []Archetype `yaml:"archetypes"`
	Moods      []Mood      `yaml:"moods"`
	NPCs       []NPC       `yaml:"npcs"`
}

// #endregion types

// #region lookups

// RoleKeywords returns the keyword list for the given role label, or nil for
// an unrecognized label. Unknown roles are not an error: they simply match no
// tokens.
func (l *Library) RoleKeywords(role string) []string {
	role = strings.ToLower(role)
	for i := range l.Archetypes {
		if l.Archetypes[i].Name == role {
			return l.Archetypes[i].Keywords
		}
	}
	return nil
}

// MoodKeywords returns the keyword list for the given mood label, or nil for
// an unrecognized label.
func (l *Library) MoodKeywords(mood string) []string {
	mood = strings.ToLower(mood)
	for i := range l.Moods {
		if l.Moods[i].Name == mood {
			return l.Moods[i].Keywords
		}
	}
	return nil
}

// MoodByName returns the mood profile for the given label. Unknown labels fall
// back to the first mood in the library, matching how the host treats a bad
// mode name as the default mode.
func (l *Library) MoodByName(name string) Mood {
	name = strings.ToLower(name)
	for i := range l.Moods {
		if l.Moods[i].Name == name {
			return l.Moods[i]
		}
	}
	return l.Moods[0]
}

// NPCByName returns the NPC with the given name and whether it exists.
func (l *Library) NPCByName(name string) (NPC, bool) {
	for i := range l.NPCs {
		if strings.EqualFold(l.NPCs[i].Name, name) {
			return l.NPCs[i], true
		}
	}
	return NPC{}, false
}

// #endregion lookups

// #region defaults

// DefaultLibrary returns the built-in persona tables.
func DefaultLibrary() *Library {
	return &Library{
		Archetypes: []Archetype{
			{Name: "guard", Keywords: []string{"guard", "watch", "protect", "duty", "patrol", "secure", "defend"}},
			{Name: "tavernkeeper", Keywords: []string{"tavern", "ale", "drink", "brew", "welcome", "inn", "guest", "room"}},
			{Name: "scribe", Keywords: []string{"scroll", "write", "record", "ink", "quill", "document", "archive", "knowledge"}},
			{Name: "merchant", Keywords: []string{"gold", "coin", "trade", "sell", "buy", "price", "goods", "wares"}},
			{Name: "knight", Keywords: []string{"honor", "sword", "shield", "oath", "noble", "quest", "chivalry"}},
			{Name: "wizard", Keywords: []string{"magic", "spell", "arcane", "tome", "staff", "enchant", "ritual"}},
		},
		Moods: []Mood{
			{
				Name:           "friendly",
				PromptModifier: "You respond with warmth, politeness, and helpfulness. Speak in complete sentences.",
				MinTokens:      15,
				MaxTokens:      150,
				Keywords:       []string{"pleased", "welcome", "glad", "happy", "kind", "warm", "cheerful"},
			},
			{
				Name:           "rude",
				PromptModifier: "You respond curtly, with irritation, sarcasm, or disrespect. Keep responses brief but complete.",
				MinTokens:      8,
				MaxTokens:      80,
				Keywords:       []string{"annoyed", "irritated", "bah", "hmph", "whatever", "fool", "waste"},
			},
			{
				Name:           "suspicious",
				PromptModifier: "You respond with mistrust, guarded language, and evasiveness. Answer hesitantly.",
				MinTokens:      12,
				MaxTokens:      120,
				Keywords:       []string{"wary", "careful", "suspicious", "doubt", "trust", "watch", "unsure"},
			},
			{
				Name:           "deferential",
				PromptModifier: "You are very respectful and submissive to the speaker. Use honorifics and speak humbly.",
				MinTokens:      20,
				MaxTokens:      200,
				Keywords:       []string{"sir", "madam", "honor", "respect", "please", "apologize", "forgive"},
			},
			{
				Name:           "stoic",
				PromptModifier: "You speak briefly with little emotion, but still provide complete thoughts.",
				MinTokens:      10,
				MaxTokens:      60,
				Keywords:       []string{"indeed", "understood", "very well", "quite", "certainly"},
			},
		},
		NPCs: []NPC{
			{
				Name:         "Krackle",
				Archetype:    "guard",
				BasePrompt:   "You are Krackle, the deadly front door guard to the Ramsel Dynasty. You are blunt, experienced, and have no time for nonsense. You've seen many adventurers come and go.",
				Background:   "A veteran guard who has protected the dynasty for decades. Wears battle-scarred armor and carries an ancient sword.",
				AllowedMoods: []string{"friendly", "rude", "suspicious"},
			},
			{
				Name:         "Mira",
				Archetype:    "tavernkeeper",
				BasePrompt:   "You are Mira, a world-weary but kind tavernkeeper who welcomes all sorts but is slow to trust. You've heard countless stories from travelers.",
				Background:   "Runs 'The Weary Traveler' tavern. Has graying hair and knowing eyes that have seen much of the world through her patrons.",
				AllowedMoods: []string{"friendly", "suspicious", "stoic"},
			},
			{
				Name:         "Feylan",
				Archetype:    "scribe",
				BasePrompt:   "You are Feylan, an anxious young court scribe. You are always deferential to those in authority and eager to help with your knowledge of court matters and records.",
				Background:   "A young scholar with ink-stained fingers and nervous habits. Knows the history and procedures of the royal court intimately.",
				AllowedMoods: []string{"deferential", "friendly", "stoic"},
			},
		},
	}
}

// #endregion defaults
