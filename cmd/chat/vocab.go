package main

import (
	"fmt"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// demoVocabulary builds a synthetic word-token vocabulary for running the
// chat loop without a model file. Scores follow a descending ramp so rank
// order matches the listing order: fantasy dialogue words first, then
// punctuation and quote tokens, then filler ids out to the requested size.
func demoVocabulary(size int) []vocab.Entry {
	words := []string{
		"</s>", "the ", "I ", "you ", "a ", "to ", "and ", "of ", "is ",
		"my ", "your ", "we ", "it ", "that ", "have ", "will ", "not ",
		"be ", "this ", "for ", "with ", "what ", "do ", "no ", "yes ",
		"well ", "now ", "here ", "there ", "come ", "go ", "see ", "know ",
		"say ", "tell ", "ask ", "speak ", "hear ", "friend ", "stranger ",
		"traveler ", "adventurer ", "guard ", "watch ", "gate ", "post ",
		"duty ", "patrol ", "protect ", "defend ", "sword ", "shield ",
		"armor ", "tavern ", "ale ", "drink ", "brew ", "welcome ", "inn ",
		"guest ", "room ", "scroll ", "write ", "record ", "ink ", "quill ",
		"document ", "archive ", "knowledge ", "gold ", "coin ", "trade ",
		"sell ", "buy ", "price ", "goods ", "magic ", "spell ", "arcane ",
		"tome ", "honor ", "oath ", "noble ", "quest ", "king ", "queen ",
		"court ", "royal ", "dynasty ", "kind ", "warm ", "good ", "help ",
		"care ", "glad ", "pleased ", "annoyed ", "dismissive ", "blunt ",
		"wary ", "cautious ", "careful ", "doubt ", "humble ", "polite ",
		"calm ", "quiet ", "brief ", "day ", "night ", "morning ", "evening ",
		"road ", "city ", "wall ", "door ", "key ", "name ", "word ", "story ",
		"news ", "truth ", "lie ", "danger ", "safe ", "trouble ", "peace ",
		". ", ", ", "! ", "? ", "\"", "... ", ".\"", "!\"", "?\"", ": ", "; ",
	}

	if size < len(words) {
		size = len(words)
	}
	entries := make([]vocab.Entry, size)
	for i, w := range words {
		entries[i] = vocab.Entry{ID: i, Text: w, Score: float32(size - i)}
	}
	for i := len(words); i < size; i++ {
		entries[i] = vocab.Entry{ID: i, Text: fmt.Sprintf("tok%d ", i), Score: float32(size - i)}
	}
	return entries
}
