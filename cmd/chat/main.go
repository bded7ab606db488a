package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/engine"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/transcript"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("DIALOGUE_DB", "dialogue.db"), "path to transcript database")
	ggufPath := flag.String("gguf", envOr("DIALOGUE_GGUF", ""), "load vocabulary from a GGUF model file (synthetic vocab when empty)")
	personaPath := flag.String("personas", envOr("DIALOGUE_PERSONAS", ""), "override persona library YAML")
	npcName := flag.String("npc", "Krackle", "NPC to talk to")
	playerName := flag.String("player", "Adventurer", "player character name")
	playerClass := flag.String("class", "", "player character class")
	playerLevel := flag.Int("level", 1, "player character level")
	relationship := flag.String("relationship", "stranger", "NPC's view of the player: stranger, friend, foe")
	recentAction := flag.String("action", "", "player's most recent notable action")
	vocabSize := flag.Int("vocab-size", 1000, "synthetic vocabulary size (ignored with -gguf)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "noise seed for the synthetic backend")
	flag.Parse()

	library := persona.DefaultLibrary()
	if *personaPath != "" {
		var err error
		library, err = persona.LoadLibrary(*personaPath)
		if err != nil {
			log.Fatalf("failed to load persona library: %v", err)
		}
	}

	entries, eos, err := loadVocabulary(*ggufPath, *vocabSize)
	if err != nil {
		log.Fatalf("failed to load vocabulary: %v", err)
	}

	model := engine.NewSyntheticModel(entries, eos, *seed)
	eng, err := engine.New(model, library, engine.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}

	store, err := transcript.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	npc, ok := library.NPCByName(*npcName)
	if !ok {
		log.Fatalf("unknown npc %q", *npcName)
	}
	state := persona.GameState{
		PlayerName:   *playerName,
		PlayerClass:  *playerClass,
		PlayerLevel:  *playerLevel,
		Relationship: *relationship,
		RecentAction: *recentAction,
	}

	conv, err := store.CreateConversation(npc.Name, state.PlayerName, state.PlayerClass, state.PlayerLevel, state.Relationship)
	if err != nil {
		log.Fatalf("failed to create conversation: %v", err)
	}

	fmt.Println("Dialogue engine ready.")
	fmt.Printf("  DB: %s | Vocab: %d tokens | NPC: %s (%s)\n", *dbPath, len(entries), npc.Name, npc.Archetype)
	fmt.Println("Type a line (or 'quit' to exit, 'npc <name>' to switch):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}
		if name, found := strings.CutPrefix(input, "npc "); found {
			next, ok := library.NPCByName(strings.TrimSpace(name))
			if !ok {
				log.Printf("unknown npc %q", name)
				continue
			}
			npc = next
			conv, err = store.CreateConversation(npc.Name, state.PlayerName, state.PlayerClass, state.PlayerLevel, state.Relationship)
			if err != nil {
				log.Printf("create conversation: %v", err)
				continue
			}
			fmt.Printf("Now talking to %s (%s).\n", npc.Name, npc.Archetype)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		result, err := eng.RunTurn(ctx, engine.TurnInput{NPC: npc, State: state, UserInput: input})
		cancel()
		if err != nil {
			log.Printf("turn error: %v", err)
			continue
		}

		fmt.Printf("\n%s: %s\n\n", npc.Name, result.Response)

		_, err = store.AppendTurn(conv.ID, transcript.Turn{
			UserInput:  input,
			Mood:       result.Mood,
			MoodReason: result.MoodReason,
			Response:   result.Response,
			TokenCount: result.TokenCount,
			StopReason: result.StopReason,
			GenMillis:  result.Elapsed.Milliseconds(),
		})
		if err != nil {
			log.Printf("transcript error: %v", err)
		}

		fmt.Printf("[%s] mood=%s (%s) tokens=%d stop=%s elapsed=%dms\n",
			conv.ID[:8], result.Mood, result.MoodReason, result.TokenCount,
			result.StopReason, result.Elapsed.Milliseconds())
	}
}
// #endregion main

// #region helpers

// loadVocabulary returns the token list and EOS id, from a GGUF file when a
// path is given, otherwise the built-in synthetic vocabulary.
func loadVocabulary(ggufPath string, size int) ([]vocab.Entry, int, error) {
	if ggufPath == "" {
		return demoVocabulary(size), 0, nil
	}
	entries, err := vocab.LoadGGUF(ggufPath)
	if err != nil {
		return nil, 0, err
	}
	return entries, findEOS(entries), nil
}

// findEOS searches for a conventional end-of-sequence token.
func findEOS(entries []vocab.Entry) int {
	for _, e := range entries {
		switch e.Text {
		case "</s>", "<|endoftext|>", "<eos>":
			return e.ID
		}
	}
	return -1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
