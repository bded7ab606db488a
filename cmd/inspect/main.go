package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/transcript"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to dialogue.db")
	last := flag.Int("last", 20, "show N most recent conversations")
	conversation := flag.String("conversation", "", "show full transcript for one conversation")
	mood := flag.String("mood", "", "filter turns to one mood in transcript view")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/dialogue.db [--last N] [--conversation id] [--mood name] [--json]")
		os.Exit(2)
	}

	store, err := transcript.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *conversation != "" {
		if err := runTranscriptMode(store, *conversation, *mood, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(store, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ConversationID string `json:"conversation_id"`
	NPC            string `json:"npc"`
	Player         string `json:"player"`
	Relationship   string `json:"relationship"`
	Turns          int    `json:"turns"`
	CreatedAt      string `json:"created_at"`
}

func runListMode(store *transcript.Store, last int, jsonOut bool) error {
	convs, err := store.ListConversations(last)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Fprintln(os.Stderr, "no conversations found")
		return nil
	}

	rows := make([]listRow, len(convs))
	for i, c := range convs {
		turns, err := store.Turns(c.ID)
		if err != nil {
			return err
		}
		rows[i] = listRow{
			ConversationID: c.ID,
			NPC:            c.NPCName,
			Player:         c.PlayerName,
			Relationship:   c.Relationship,
			Turns:          len(turns),
			CreatedAt:      c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-12s  %-12s  %-10s  %5s  %s\n",
		"ID", "NPC", "Player", "Relation", "Turns", "Created")
	fmt.Printf("%-10s+-%-12s+-%-12s+-%-10s+-%5s+-%s\n",
		"----------", "------------", "------------", "----------", "-----", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %-12s  %-12s  %-10s  %5d  %s\n",
			shortID(r.ConversationID), r.NPC, r.Player, r.Relationship, r.Turns, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region transcript-mode

type transcriptOut struct {
	Conversation transcript.Conversation `json:"conversation"`
	Turns        []transcript.Turn       `json:"turns"`
}

func runTranscriptMode(store *transcript.Store, id, moodFilter string, jsonOut bool) error {
	conv, err := resolveConversation(store, id)
	if err != nil {
		return err
	}

	turns, err := store.Turns(conv.ID)
	if err != nil {
		return err
	}
	if moodFilter != "" {
		filtered := turns[:0]
		for _, t := range turns {
			if t.Mood == moodFilter {
				filtered = append(filtered, t)
			}
		}
		turns = filtered
	}

	if jsonOut {
		return printJSON(transcriptOut{Conversation: conv, Turns: turns})
	}

	fmt.Printf("Conversation: %s\n", conv.ID)
	fmt.Printf("NPC:          %s\n", conv.NPCName)
	fmt.Printf("Player:       %s (%s, level %d, %s)\n",
		conv.PlayerName, conv.PlayerClass, conv.PlayerLevel, conv.Relationship)
	fmt.Printf("Created:      %s\n", conv.CreatedAt.Format("2006-01-02T15:04:05Z"))

	for _, t := range turns {
		fmt.Printf("\n[turn %d] mood=%s (%s) tokens=%d stop=%s %dms\n",
			t.TurnNo, t.Mood, t.MoodReason, t.TokenCount, t.StopReason, t.GenMillis)
		fmt.Printf("  %s: %s\n", conv.PlayerName, t.UserInput)
		fmt.Printf("  %s: %s\n", conv.NPCName, t.Response)
	}
	return nil
}

// resolveConversation accepts a full id or an unambiguous prefix.
func resolveConversation(store *transcript.Store, id string) (transcript.Conversation, error) {
	conv, err := store.GetConversation(id)
	if err == nil {
		return conv, nil
	}

	convs, listErr := store.ListConversations(1000)
	if listErr != nil {
		return transcript.Conversation{}, listErr
	}
	var match *transcript.Conversation
	for i := range convs {
		if len(id) >= 4 && len(convs[i].ID) >= len(id) && convs[i].ID[:len(id)] == id {
			if match != nil {
				return transcript.Conversation{}, fmt.Errorf("ambiguous conversation prefix %q", id)
			}
			match = &convs[i]
		}
	}
	if match == nil {
		return transcript.Conversation{}, fmt.Errorf("conversation %q not found", id)
	}
	return *match, nil
}

// #endregion transcript-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
