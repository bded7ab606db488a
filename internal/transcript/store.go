// Package transcript persists conversations and their turns in SQLite,
// including the mood decision provenance for each turn.
package transcript

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	npc_name      TEXT NOT NULL,
	player_name   TEXT NOT NULL,
	player_class  TEXT,
	player_level  INTEGER,
	relationship  TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id               TEXT PRIMARY KEY,
	conversation_id  TEXT NOT NULL,
	turn_no          INTEGER NOT NULL,
	user_input       TEXT NOT NULL,
	mood             TEXT NOT NULL,
	mood_reason      TEXT,
	response         TEXT NOT NULL,
	token_count      INTEGER NOT NULL,
	stop_reason      TEXT,
	gen_ms           INTEGER NOT NULL,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (conversation_id) REFERENCES conversations(id)
);

CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, turn_no);
`
// #endregion schema

// #region store-struct
// Store manages transcript persistence in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// NewStoreWithDB wraps an already-open database. The caller owns the
// connection and is responsible for the schema.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region create-conversation
// CreateConversation inserts a new conversation and returns it with a fresh id.
func (s *Store) CreateConversation(npcName, playerName, playerClass string, playerLevel int, relationship string) (Conversation, error) {
	conv := Conversation{
		ID:           uuid.New().String(),
		NPCName:      npcName,
		PlayerName:   playerName,
		PlayerClass:  playerClass,
		PlayerLevel:  playerLevel,
		Relationship: relationship,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, npc_name, player_name, player_class, player_level, relationship, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.NPCName, conv.PlayerName, conv.PlayerClass, conv.PlayerLevel, conv.Relationship,
		conv.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}
// #endregion create-conversation

// #region append-turn
// AppendTurn stores one completed turn, assigning the next turn number within
// its conversation.
func (s *Store) AppendTurn(conversationID string, turn Turn) (Turn, error) {
	var nextNo int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(turn_no), 0) + 1 FROM turns WHERE conversation_id = ?`,
		conversationID,
	).Scan(&nextNo)
	if err != nil {
		return Turn{}, fmt.Errorf("next turn number: %w", err)
	}

	turn.ID = uuid.New().String()
	turn.ConversationID = conversationID
	turn.TurnNo = nextNo
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO turns (id, conversation_id, turn_no, user_input, mood, mood_reason, response, token_count, stop_reason, gen_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.ConversationID, turn.TurnNo, turn.UserInput, turn.Mood,
		nullIfEmpty(turn.MoodReason), turn.Response, turn.TokenCount,
		nullIfEmpty(turn.StopReason), turn.GenMillis,
		turn.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Turn{}, fmt.Errorf("append turn: %w", err)
	}
	return turn, nil
}
// #endregion append-turn

// #region queries

// ListConversations returns the most recent conversations, newest first.
func (s *Store) ListConversations(limit int) ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, npc_name, player_name, player_class, player_level, relationship, created_at
		 FROM conversations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		var createdAt string
		if err := rows.Scan(&c.ID, &c.NPCName, &c.PlayerName, &c.PlayerClass, &c.PlayerLevel, &c.Relationship, &createdAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// GetConversation looks up a single conversation by id.
func (s *Store) GetConversation(id string) (Conversation, error) {
	var c Conversation
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, npc_name, player_name, player_class, player_level, relationship, created_at
		 FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.NPCName, &c.PlayerName, &c.PlayerClass, &c.PlayerLevel, &c.Relationship, &createdAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation %s: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return c, nil
}

// Turns returns every turn of a conversation in order.
func (s *Store) Turns(conversationID string) ([]Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, turn_no, user_input, mood, COALESCE(mood_reason, ''), response, token_count, COALESCE(stop_reason, ''), gen_ms, created_at
		 FROM turns WHERE conversation_id = ? ORDER BY turn_no`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdAt string
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.TurnNo, &t.UserInput, &t.Mood, &t.MoodReason,
			&t.Response, &t.TokenCount, &t.StopReason, &t.GenMillis, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// #endregion queries

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
