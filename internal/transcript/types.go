package transcript

import "time"

// #region records

// Conversation is one stored player/NPC session.
type Conversation struct {
	ID           string
	NPCName      string
	PlayerName   string
	PlayerClass  string
	PlayerLevel  int
	Relationship string
	CreatedAt    time.Time
}

// Turn is one stored exchange within a conversation.
type Turn struct {
	ID             string
	ConversationID string
	TurnNo         int
	UserInput      string
	Mood           string
	MoodReason     string
	Response       string
	TokenCount     int
	StopReason     string
	GenMillis      int64
	CreatedAt      time.Time
}

// #endregion records
