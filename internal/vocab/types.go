package vocab

import "errors"

// #region errors
// ErrInvalidVocabulary is returned by Build when the vocabulary is empty or
// its token ids do not form a contiguous range starting at 0.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// ErrTokenOutOfRange is returned by CheckToken for ids outside [0, Size).
var ErrTokenOutOfRange = errors.New("token id out of range")
// #endregion errors

// #region entry
// Entry is one vocabulary unit as supplied by the inference backend.
// Higher Score means more frequent.
type Entry struct {
	ID    int
	Text  string
	Score float32
}
// #endregion entry

// #region flags
// Category flag bits, packed per token for O(1) checks in the generation loop.
const (
	FlagCommon   uint8 = 1 << 0
	FlagRare     uint8 = 1 << 1
	FlagPunct    uint8 = 1 << 2
	FlagDialogue uint8 = 1 << 3
)
// #endregion flags
