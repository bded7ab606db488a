package prompt

import "strings"

// #region sanitize
// Sanitize maps detokenized output onto printable text: newlines survive,
// other control and non-ASCII bytes become spaces, and runs of spaces
// collapse to one.
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	lastWasSpace := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		ch := byte(' ')
		if c == '\n' || (c >= 32 && c <= 126) {
			ch = c
		}
		if ch == ' ' {
			if !lastWasSpace {
				b.WriteByte(ch)
				lastWasSpace = true
			}
		} else {
			b.WriteByte(ch)
			lastWasSpace = false
		}
	}
	return b.String()
}
// #endregion sanitize

// #region truncate
// forbiddenCues are speaker markers the NPC must never emit; output is cut at
// the earliest occurrence found after the first character.
var forbiddenCues = []string{
	"Adventurer:", "User:", "You say", "### Input:", "### Instruction:",
	"### Response:", "### Assistant:", "### Human:",
}

// TruncateForbiddenSpeaker cuts the output at the first forbidden speaker cue
// (including "<playerName>:"), then trims back to the last sentence-ending
// character when one sits in the final third of what remains.
func TruncateForbiddenSpeaker(output, playerName string) string {
	cues := forbiddenCues
	if playerName != "" {
		cues = append(append([]string{}, forbiddenCues...), playerName+":")
	}

	cut := -1
	for _, cue := range cues {
		if pos := strings.Index(output[min(1, len(output)):], cue); pos >= 0 {
			pos++ // offset for the skipped first character
			if cut < 0 || pos < cut {
				cut = pos
			}
		}
	}

	result := output
	if cut >= 0 {
		result = output[:cut]
	}

	if last := strings.LastIndexAny(result, ".!?"); last >= 0 && last > len(result)*7/10 {
		result = result[:last+1]
	}
	return result
}
// #endregion truncate

// #region clean
// fallbackResponse replaces output that sanitization reduced to nothing.
const fallbackResponse = "I... I'm not sure what to say."

// CleanResponse strips the enclosing quotes the prompt format induces and
// substitutes the fallback line for empty output.
func CleanResponse(output string) string {
	if output == "" || output == "\"" {
		return fallbackResponse
	}
	if output[0] == '"' {
		output = output[1:]
	}
	if output != "" && output[len(output)-1] == '"' {
		output = output[:len(output)-1]
	}
	if output == "" {
		return fallbackResponse
	}
	return output
}
// #endregion clean
