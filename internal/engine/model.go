package engine

import (
	"context"
	"math/rand"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region model
// Model is the inference backend boundary. The engine never looks inside it:
// it supplies the vocabulary once at startup, yields a raw logit buffer
// before each sampling decision, and accepts each chosen token. Implementations
// own tokenization and the forward pass.
type Model interface {
	// Vocabulary enumerates every token. Called once, at engine construction.
	Vocabulary() []vocab.Entry
	// BeginTurn resets generation state and feeds the turn prompt.
	BeginTurn(ctx context.Context, prompt string) error
	// Logits returns the raw per-token logits for the next position. The
	// caller may mutate the returned buffer freely.
	Logits(ctx context.Context) ([]float32, error)
	// Accept feeds the sampled token back into the model.
	Accept(ctx context.Context, token int) error
	// EOS returns the end-of-sequence token id, or -1 when the model has none.
	EOS() int
}
// #endregion model

// #region scripted-model
// ScriptedModel replays predetermined token sequences, one per turn, by
// emitting logits that overwhelmingly favor the next scripted token. It backs
// tests and fixture replay; injected the same way a real backend would be.
type ScriptedModel struct {
	entries []vocab.Entry
	eos     int

	responses [][]int
	turn      int
	pos       int
}

// NewScriptedModel creates a ScriptedModel over the given vocabulary. Each
// element of responses scripts one turn; turns past the script emit EOS
// immediately. eos may be -1 when the vocabulary reserves no end token.
func NewScriptedModel(entries []vocab.Entry, eos int, responses [][]int) *ScriptedModel {
	return &ScriptedModel{entries: entries, eos: eos, responses: responses, turn: -1}
}

// Vocabulary implements Model.
func (m *ScriptedModel) Vocabulary() []vocab.Entry { return m.entries }

// BeginTurn advances to the next scripted response.
func (m *ScriptedModel) BeginTurn(ctx context.Context, prompt string) error {
	m.turn++
	m.pos = 0
	return nil
}

// Logits emits a flat floor with a single strong peak at the next scripted
// token, or at EOS once the script is exhausted.
func (m *ScriptedModel) Logits(ctx context.Context) ([]float32, error) {
	logits := make([]float32, len(m.entries))
	for i := range logits {
		logits[i] = -15
	}

	next := m.eos
	if m.turn >= 0 && m.turn < len(m.responses) && m.pos < len(m.responses[m.turn]) {
		next = m.responses[m.turn][m.pos]
	}
	if next >= 0 {
		logits[next] = 15
	}
	return logits, nil
}

// Accept advances the script cursor when the sampled token matches it.
func (m *ScriptedModel) Accept(ctx context.Context, token int) error {
	if m.turn >= 0 && m.turn < len(m.responses) && m.pos < len(m.responses[m.turn]) &&
		m.responses[m.turn][m.pos] == token {
		m.pos++
	}
	return nil
}

// EOS implements Model.
func (m *ScriptedModel) EOS() int { return m.eos }

// #endregion scripted-model

// #region synthetic-model
// SyntheticModel stands in for a real inference engine in the demo CLI: its
// logits are the vocabulary's frequency scores plus seeded noise, so the
// acceleration passes and sampler genuinely shape what comes out, without any
// neural computation behind it.
type SyntheticModel struct {
	entries  []vocab.Entry
	eos      int
	baseline []float32
	rng      *rand.Rand
}

// NewSyntheticModel creates a SyntheticModel with a deterministic noise seed.
func NewSyntheticModel(entries []vocab.Entry, eos int, seed int64) *SyntheticModel {
	baseline := make([]float32, len(entries))
	var maxScore float32
	for _, e := range entries {
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}
	for _, e := range entries {
		baseline[e.ID] = 4 * e.Score / maxScore
	}
	return &SyntheticModel{
		entries:  entries,
		eos:      eos,
		baseline: baseline,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Vocabulary implements Model.
func (m *SyntheticModel) Vocabulary() []vocab.Entry { return m.entries }

// BeginTurn implements Model; the synthetic backend keeps no prompt state.
func (m *SyntheticModel) BeginTurn(ctx context.Context, prompt string) error { return nil }

// Logits returns the scored baseline perturbed by fresh noise.
func (m *SyntheticModel) Logits(ctx context.Context) ([]float32, error) {
	logits := make([]float32, len(m.baseline))
	for i, b := range m.baseline {
		logits[i] = b + float32(m.rng.NormFloat64())*1.5
	}
	return logits, nil
}

// Accept implements Model; a synthetic backend has no state to advance.
func (m *SyntheticModel) Accept(ctx context.Context, token int) error { return nil }

// EOS implements Model.
func (m *SyntheticModel) EOS() int { return m.eos }

// #endregion synthetic-model
