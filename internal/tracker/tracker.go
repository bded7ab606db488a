// Package tracker maintains per-conversation adaptive state: response length
// history, turn count, observed token frequencies, and the derived adaptive
// scalars consumed by the acceleration engine. All mutation happens at turn
// boundaries; nothing here is safe to call mid-generation.
package tracker

import "gonum.org/v1/gonum/stat"

// #region params
// Params are the adaptive scalars applied during logit acceleration. All
// start at 1.0. Complexity is the only one with an automatic update rule;
// Engagement and Pattern are exposed for external producers (see Producer).
type Params struct {
	Complexity float32
	Engagement float32
	Pattern    float32
}
// #endregion params

// #region constants
const (
	recencyWindow = 5

	complexityMin = 0.5
	complexityMax = 2.0

	shortResponseAvg = 20.0
	longResponseAvg  = 50.0

	simplifyFactor = 0.9
	enrichFactor   = 1.1
)
// #endregion constants

// #region tracker
// Tracker is the conversation-lifetime adaptive state.
type Tracker struct {
	turnCount     int
	recentLengths []int
	frequencies   map[int]float32

	params Params
}

// New returns a Tracker with all adaptive scalars at 1.0.
func New() *Tracker {
	return &Tracker{
		recentLengths: make([]int, 0, recencyWindow),
		frequencies:   make(map[int]float32),
		params:        Params{Complexity: 1.0, Engagement: 1.0, Pattern: 1.0},
	}
}

// TurnCount returns the number of completed turns.
func (t *Tracker) TurnCount() int { return t.turnCount }

// Params returns a copy of the current adaptive scalars.
func (t *Tracker) Params() Params { return t.params }

// SetEngagement overrides the engagement modifier.
func (t *Tracker) SetEngagement(v float32) { t.params.Engagement = v }

// SetPattern overrides the pattern strength.
func (t *Tracker) SetPattern(v float32) { t.params.Pattern = v }

// #endregion tracker

// #region record-turn
// RecordTurn folds a completed turn's response length into the tracker:
// the length joins the bounded recency window, the turn count advances, and
// the complexity factor shifts by the window average (short responses
// simplify, long ones enrich), clamped to [0.5, 2.0].
//
// Repeated calls with the same length keep compounding the multiplier until
// the clamp saturates; that compounding is intended, not an oversight.
func (t *Tracker) RecordTurn(responseLength int) {
	if len(t.recentLengths) >= recencyWindow {
		t.recentLengths = t.recentLengths[1:]
	}
	t.recentLengths = append(t.recentLengths, responseLength)
	t.turnCount++

	avg := 0.0
	if len(t.recentLengths) > 0 {
		lens := make([]float64, len(t.recentLengths))
		for i, l := range t.recentLengths {
			lens[i] = float64(l)
		}
		avg = stat.Mean(lens, nil)
	}

	switch {
	case avg < shortResponseAvg:
		t.params.Complexity *= simplifyFactor
	case avg > longResponseAvg:
		t.params.Complexity *= enrichFactor
	}

	if t.params.Complexity < complexityMin {
		t.params.Complexity = complexityMin
	}
	if t.params.Complexity > complexityMax {
		t.params.Complexity = complexityMax
	}
}
// #endregion record-turn

// #region frequencies

// Frequency returns the observed relative frequency of a token across
// successful turns, or 0 when the token has never been observed.
func (t *Tracker) Frequency(id int) float32 { return t.frequencies[id] }

// Frequencies exposes the frequency table for read-only iteration by the
// acceleration pass.
func (t *Tracker) Frequencies() map[int]float32 { return t.frequencies }

// SetFrequency records an externally computed relative frequency for a token.
func (t *Tracker) SetFrequency(id int, freq float32) {
	t.frequencies[id] = freq
}

// #endregion frequencies
