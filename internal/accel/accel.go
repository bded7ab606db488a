// Package accel is the contextual logit-acceleration engine. It reshapes a
// model's per-token logit distribution toward the active persona, mood, and
// dialogue-completion state, and computes the adaptive repetition penalty.
// Every operation is O(vocabulary size) or better per generation step and
// performs no I/O.
package accel

import (
	"github.com/viterin/vek/vek32"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/tracker"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region constants
// Boost magnitudes and shaping thresholds. Fixed unless externalized.
const (
	roleBoostBase     = 0.5
	moodBoostBase     = 0.3
	dialogueBoostBase = 0.4

	earlyStepWindow = 10
	earlyBoostMult  = 1.5

	dialogueFlowThreshold = 0.6
	dialogueSuppression   = 2.0

	// referenceMaxResponse is the fixed denominator of the completion ratio.
	// It is independent of whatever maximum the caller actually enforces, so
	// the ratio drifts from the real remaining budget when the two diverge.
	referenceMaxResponse = 200

	patternFreqThreshold = 0.1
	patternBoost         = 0.2
)
// #endregion constants

// #region accelerator
// Accelerator applies the combined bias passes to a raw logit buffer. It owns
// the turn-scoped Context (replaced via SetContext at turn start) and a
// scratch buffer sized to the vocabulary; it is not safe for concurrent use.
type Accelerator struct {
	profile *vocab.Profile
	ctx     *Context
	scratch []float32
}

// NewAccelerator creates an Accelerator over the given vocabulary profile,
// starting with an empty turn context.
func NewAccelerator(profile *vocab.Profile) *Accelerator {
	return &Accelerator{
		profile: profile,
		ctx:     &Context{roleTokens: map[int]struct{}{}, moodTokens: map[int]struct{}{}},
		scratch: make([]float32, profile.Size()),
	}
}

// SetContext replaces the turn context. Must only be called at turn
// boundaries, never while a generation loop is running.
func (a *Accelerator) SetContext(ctx *Context) { a.ctx = ctx }

// Context returns the active turn context.
func (a *Accelerator) Context() *Context { return a.ctx }

// #endregion accelerator

// #region accelerate
// Accelerate mutates logits in place, once per generation step, before the
// sampler runs. Four passes:
//
//  1. Base Zipfian bias scaled by the complexity factor, across every token.
//  2. Role/mood boosts on the context-matched sets, amplified 1.5x during the
//     first ten steps to front-load the persona signal.
//  3. Dialogue-flow shaping: before 60% completion, dialogue-ending tokens
//     (dialogue and punctuation flags both set) are suppressed; after it,
//     all dialogue tokens gain a boost growing with the completion ratio.
//  4. Pattern reinforcement for tokens whose recorded turn frequency exceeds
//     the threshold.
//
// Only finite additive constants are applied, so finite input stays finite
// and the buffer length never changes. Applying Accelerate twice with an
// unchanged context compounds the shift; the caller owns the once-per-step
// discipline.
func (a *Accelerator) Accelerate(logits []float32, stepIndex, tokensRemaining int, params tracker.Params, frequencies map[int]float32) {
	// 1. Base bias, vectorized across the token dimension.
	copy(a.scratch, a.profile.BaseBiasVector())
	vek32.MulNumber_Inplace(a.scratch, params.Complexity)
	vek32.Add_Inplace(logits, a.scratch)

	// 2. Contextual boosts.
	roleBoost := float32(roleBoostBase) * params.Engagement
	moodBoost := float32(moodBoostBase) * params.Engagement
	dialogueBoost := float32(dialogueBoostBase) * params.Pattern

	if stepIndex < earlyStepWindow {
		roleBoost *= earlyBoostMult
		moodBoost *= earlyBoostMult
	}

	for id := range a.ctx.roleTokens {
		logits[id] += roleBoost
	}
	for id := range a.ctx.moodTokens {
		logits[id] += moodBoost
	}

	// 3. Dialogue-flow shaping.
	completionRatio := 1 - float32(tokensRemaining)/referenceMaxResponse
	if completionRatio < dialogueFlowThreshold {
		for id := 0; id < a.profile.Size(); id++ {
			if a.profile.IsDialogue(id) && a.profile.IsPunct(id) {
				logits[id] -= dialogueSuppression
			}
		}
	} else {
		boost := dialogueBoost * completionRatio
		for id := 0; id < a.profile.Size(); id++ {
			if a.profile.IsDialogue(id) {
				logits[id] += boost
			}
		}
	}

	// 4. Pattern reinforcement.
	for id, freq := range frequencies {
		if freq > patternFreqThreshold {
			logits[id] += patternBoost * params.Pattern
		}
	}
}
// #endregion accelerate

// #region appropriateness
// IsAppropriate is the fast pre-filter alternative to additive biasing:
// rare tokens are rejected outright, context-matched and common tokens pass,
// and the band that is neither common, rare, nor matched is rejected by
// omission.
func (a *Accelerator) IsAppropriate(id int) bool {
	if a.profile.IsRare(id) {
		return false
	}
	if a.ctx.InRole(id) || a.ctx.InMood(id) {
		return true
	}
	return a.profile.IsCommon(id)
}
// #endregion appropriateness
