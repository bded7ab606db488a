package accel

import "math"

// #region constants
const (
	penaltyBase      = 0.9
	penaltyExpCommon = 0.7
	penaltyExpOther  = 1.3
)
// #endregion constants

// #region penalty

// Penalty returns the multiplicative repetition decay in (0,1] for a token
// that has already occurred count times in the current response: 1.0 at zero
// occurrences, strictly decreasing after. Common tokens decay gently
// (exponent 0.7 per occurrence); every other token, including the middle band
// that is neither common nor rare, decays harder (exponent 1.3).
//
// The multiplier is meant for a non-negative score domain. Multiplying it
// into a signed logit flips the ordering for negative values, so the
// generation loop applies LogPenalty additively instead; Penalty stays
// exported for callers that scale probabilities or other non-negative scores.
func (a *Accelerator) Penalty(id, count int) float32 {
	exponent := float64(count) * penaltyExpOther
	if a.profile.IsCommon(id) {
		exponent = float64(count) * penaltyExpCommon
	}
	return float32(math.Pow(penaltyBase, exponent))
}

// LogPenalty returns the log-space additive form of Penalty: ln of the
// multiplier, which is 0 at zero occurrences and increasingly negative with
// repetition. Adding it to a logit is equivalent to multiplying the token's
// probability by Penalty, with no sign surprises on negative logits.
func (a *Accelerator) LogPenalty(id, count int) float32 {
	exponent := float64(count) * penaltyExpOther
	if a.profile.IsCommon(id) {
		exponent = float64(count) * penaltyExpCommon
	}
	return float32(exponent * math.Log(penaltyBase))
}

// ApplyPenalties adds the log-space repetition penalty to every token with a
// nonzero occurrence count. Runs before sampling, after Accelerate.
func (a *Accelerator) ApplyPenalties(logits []float32, counts []int) {
	for id, count := range counts {
		if count > 0 {
			logits[id] += a.LogPenalty(id, count)
		}
	}
}

// #endregion penalty
