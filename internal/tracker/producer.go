package tracker

import "strings"

// #region producer

// ProducerConfig tunes the heuristic signal producer.
type ProducerConfig struct {
	// FrequencyBlend is the EMA weight given to the newest turn when folding
	// per-turn token frequencies into the tracker.
	FrequencyBlend float32
	// EngagementBlend is the EMA weight for the engagement modifier.
	EngagementBlend float32
}

// DefaultProducerConfig returns the default blend weights.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		FrequencyBlend:  0.3,
		EngagementBlend: 0.2,
	}
}

// Producer derives per-turn signals from completed responses and feeds the
// tracker fields that have no built-in update rule. Wiring a Producer is
// optional: a tracker works with every scalar pinned at 1.0.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer.
func NewProducer(config ProducerConfig) *Producer {
	return &Producer{config: config}
}

// #endregion producer

// #region observe

// Observe folds one completed turn into the tracker's extension-point state:
// token occurrence counts become exponentially blended relative frequencies,
// and lexical diversity of the response text nudges the engagement modifier.
func (p *Producer) Observe(t *Tracker, responseTokens []int, responseText string) {
	if len(responseTokens) == 0 {
		return
	}

	counts := make(map[int]int, len(responseTokens))
	for _, tok := range responseTokens {
		counts[tok]++
	}

	alpha := p.config.FrequencyBlend
	total := float32(len(responseTokens))
	for tok, c := range counts {
		rel := float32(c) / total
		t.frequencies[tok] = (1-alpha)*t.frequencies[tok] + alpha*rel
	}
	// Tokens absent this turn decay toward zero.
	for tok, f := range t.frequencies {
		if _, present := counts[tok]; !present {
			t.frequencies[tok] = (1 - alpha) * f
		}
	}

	t.params.Engagement = (1-p.config.EngagementBlend)*t.params.Engagement +
		p.config.EngagementBlend*engagementSignal(responseText)
}

// engagementSignal approximates engagement as lexical diversity mapped onto
// [0.5, 1.5]: repetitive responses pull the modifier down, varied ones push
// it up.
func engagementSignal(text string) float32 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 1.0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	diversity := float32(len(unique)) / float32(len(words))
	return 0.5 + diversity
}

// #endregion observe
