// Package sampler selects the next token from an accelerated logit buffer.
// It is host infrastructure, not part of the acceleration engine: the engine
// only reshapes the distribution this sampler consumes.
package sampler

import (
	"math"
	"math/rand"
	"sort"
)

// #region config
// Config holds the sampling chain parameters.
type Config struct {
	TopK        int     // keep only the K highest logits; 0 disables
	TopP        float32 // nucleus mass cutoff; 1.0 disables
	Temperature float32 // 0 selects greedily
	Seed        int64   // fixed seed gives a reproducible token stream
}

// DefaultConfig mirrors the host's tuned generation parameters.
func DefaultConfig() Config {
	return Config{
		TopK:        40,
		TopP:        0.95,
		Temperature: 0.8,
		Seed:        -1,
	}
}
// #endregion config

// #region sampler
// Sampler applies top-k → top-p → temperature → multinomial selection.
type Sampler struct {
	config Config
	rng    *rand.Rand
}

// New creates a Sampler. A negative seed draws a random one.
func New(config Config) *Sampler {
	seed := config.Seed
	if seed < 0 {
		seed = rand.Int63()
	}
	return &Sampler{config: config, rng: rand.New(rand.NewSource(seed))}
}

// Sample returns the id of the next token. The logits slice is not modified.
func (s *Sampler) Sample(logits []float32) int {
	if s.config.Temperature == 0 {
		return argmax(logits)
	}

	type candidate struct {
		id    int
		logit float32
	}
	cands := make([]candidate, len(logits))
	for i, l := range logits {
		cands[i] = candidate{id: i, logit: l}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].logit > cands[j].logit })

	if s.config.TopK > 0 && s.config.TopK < len(cands) {
		cands = cands[:s.config.TopK]
	}

	// Softmax over the surviving candidates at the configured temperature.
	probs := make([]float64, len(cands))
	maxLogit := float64(cands[0].logit)
	temp := float64(s.config.Temperature)
	var sum float64
	for i, c := range cands {
		probs[i] = math.Exp((float64(c.logit) - maxLogit) / temp)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	// Nucleus cutoff: keep the smallest prefix covering TopP mass.
	if s.config.TopP > 0 && s.config.TopP < 1 {
		var cum float64
		cut := len(probs)
		for i, p := range probs {
			cum += p
			if cum >= float64(s.config.TopP) {
				cut = i + 1
				break
			}
		}
		probs = probs[:cut]
		cands = cands[:cut]
		var kept float64
		for _, p := range probs {
			kept += p
		}
		for i := range probs {
			probs[i] /= kept
		}
	}

	r := s.rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return cands[i].id
		}
	}
	return cands[len(cands)-1].id
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}
// #endregion sampler
