package vocab

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// #region profile
// Profile holds the static, process-lifetime view of a token vocabulary:
// frequency ranks, category flags, and the precomputed base logit bias.
// A Profile is immutable after Build and safe to share across goroutines.
type Profile struct {
	size      int
	texts     []string  // token id → display text
	lowerText []string  // token id → lower-cased display text
	ranks     []int     // token id → frequency rank (0 = most frequent)
	byRank    []int     // rank → token id
	flags     []uint8   // token id → category flag bits
	baseBias  []float32 // token id → log(1/(rank+1)^0.3)
}
// #endregion profile

// #region cutoffs
// Rank cutoffs for the static categories. The common band is the top
// min(500, n/10) ranks; the rare band is the bottom fifth. The two bands
// never overlap for any vocabulary large enough to have both.
const (
	commonCap      = 500
	commonRatioDiv = 10
	biasExponent   = 0.3
)

func commonCutoff(n int) int {
	c := n / commonRatioDiv
	if c > commonCap {
		return commonCap
	}
	return c
}

func rareCutoff(n int) int {
	return n * 4 / 5
}
// #endregion cutoffs

// #region build
// Build constructs a Profile from the full vocabulary enumeration. Entries must
// be non-empty and carry ids covering [0, len) exactly; order of the input slice
// does not matter. Build is pure and deterministic: equal-score ties rank by
// ascending token id, so identical input always yields the identical profile.
func Build(entries []Entry) (*Profile, error) {
	n := len(entries)
	if n == 0 {
		return nil, fmt.Errorf("build profile: %w: empty vocabulary", ErrInvalidVocabulary)
	}

	p := &Profile{
		size:      n,
		texts:     make([]string, n),
		lowerText: make([]string, n),
		ranks:     make([]int, n),
		byRank:    make([]int, n),
		flags:     make([]uint8, n),
		baseBias:  make([]float32, n),
	}

	// Validate id contiguity while capturing texts.
	seen := make([]bool, n)
	for _, e := range entries {
		if e.ID < 0 || e.ID >= n || seen[e.ID] {
			return nil, fmt.Errorf("build profile: %w: id %d outside contiguous range [0,%d)", ErrInvalidVocabulary, e.ID, n)
		}
		seen[e.ID] = true
		p.texts[e.ID] = e.Text
		p.lowerText[e.ID] = strings.ToLower(e.Text)
	}

	// Rank by descending score, ties broken by ascending id.
	scores := make([]float32, n)
	for _, e := range entries {
		scores[e.ID] = e.Score
	}
	for id := range p.byRank {
		p.byRank[id] = id
	}
	sort.SliceStable(p.byRank, func(i, j int) bool {
		a, b := p.byRank[i], p.byRank[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})

	common := commonCutoff(n)
	rare := rareCutoff(n)

	for rank, id := range p.byRank {
		p.ranks[id] = rank

		if rank < common {
			p.flags[id] |= FlagCommon
		}
		if rank >= rare {
			p.flags[id] |= FlagRare
		}
		if strings.ContainsAny(p.texts[id], ".!?\"'") {
			p.flags[id] |= FlagPunct
		}
		if strings.ContainsRune(p.texts[id], '"') {
			p.flags[id] |= FlagDialogue
		}

		p.baseBias[id] = float32(-biasExponent * math.Log(float64(rank)+1))
	}

	return p, nil
}
// #endregion build

// #region accessors

// Size returns the vocabulary size.
func (p *Profile) Size() int { return p.size }

// Text returns the display text of the given token.
func (p *Profile) Text(id int) string { return p.texts[id] }

// LowerText returns the pre-lowered display text of the given token.
func (p *Profile) LowerText(id int) string { return p.lowerText[id] }

// Rank returns the frequency rank of the given token (0 = most frequent).
func (p *Profile) Rank(id int) int { return p.ranks[id] }

// TokenAtRank returns the token id holding the given rank.
func (p *Profile) TokenAtRank(rank int) int { return p.byRank[rank] }

// Flags returns the category flag bits of the given token.
func (p *Profile) Flags(id int) uint8 { return p.flags[id] }

// IsCommon reports whether the token sits in the top frequency band.
func (p *Profile) IsCommon(id int) bool { return p.flags[id]&FlagCommon != 0 }

// IsRare reports whether the token sits in the bottom fifth by frequency.
func (p *Profile) IsRare(id int) bool { return p.flags[id]&FlagRare != 0 }

// IsPunct reports whether the token text contains a sentence-ending character.
func (p *Profile) IsPunct(id int) bool { return p.flags[id]&FlagPunct != 0 }

// IsDialogue reports whether the token text contains a quotation mark.
func (p *Profile) IsDialogue(id int) bool { return p.flags[id]&FlagDialogue != 0 }

// BaseBias returns the precomputed Zipfian logit bias of the given token.
// The bias strictly decreases as rank increases.
func (p *Profile) BaseBias(id int) float32 { return p.baseBias[id] }

// BaseBiasVector returns the full per-token bias vector. Callers must treat
// the returned slice as read-only.
func (p *Profile) BaseBiasVector() []float32 { return p.baseBias }

// CheckToken validates that id names a token in this vocabulary.
func (p *Profile) CheckToken(id int) error {
	if id < 0 || id >= p.size {
		return fmt.Errorf("%w: %d (vocabulary size %d)", ErrTokenOutOfRange, id, p.size)
	}
	return nil
}

// #endregion accessors
