package accel

import (
	"fmt"
	"math"
	"testing"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/tracker"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// testProfile builds a 20-token vocabulary with descending scores so rank
// equals id. Ids 0-1 are common (cutoff 20/10), ids 16-19 are rare.
func testProfile(t *testing.T) *vocab.Profile {
	t.Helper()
	texts := []string{
		"the", "guard", "watchful", "pleased", "\"", "!\"",
		"plain", "words", "here", "now", "more", "filler",
		"body", "text", "mid", "band", "odd", "rarer", "unusual", "arcane",
	}
	entries := make([]vocab.Entry, len(texts))
	for i, txt := range texts {
		entries[i] = vocab.Entry{ID: i, Text: txt, Score: float32(len(texts) - i)}
	}
	p, err := vocab.Build(entries)
	if err != nil {
		t.Fatalf("build profile: %v", err)
	}
	return p
}

func neutralParams() tracker.Params {
	return tracker.Params{Complexity: 1.0, Engagement: 1.0, Pattern: 1.0}
}

func TestContextBuilderMatchesKeywords(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())

	ctx := b.Build("guard", "friendly")

	roleWords := map[string]bool{"guard": true, "watch": true, "protect": true, "duty": true, "patrol": true, "secure": true, "defend": true}
	for id := 0; id < p.Size(); id++ {
		if ctx.InRole(id) {
			matched := false
			for kw := range roleWords {
				if len(kw) <= len(p.LowerText(id)) && contains(p.LowerText(id), kw) {
					matched = true
					break
				}
			}
			if !matched {
				t.Errorf("token %q in role set without matching keyword", p.Text(id))
			}
		}
	}

	if !ctx.InRole(1) || !ctx.InRole(2) {
		t.Fatal("'guard' and 'watchful' should match the guard archetype")
	}
	if !ctx.InMood(3) {
		t.Fatal("'pleased' should match the friendly mood")
	}
	if ctx.InRole(0) || ctx.InMood(0) {
		t.Fatal("'the' should match neither set")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestContextBuilderUnknownLabels(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())

	ctx := b.Build("unknown", "unknown")
	if ctx.RoleCount() != 0 || ctx.MoodCount() != 0 {
		t.Fatalf("unknown labels should yield empty sets, got %d/%d", ctx.RoleCount(), ctx.MoodCount())
	}
}

func TestContextBuilderCaches(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())

	c1 := b.Build("guard", "friendly")
	c2 := b.Build("guard", "friendly")
	if c1 != c2 {
		t.Fatal("repeated (role, mood) should hit the context cache")
	}
	if c3 := b.Build("guard", "rude"); c3 == c1 {
		t.Fatal("different mood should build a different context")
	}
}

func TestAccelerateBaseBias(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	logits := make([]float32, p.Size())
	a.Accelerate(logits, 50, 150, neutralParams(), nil)

	// Step 50, remaining 150: no early boost, completion ratio 0.25 → the
	// dialogue suppression branch. Non-dialogue tokens carry only base bias.
	if logits[0] != p.BaseBias(0) {
		t.Fatalf("token 0 should carry exactly its base bias, got %f want %f", logits[0], p.BaseBias(0))
	}
	if logits[6] != p.BaseBias(6) {
		t.Fatalf("plain token should carry exactly its base bias, got %f", logits[6])
	}
	// Dialogue-ender tokens are suppressed.
	if want := p.BaseBias(4) - dialogueSuppression; logits[4] != want {
		t.Fatalf("dialogue ender should be suppressed: got %f want %f", logits[4], want)
	}
}

func TestAccelerateComplexityScaling(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	params := neutralParams()
	params.Complexity = 2.0

	logits := make([]float32, p.Size())
	a.Accelerate(logits, 50, 150, params, nil)

	if want := 2 * p.BaseBias(6); math.Abs(float64(logits[6]-want)) > 1e-6 {
		t.Fatalf("complexity should scale base bias: got %f want %f", logits[6], want)
	}
}

func TestAccelerateEarlyStepBoost(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)
	a.SetContext(b.Build("guard", "friendly"))

	early := make([]float32, p.Size())
	late := make([]float32, p.Size())
	a.Accelerate(early, 0, 150, neutralParams(), nil)
	a.Accelerate(late, 20, 150, neutralParams(), nil)

	// Token 1 ("guard") is role-matched: early boost is 1.5x the late one.
	earlyShift := early[1] - p.BaseBias(1)
	lateShift := late[1] - p.BaseBias(1)
	if math.Abs(float64(earlyShift-1.5*lateShift)) > 1e-5 {
		t.Fatalf("early role boost should be 1.5x: early %f late %f", earlyShift, lateShift)
	}

	moodShift := early[3] - p.BaseBias(3)
	if math.Abs(float64(moodShift-0.3*1.5)) > 1e-5 {
		t.Fatalf("early mood boost should be 0.45, got %f", moodShift)
	}
}

func TestAccelerateOverlappingRoleMoodBoosts(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)

	// "watch" is a keyword of both the guard archetype and the suspicious
	// mood, so "watchful" lands in both sets.
	ctx := b.Build("guard", "suspicious")
	if !ctx.InRole(2) || !ctx.InMood(2) {
		t.Fatal("'watchful' should be in both the role and mood sets")
	}
	a.SetContext(ctx)

	logits := make([]float32, p.Size())
	a.Accelerate(logits, 50, 150, neutralParams(), nil)

	// Both boosts apply additively on top of the base bias.
	bothShift := logits[2] - p.BaseBias(2)
	if want := float32(roleBoostBase + moodBoostBase); math.Abs(float64(bothShift-want)) > 1e-5 {
		t.Fatalf("doubly matched token should gain both boosts: got %f want %f", bothShift, want)
	}

	// "guard" matches the role only; its shift is the role boost alone.
	roleShift := logits[1] - p.BaseBias(1)
	if want := float32(roleBoostBase); math.Abs(float64(roleShift-want)) > 1e-5 {
		t.Fatalf("role-only token should gain the role boost alone: got %f want %f", roleShift, want)
	}
}

func TestAccelerateDialogueFlow(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	// remaining 40 of reference 200 → completion ratio 0.8 → boost branch.
	logits := make([]float32, p.Size())
	a.Accelerate(logits, 50, 40, neutralParams(), nil)

	wantBoost := float32(dialogueBoostBase) * 0.8
	shift := logits[4] - p.BaseBias(4)
	if math.Abs(float64(shift-wantBoost)) > 1e-5 {
		t.Fatalf("dialogue boost at 0.8 completion: got %f want %f", shift, wantBoost)
	}
}

func TestAcceleratePatternReinforcement(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	freqs := map[int]float32{
		6: 0.5,  // above threshold
		7: 0.05, // below threshold
	}
	logits := make([]float32, p.Size())
	a.Accelerate(logits, 50, 150, neutralParams(), freqs)

	if want := p.BaseBias(6) + patternBoost; math.Abs(float64(logits[6]-want)) > 1e-6 {
		t.Fatalf("frequent token should gain pattern boost: got %f want %f", logits[6], want)
	}
	if logits[7] != p.BaseBias(7) {
		t.Fatalf("sub-threshold token should not gain pattern boost, got %f", logits[7])
	}
}

func TestAccelerateNotIdempotent(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)
	a.SetContext(b.Build("guard", "friendly"))

	once := make([]float32, p.Size())
	twice := make([]float32, p.Size())
	a.Accelerate(once, 5, 150, neutralParams(), nil)
	a.Accelerate(twice, 5, 150, neutralParams(), nil)
	a.Accelerate(twice, 5, 150, neutralParams(), nil)

	var onceNorm, twiceNorm float64
	for i := range once {
		onceNorm += math.Abs(float64(once[i]))
		twiceNorm += math.Abs(float64(twice[i]))
	}
	if twiceNorm <= onceNorm {
		t.Fatalf("double application should compound the shift: %f <= %f", twiceNorm, onceNorm)
	}
}

func TestAccelerateKeepsFiniteValues(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	logits := make([]float32, p.Size())
	for i := range logits {
		logits[i] = float32(i) - 10
	}
	a.Accelerate(logits, 0, 200, neutralParams(), map[int]float32{3: 0.9})

	if len(logits) != p.Size() {
		t.Fatalf("buffer length changed to %d", len(logits))
	}
	for i, v := range logits {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite logit at %d: %f", i, v)
		}
	}
}

func TestPenaltyProperties(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	for id := 0; id < p.Size(); id++ {
		if got := a.Penalty(id, 0); got != 1.0 {
			t.Fatalf("penalty at zero count should be 1.0, got %f for token %d", got, id)
		}
	}

	// Strictly decreasing in count.
	for count := 1; count < 6; count++ {
		if a.Penalty(6, count) >= a.Penalty(6, count-1) {
			t.Fatalf("penalty should strictly decrease: count %d", count)
		}
	}

	// Common tokens decay no harder than others at equal count.
	for count := 1; count < 6; count++ {
		common := a.Penalty(0, count)    // rank 0 → common
		other := a.Penalty(10, count)    // mid band → harsher exponent
		rare := a.Penalty(19, count)     // rare → same harsher exponent
		if common < other {
			t.Fatalf("common penalty %f should be >= other %f at count %d", common, other, count)
		}
		if other != rare {
			t.Fatalf("mid-band and rare tokens share the non-common exponent: %f != %f", other, rare)
		}
	}

	// Range (0, 1].
	if got := a.Penalty(19, 50); got <= 0 || got > 1 {
		t.Fatalf("penalty out of (0,1]: %f", got)
	}
}

func TestLogPenaltyMatchesMultiplier(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	for _, count := range []int{0, 1, 3, 10} {
		for _, id := range []int{0, 10, 19} {
			mult := float64(a.Penalty(id, count))
			logForm := math.Exp(float64(a.LogPenalty(id, count)))
			if math.Abs(mult-logForm) > 1e-5 {
				t.Fatalf("log form diverges from multiplier for token %d count %d: %f vs %f", id, count, mult, logForm)
			}
		}
	}
}

func TestApplyPenalties(t *testing.T) {
	p := testProfile(t)
	a := NewAccelerator(p)

	logits := make([]float32, p.Size())
	counts := make([]int, p.Size())
	counts[6] = 3

	a.ApplyPenalties(logits, counts)

	if logits[6] >= 0 {
		t.Fatalf("repeated token should be penalized downward, got %f", logits[6])
	}
	if logits[7] != 0 {
		t.Fatalf("unseen token should be untouched, got %f", logits[7])
	}
}

func TestIsAppropriateBands(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)
	a.SetContext(b.Build("guard", "friendly"))

	cases := []struct {
		id   int
		want bool
		desc string
	}{
		{0, true, "common"},
		{1, true, "common and role-matched"},
		{2, true, "role-matched mid band"},
		{3, true, "mood-matched mid band"},
		{6, false, "plain mid band"},
		{19, false, "rare"},
	}
	for _, c := range cases {
		if got := a.IsAppropriate(c.id); got != c.want {
			t.Errorf("%s (token %d %q): got %v want %v", c.desc, c.id, p.Text(c.id), got, c.want)
		}
	}
}

func TestContextProfileReplacedWholesale(t *testing.T) {
	p := testProfile(t)
	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)

	a.SetContext(b.Build("guard", "friendly"))
	if !a.Context().InRole(1) {
		t.Fatal("guard context should match token 1")
	}

	a.SetContext(b.Build("wizard", "stoic"))
	if a.Context().InRole(1) {
		t.Fatal("context replacement should drop previous role matches")
	}
}

func TestRareTokenAppropriatenessIgnoresContext(t *testing.T) {
	// A rare token stays inappropriate even when its text matches a keyword.
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = fmt.Sprintf("w%d", i)
	}
	texts[39] = "arcaneguardword" // rank 39 → rare, but matches "guard"
	entries := make([]vocab.Entry, len(texts))
	for i, txt := range texts {
		entries[i] = vocab.Entry{ID: i, Text: txt, Score: float32(len(texts) - i)}
	}
	p, err := vocab.Build(entries)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	b := NewContextBuilder(p, persona.DefaultLibrary())
	a := NewAccelerator(p)
	a.SetContext(b.Build("guard", "friendly"))

	if !a.Context().InRole(39) {
		t.Fatal("token should be role-matched by text")
	}
	if a.IsAppropriate(39) {
		t.Fatal("rare tokens are rejected before context matching")
	}
}
