package tracker

import (
	"math"
	"testing"
)

func TestRecordTurnComplexityClampLow(t *testing.T) {
	tr := New()

	// ceil(log(0.5)/log(0.9)) = 7: short responses must drive the factor to
	// the 0.5 floor within 7 turns.
	needed := int(math.Ceil(math.Log(0.5) / math.Log(0.9)))
	for i := 0; i < needed; i++ {
		tr.RecordTurn(10)
	}
	if got := tr.Params().Complexity; got != 0.5 {
		t.Fatalf("complexity should saturate at 0.5 after %d short turns, got %f", needed, got)
	}

	// Further short turns stay pinned.
	tr.RecordTurn(10)
	if got := tr.Params().Complexity; got != 0.5 {
		t.Fatalf("complexity should stay clamped at 0.5, got %f", got)
	}
}

func TestRecordTurnComplexityClampHigh(t *testing.T) {
	tr := New()
	for i := 0; i < 60; i++ {
		tr.RecordTurn(100)
	}
	if got := tr.Params().Complexity; got != 2.0 {
		t.Fatalf("complexity should saturate at 2.0, got %f", got)
	}
}

func TestRecordTurnMidBandUnchanged(t *testing.T) {
	tr := New()
	tr.RecordTurn(35)
	if got := tr.Params().Complexity; got != 1.0 {
		t.Fatalf("mid-band average should leave complexity at 1.0, got %f", got)
	}
}

func TestRecencyWindowBounded(t *testing.T) {
	tr := New()
	// Five long turns push complexity up; then short turns must eventually
	// dominate the average once the long lengths age out of the window.
	for i := 0; i < 5; i++ {
		tr.RecordTurn(100)
	}
	up := tr.Params().Complexity
	if up <= 1.0 {
		t.Fatalf("long turns should raise complexity, got %f", up)
	}
	for i := 0; i < 10; i++ {
		tr.RecordTurn(5)
	}
	if got := tr.Params().Complexity; got >= up {
		t.Fatalf("window turnover should let short turns pull complexity down: %f >= %f", got, up)
	}
	if tr.TurnCount() != 15 {
		t.Fatalf("expected 15 turns, got %d", tr.TurnCount())
	}
}

func TestProducerObserveFrequencies(t *testing.T) {
	tr := New()
	p := NewProducer(DefaultProducerConfig())

	tokens := []int{3, 3, 3, 3, 7}
	p.Observe(tr, tokens, "well well well well met")

	if tr.Frequency(3) <= tr.Frequency(7) {
		t.Fatalf("dominant token should carry higher frequency: %f <= %f", tr.Frequency(3), tr.Frequency(7))
	}
	if tr.Frequency(99) != 0 {
		t.Fatalf("unobserved token should have zero frequency, got %f", tr.Frequency(99))
	}

	// A turn without token 3 decays its frequency.
	before := tr.Frequency(3)
	p.Observe(tr, []int{7, 8}, "something else")
	if after := tr.Frequency(3); after >= before {
		t.Fatalf("absent token should decay: %f >= %f", after, before)
	}
}

func TestProducerEngagementFollowsDiversity(t *testing.T) {
	varied := New()
	repetitive := New()
	p := NewProducer(DefaultProducerConfig())

	p.Observe(varied, []int{1, 2, 3}, "bright unique words everywhere today")
	p.Observe(repetitive, []int{1, 2, 3}, "same same same same same")

	if varied.Params().Engagement <= repetitive.Params().Engagement {
		t.Fatalf("diverse text should score higher engagement: %f <= %f",
			varied.Params().Engagement, repetitive.Params().Engagement)
	}
}

func TestSettersBypassProducer(t *testing.T) {
	tr := New()
	tr.SetEngagement(1.4)
	tr.SetPattern(0.7)
	if tr.Params().Engagement != 1.4 || tr.Params().Pattern != 0.7 {
		t.Fatalf("direct setters should stick, got %+v", tr.Params())
	}
}
