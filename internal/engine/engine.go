// Package engine orchestrates one conversation turn end to end: mood
// selection, context refresh, the accelerated generation loop, output
// hygiene, and the turn-boundary tracker update.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/accel"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/prompt"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/sampler"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/tracker"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region config
// Config bounds the generation loop and parameterizes sampling.
type Config struct {
	MaxOutputTokens   int // hard cap over any mood's max
	MinResponseTokens int // hard floor under any mood's min
	Sampling          sampler.Config
}

// DefaultConfig returns the host's tuned generation bounds.
func DefaultConfig() Config {
	return Config{
		MaxOutputTokens:   300,
		MinResponseTokens: 8,
		Sampling:          sampler.DefaultConfig(),
	}
}
// #endregion config

// #region engine
// Engine ties the acceleration core to a model backend for a single ongoing
// conversation. It is single-threaded by design: one turn at a time, with all
// adaptive state mutated only between turns.
type Engine struct {
	model    Model
	profile  *vocab.Profile
	library  *persona.Library
	contexts *accel.ContextBuilder
	accel    *accel.Accelerator
	tracker  *tracker.Tracker
	producer *tracker.Producer
	sampler  *sampler.Sampler
	config   Config
}

// New builds an Engine over the model's vocabulary. Fails when the model
// reports an invalid vocabulary.
func New(model Model, library *persona.Library, config Config) (*Engine, error) {
	profile, err := vocab.Build(model.Vocabulary())
	if err != nil {
		return nil, fmt.Errorf("engine init: %w", err)
	}
	return &Engine{
		model:    model,
		profile:  profile,
		library:  library,
		contexts: accel.NewContextBuilder(profile, library),
		accel:    accel.NewAccelerator(profile),
		tracker:  tracker.New(),
		producer: tracker.NewProducer(tracker.DefaultProducerConfig()),
		sampler:  sampler.New(config.Sampling),
		config:   config,
	}, nil
}

// Profile exposes the vocabulary profile for inspection tooling.
func (e *Engine) Profile() *vocab.Profile { return e.profile }

// Tracker exposes the conversation tracker for inspection tooling.
func (e *Engine) Tracker() *tracker.Tracker { return e.tracker }

// #endregion engine

// #region turn-types

// Stop reasons reported per turn.
const (
	StopMaxTokens        = "max_tokens"
	StopEOS              = "eos"
	StopClosingQuote     = "closing_quote"
	StopForbiddenSpeaker = "forbidden_speaker"
)

// TurnInput carries everything one turn needs from the host.
type TurnInput struct {
	NPC       persona.NPC
	State     persona.GameState
	UserInput string
}

// TurnResult is the completed turn.
type TurnResult struct {
	Mood       string
	MoodReason string
	Response   string
	TokenCount int
	StopReason string
	Elapsed    time.Duration
}

// #endregion turn-types

// #region run-turn
// RunTurn executes one full conversation turn. Sequencing per the engine's
// contract: the turn context is refreshed once up front, Accelerate runs
// exactly once per step before sampling, repetition penalties apply in log
// space per candidate occurrence count, and the tracker is updated only after
// generation finishes.
func (e *Engine) RunTurn(ctx context.Context, input TurnInput) (TurnResult, error) {
	start := time.Now()

	decision := persona.PickMood(input.NPC, input.State, input.UserInput)
	mood := e.library.MoodByName(decision.Mood)

	e.accel.SetContext(e.contexts.Build(input.NPC.Archetype, decision.Mood))

	turnPrompt := prompt.Build(input.NPC, mood, input.State, input.UserInput)
	if err := e.model.BeginTurn(ctx, turnPrompt); err != nil {
		return TurnResult{}, fmt.Errorf("begin turn: %w", err)
	}

	minTokens := max(e.config.MinResponseTokens, mood.MinTokens)
	maxTokens := min(e.config.MaxOutputTokens, mood.MaxTokens)

	counts := make([]int, e.profile.Size())
	generated := make([]int, 0, maxTokens)
	var raw strings.Builder
	stopReason := StopMaxTokens

	params := e.tracker.Params()
	frequencies := e.tracker.Frequencies()

loop:
	for i := 0; i < maxTokens; i++ {
		logits, err := e.model.Logits(ctx)
		if err != nil {
			return TurnResult{}, fmt.Errorf("step %d logits: %w", i, err)
		}
		if len(logits) != e.profile.Size() {
			return TurnResult{}, fmt.Errorf("step %d: logit buffer size %d does not match vocabulary %d", i, len(logits), e.profile.Size())
		}

		e.accel.Accelerate(logits, i, maxTokens-i, params, frequencies)
		e.accel.ApplyPenalties(logits, counts)

		token := e.sampler.Sample(logits)

		if token == e.model.EOS() {
			if i >= minTokens {
				stopReason = StopEOS
				break
			}
			// Below the response floor: skip the end token and keep going.
			continue
		}

		generated = append(generated, token)
		counts[token]++
		tokenText := e.profile.Text(token)
		raw.WriteString(tokenText)

		if strings.Contains(tokenText, "\"") && len(generated) >= minTokens {
			stopReason = StopClosingQuote
			break
		}

		lower := strings.ToLower(raw.String())
		for _, cue := range []string{strings.ToLower(input.State.PlayerName) + ":", "you say", "adventurer:"} {
			if len(cue) > 1 && strings.Contains(lower, cue) {
				stopReason = StopForbiddenSpeaker
				break loop
			}
		}

		if err := e.model.Accept(ctx, token); err != nil {
			return TurnResult{}, fmt.Errorf("step %d accept: %w", i, err)
		}
	}

	response := prompt.Sanitize(raw.String())
	response = prompt.TruncateForbiddenSpeaker(response, input.State.PlayerName)
	response = prompt.CleanResponse(strings.TrimSpace(response))

	// Turn boundary: the only safe point to touch adaptive state.
	e.tracker.RecordTurn(len(generated))
	e.producer.Observe(e.tracker, generated, response)

	return TurnResult{
		Mood:       decision.Mood,
		MoodReason: decision.Reason,
		Response:   response,
		TokenCount: len(generated),
		StopReason: stopReason,
		Elapsed:    time.Since(start),
	}, nil
}
// #endregion run-turn
