// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference produces the eight pole scores for an artist. A
// curated override wins outright; otherwise an AI backend is asked when the
// evidence is good enough, and a declarative heuristic rule table is the
// fallback for everything else.
package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/internal/httputil"
	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/pkg/types"
)

var (
	// ErrMalformedOutput means the AI response did not parse into eight
	// usable scores.
	ErrMalformedOutput = errors.New("malformed inference output")

	// ErrAIUnavailable means no AI backend is configured or it could not
	// be reached.
	ErrAIUnavailable = errors.New("AI backend unavailable")
)

// MinAIGrade is the lowest reliability grade at which the AI strategy runs.
const MinAIGrade = types.GradeMedium

// Result is the outcome of inference for one artist.
type Result struct {
	Dimensions types.Dimensions
	Strategy   types.Strategy
	Reasoning  string

	// Fallback is set when the AI strategy was attempted and failed.
	Fallback bool

	// Override is the curated entry name when Strategy is curated_override.
	Override string
}

// Options configures an Engine.
type Options struct {
	// Backend is the AI backend; nil disables the AI strategy.
	Backend AIBackend

	// Pacer spaces AI calls with every other external call of the batch.
	Pacer *httputil.Pacer

	// Timeout bounds one AI call. Zero means no extra bound.
	Timeout time.Duration

	// Overrides is the curated table; nil means no overrides.
	Overrides *Overrides
}

// Engine selects and runs an inference strategy.
type Engine struct {
	backend   AIBackend
	pacer     *httputil.Pacer
	timeout   time.Duration
	overrides *Overrides
	rules     []Rule
}

// NewEngine returns an engine using the default heuristic rule table.
func NewEngine(opts Options) *Engine {
	return &Engine{
		backend:   opts.Backend,
		pacer:     opts.Pacer,
		timeout:   opts.Timeout,
		overrides: opts.Overrides,
		rules:     DefaultRules(),
	}
}

// Infer scores one artist. It never fails: AI errors are logged and the
// heuristic runs instead.
func (e *Engine) Infer(ctx context.Context, b evidence.Bundle, grade types.ReliabilityGrade) Result {
	if o, ok := e.overrides.Match(b.Name); ok {
		return Result{
			Dimensions: o.Dimensions,
			Strategy:   types.StrategyOverride,
			Reasoning:  o.Reasoning,
			Override:   o.Name,
		}
	}

	fallback := false
	if grade.AtLeast(MinAIGrade) && e.backend != nil {
		res, err := e.inferAI(ctx, b)
		if err == nil {
			return res
		}
		fallback = true
		logging.Warn().Err(err).Str("artist", b.ArtistID).Msg("AI inference failed, using heuristic")
	}

	res := e.Heuristic(b)
	res.Fallback = fallback
	return res
}

func (e *Engine) inferAI(ctx context.Context, b evidence.Bundle) (Result, error) {
	if err := e.pacer.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.backend.Infer(ctx, NewRequest(b))
	if err != nil {
		return Result{}, err
	}
	d, err := ParseScores(resp.AxisScores)
	if err != nil {
		return Result{}, err
	}
	return Result{Dimensions: d, Strategy: types.StrategyAI, Reasoning: resp.Reasoning}, nil
}

// Heuristic scores b with the rule table alone.
func (e *Engine) Heuristic(b evidence.Bundle) Result {
	d, fired := Score(e.rules, b)
	return Result{
		Dimensions: d,
		Strategy:   types.StrategyHeuristic,
		Reasoning:  heuristicReasoning(fired),
	}
}

// Rerun repeats the heuristic for b while steering away from the
// over-represented code avoid. The heuristic scores are handed to the
// balancer, which picks the least-perturbed alternative not over the
// ceiling. ok is false when every alternative is exhausted.
func (e *Engine) Rerun(b evidence.Bundle, avoid string, snap balance.Snapshot, policy balance.Policy) (Result, bool) {
	res := e.Heuristic(b)
	alt, ok := balance.Alternative(res.Dimensions, avoid, snap, policy)
	if !ok {
		return Result{}, false
	}
	res.Dimensions = alt.Dimensions
	res.Reasoning = fmt.Sprintf("%s Rebalanced away from over-represented %s (%s).", res.Reasoning, avoid, alt.Change)
	return res, true
}
