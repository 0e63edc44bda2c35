// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs classification batches: for each candidate artist
// it gathers evidence, grades it, infers scores, resolves the archetype,
// applies the population balancer and persists the profile. Artists are
// processed one at a time; a failure on one artist never stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/internal/inference"
	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/internal/reliability"
	"github.com/pdiddy/apt-engine/internal/store"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// ArtistStore is the persistence a batch reads candidates from and writes
// profiles to. *store.Store implements it.
type ArtistStore interface {
	Snapshot(ctx context.Context) (balance.Snapshot, error)
	Candidates(ctx context.Context, opts store.CandidateOptions) ([]store.Candidate, error)
	SaveProfile(ctx context.Context, id string, p types.Profile) error
}

// Runner wires the classification stages together.
type Runner struct {
	Store    ArtistStore
	Evidence *evidence.Aggregator
	Assessor *reliability.Assessor
	Engine   *inference.Engine
	Policy   balance.Policy

	// Now stamps assignments; defaults to time.Now.
	Now func() time.Time
}

// Options selects the artists of one batch.
type Options struct {
	// Limit caps the number of artists; zero means no limit.
	Limit int

	// StaleAfter also reclassifies artists classified longer ago than
	// this. Zero disables staleness.
	StaleAfter time.Duration

	// Force reclassifies every artist.
	Force bool

	// IDs restricts the batch to these artists.
	IDs []string
}

// BatchSummary holds the counts of a batch run.
type BatchSummary struct {
	RunID        string
	Classified   int
	Failed       int
	Rebalanced   int
	Fallbacks    int
	Distribution balance.Distribution
}

// Total returns the number of artists processed.
func (s BatchSummary) Total() int {
	return s.Classified + s.Failed
}

// HasFailures reports whether any artist failed to persist.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run classifies the selected artists, writing one outcome line per artist
// and a final summary to w. It returns an error only when the batch could
// not start or the context was cancelled; per-artist failures are counted
// in the summary.
func (r *Runner) Run(ctx context.Context, opts Options, w io.Writer) (BatchSummary, error) {
	summary := BatchSummary{RunID: uuid.NewString()}
	log := logging.With().Str("run", summary.RunID).Logger()

	snap, err := r.Store.Snapshot(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading distribution: %w", err)
	}

	copts := store.CandidateOptions{Limit: opts.Limit, Force: opts.Force, IDs: opts.IDs}
	if opts.StaleAfter > 0 {
		copts.StaleBefore = r.now().Add(-opts.StaleAfter)
	}
	candidates, err := r.Store.Candidates(ctx, copts)
	if err != nil {
		return summary, fmt.Errorf("selecting artists: %w", err)
	}
	log.Info().Int("artists", len(candidates)).Int("population", snap.Total()).Msg("batch started")

	var runErr error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		o := r.classify(ctx, c, snap)
		if err := r.Store.SaveProfile(ctx, c.ID, types.NewProfile(o.assignment, summary.RunID)); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", c.ID, err)
			summary.Failed++
			var perr *store.PersistenceError
			if !errors.As(err, &perr) {
				log.Error().Err(err).Str("artist", c.ID).Msg("unexpected persistence error")
			}
			continue
		}
		snap = snap.Record(o.assignment.Code, c.CurrentCode)

		summary.Classified++
		if o.assignment.Rebalanced {
			summary.Rebalanced++
		}
		if o.fallback {
			summary.Fallbacks++
		}
		fmt.Fprintf(w, "classified %s %s %s (%.2f, %s)%s\n",
			c.ID, o.assignment.Code, o.assignment.Title, o.assignment.Confidence, o.assignment.Strategy, o.note())
	}

	final, err := r.Store.Snapshot(context.WithoutCancel(ctx))
	if err != nil {
		return summary, fmt.Errorf("reloading distribution: %w", err)
	}
	summary.Distribution = final.Distribution()

	fmt.Fprintf(w, "\nBatch summary: %d classified, %d failed, %d rebalanced, %d AI fallbacks (total: %d)\n",
		summary.Classified, summary.Failed, summary.Rebalanced, summary.Fallbacks, summary.Total())
	fmt.Fprintln(w, RenderDistribution(summary.Distribution))

	log.Info().
		Int("classified", summary.Classified).
		Int("failed", summary.Failed).
		Float64("diversity", summary.Distribution.Diversity).
		Msg("batch finished")

	return summary, runErr
}

// outcome is the in-memory result for one artist before persistence.
type outcome struct {
	assignment types.Assignment
	fallback   bool
	previous   string
}

func (o outcome) note() string {
	switch {
	case o.assignment.Rebalanced:
		return " rebalanced from " + o.previous
	case o.fallback:
		return " after AI fallback"
	default:
		return ""
	}
}

func (r *Runner) classify(ctx context.Context, c store.Candidate, snap balance.Snapshot) outcome {
	bundle := r.Evidence.Gather(ctx, c.ArtistRecord)
	grade := r.Assessor.Assess(bundle).Grade
	res := r.Engine.Infer(ctx, bundle, grade)

	sources := bundle.Sources()
	if res.Strategy == types.StrategyOverride {
		sources = append(sources, types.SourceOverride)
	}
	finish := func(a types.Assignment) types.Assignment {
		a.Reliability = grade
		a.Sources = sources
		a.ClassifiedAt = r.now()
		return a
	}

	o := outcome{
		assignment: finish(archetype.Assign(res.Dimensions, res.Strategy, res.Reasoning)),
		fallback:   res.Fallback,
	}

	// The artist's current code is excluded so a reclassification is judged
	// against everyone else.
	others := snap.Without(c.CurrentCode)
	if !balance.Check(o.assignment, others, r.Policy) {
		return o
	}
	alt, ok := r.Engine.Rerun(bundle, o.assignment.Code, others, r.Policy)
	if !ok {
		logging.Debug().Str("artist", c.ID).Str("code", o.assignment.Code).Msg("no rebalancing alternative")
		return o
	}

	o.previous = o.assignment.Code
	o.assignment = finish(archetype.Assign(alt.Dimensions, alt.Strategy, alt.Reasoning))
	o.assignment.Rebalanced = true
	return o
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
