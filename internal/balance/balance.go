// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package balance keeps any single archetype from dominating the catalog.
// All functions are pure: the population is an explicit Snapshot value
// loaded once per batch and updated by the caller after each persist.
package balance

import (
	"fmt"
	"math"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// Policy holds the balancing thresholds.
type Policy struct {
	// Ceiling is the population share above which a code is over-represented.
	Ceiling float64

	// MinPopulation is the population size below which no rebalancing happens.
	MinPopulation int

	// HighConfidence is the confidence at or above which assignments are kept.
	HighConfidence float64
}

// DefaultPolicy targets an equal sixteen-way split and tolerates up to
// twice the equal share.
func DefaultPolicy() Policy {
	return Policy{
		Ceiling:        2.0 / archetype.Count,
		MinPopulation:  archetype.Count,
		HighConfidence: 0.70,
	}
}

// PolicyFrom converts configuration into a Policy.
func PolicyFrom(cfg types.BalanceConfig) Policy {
	return Policy{
		Ceiling:        cfg.Ceiling,
		MinPopulation:  cfg.MinPopulation,
		HighConfidence: cfg.HighConfidence,
	}
}

// Snapshot is the number of persisted assignments per archetype.
type Snapshot struct {
	counts [archetype.Count]int
	total  int
}

// NewSnapshot builds a snapshot from per-code counts. Unknown codes are
// ignored.
func NewSnapshot(counts map[string]int) Snapshot {
	var s Snapshot
	for code, n := range counts {
		if i := archetype.Index(code); i >= 0 && n > 0 {
			s.counts[i] += n
			s.total += n
		}
	}
	return s
}

// Total returns the population size.
func (s Snapshot) Total() int { return s.total }

// Count returns the number of assignments with code.
func (s Snapshot) Count(code string) int {
	if i := archetype.Index(code); i >= 0 {
		return s.counts[i]
	}
	return 0
}

// Share returns code's fraction of the population, 0 when empty.
func (s Snapshot) Share(code string) float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.Count(code)) / float64(s.total)
}

// Record returns a copy of s with one assignment moved from prevCode to
// newCode. Either may be empty: an empty prevCode adds, an empty newCode
// removes.
func (s Snapshot) Record(newCode, prevCode string) Snapshot {
	if i := archetype.Index(prevCode); i >= 0 && s.counts[i] > 0 {
		s.counts[i]--
		s.total--
	}
	if i := archetype.Index(newCode); i >= 0 {
		s.counts[i]++
		s.total++
	}
	return s
}

// Without returns a copy of s with one assignment of code removed. Used to
// judge a reclassified artist against everyone else.
func (s Snapshot) Without(code string) Snapshot {
	return s.Record("", code)
}

// OverCeiling reports whether code's share exceeds the policy ceiling in a
// population large enough for the ceiling to apply.
func (s Snapshot) OverCeiling(code string, p Policy) bool {
	return s.total >= p.MinPopulation && s.Share(code) > p.Ceiling
}

// Check reports whether a should be steered away from its code: it is not
// a curated override, its confidence is below the policy's high-confidence
// mark, and its code is already over the ceiling.
func Check(a types.Assignment, s Snapshot, p Policy) bool {
	if a.Strategy == types.StrategyOverride {
		return false
	}
	if a.Confidence >= p.HighConfidence {
		return false
	}
	return s.OverCeiling(a.Code, p)
}

// Candidate is a perturbed score vector that resolves to a different code.
type Candidate struct {
	Dimensions types.Dimensions
	Code       string

	// Change describes the perturbation, e.g. "F/C flipped 52→49".
	Change string
}

// Alternative finds the least-perturbed scores near d whose code is not avoid
// and not over the ceiling. The unperturbed code is tried first; then each
// single axis, weakest first, is flipped minimally so its dominant pole
// drops to 49. ok is false when all candidates are exhausted.
func Alternative(d types.Dimensions, avoid string, s Snapshot, p Policy) (Candidate, bool) {
	acceptable := func(code string) bool {
		return code != avoid && !s.OverCeiling(code, p)
	}

	if code := archetype.CodeFor(d); acceptable(code) {
		return Candidate{Dimensions: d, Code: code, Change: "heuristic scores unchanged"}, true
	}

	for _, axis := range archetype.AxesByStrength(d) {
		first, _ := axis.Poles()
		before := d.Pole(first)
		after := 51
		if before > 50 {
			after = 49
		}

		alt := d
		alt.SetPole(first, after)
		code := archetype.CodeFor(alt)
		if acceptable(code) {
			return Candidate{
				Dimensions: alt,
				Code:       code,
				Change:     fmt.Sprintf("%s flipped %d→%d", axis, before, after),
			}, true
		}
	}
	return Candidate{}, false
}

// Entry is one row of a distribution.
type Entry struct {
	Archetype archetype.Archetype `json:"archetype"`
	Count     int                 `json:"count"`
	Share     float64             `json:"share"`
}

// Distribution is the archetype population report.
type Distribution struct {
	Total         int     `json:"total"`
	Entries       []Entry `json:"entries"`
	Diversity     float64 `json:"diversity"`
	Dominant      string  `json:"dominant,omitempty"`
	DominantShare float64 `json:"dominant_share"`
}

// Distribution reports all sixteen archetypes in table order with their
// counts and shares, the diversity index, and the dominant code (lowest
// index wins ties).
func (s Snapshot) Distribution() Distribution {
	dist := Distribution{Total: s.total, Diversity: s.Diversity()}
	best := -1
	for i := 0; i < archetype.Count; i++ {
		e := Entry{Archetype: archetype.At(i), Count: s.counts[i]}
		if s.total > 0 {
			e.Share = float64(s.counts[i]) / float64(s.total)
		}
		dist.Entries = append(dist.Entries, e)
		if s.counts[i] > 0 && (best < 0 || s.counts[i] > s.counts[best]) {
			best = i
		}
	}
	if best >= 0 {
		dist.Dominant = archetype.At(best).Code
		dist.DominantShare = dist.Entries[best].Share
	}
	return dist
}

// Diversity is the Shannon entropy of the distribution divided by its
// maximum, log2(16): 0 when everyone shares one code (or nobody is
// classified), 1 for a perfectly even split.
func (s Snapshot) Diversity() float64 {
	if s.total == 0 {
		return 0
	}
	h := 0.0
	for _, n := range s.counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(s.total)
		h -= p * math.Log2(p)
	}
	return h / math.Log2(archetype.Count)
}
