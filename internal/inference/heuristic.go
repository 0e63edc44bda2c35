// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"fmt"
	"strings"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

const (
	baseline   = 50
	poleFloor  = 1
	scoreFloor = 5
	scoreCeil  = 95
)

// Score evaluates rules against b. Every pole starts at 50 and accumulates
// the deltas of the rules that hold; each pair is then renormalized to sum
// to 100 and kept within 5..95. It returns the distinct names of the rules
// that fired, in table order.
func Score(rules []Rule, b evidence.Bundle) (types.Dimensions, []string) {
	f := newFacts(b)

	raw := make(map[types.Pole]int, len(types.Poles))
	for _, p := range types.Poles {
		raw[p] = baseline
	}

	var fired []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if !r.When(f) {
			continue
		}
		raw[r.Pole] += r.Delta
		if !seen[r.Name] {
			seen[r.Name] = true
			fired = append(fired, r.Name)
		}
	}

	var d types.Dimensions
	for _, axis := range types.Axes {
		first, second := axis.Poles()
		p := max(raw[first], poleFloor)
		q := max(raw[second], poleFloor)
		v, _ := Renormalize(float64(p), float64(q))
		d.SetPole(first, min(max(v, scoreFloor), scoreCeil))
	}
	return d, fired
}

func heuristicReasoning(fired []string) string {
	if len(fired) == 0 {
		return "Heuristic scores: no rule matched the available evidence; all axes balanced."
	}
	return fmt.Sprintf("Heuristic scores from %d rules: %s.", len(fired), strings.Join(fired, ", "))
}
