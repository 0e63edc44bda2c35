// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archetype

import (
	"math"

	"github.com/pdiddy/apt-engine/pkg/types"
)

// Base confidences per strategy.
const (
	ConfidenceOverride  = 0.95
	ConfidenceAI        = 0.85
	ConfidenceHeuristic = 0.60
)

const (
	// ambiguousLow and ambiguousHigh bound the band (inclusive) in which an
	// axis counts as ambiguous.
	ambiguousLow  = 45
	ambiguousHigh = 55

	// ambiguityDiscountTenths is the share of base confidence, in tenths,
	// removed per ambiguous axis.
	ambiguityDiscountTenths = 1

	// secondaryMargin: a secondary code is reported when the weakest axis
	// is closer than this to 50.
	secondaryMargin = 12.5
)

// BaseConfidence returns the starting confidence for a strategy.
func BaseConfidence(s types.Strategy) float64 {
	switch s {
	case types.StrategyOverride:
		return ConfidenceOverride
	case types.StrategyAI:
		return ConfidenceAI
	default:
		return ConfidenceHeuristic
	}
}

// Resolution is the result of resolving a score vector.
type Resolution struct {
	Archetype  Archetype
	Confidence float64
	Secondary  string
	Ambiguous  int
}

// Resolve maps d to its archetype. Confidence is the strategy's base
// confidence less 10% of base for every axis in the 45..55 band, rounded
// to two decimals.
func Resolve(d types.Dimensions, s types.Strategy) Resolution {
	code := CodeFor(d)
	arch, _ := Lookup(code)

	n := AmbiguousAxes(d)
	// Work in whole percent so 0.85 with one ambiguous axis is exactly 0.77.
	pct := math.Round(BaseConfidence(s) * 100)
	conf := math.Round(pct*float64(10-ambiguityDiscountTenths*n)/10) / 100

	return Resolution{
		Archetype:  arch,
		Confidence: conf,
		Secondary:  Secondary(d),
		Ambiguous:  n,
	}
}

// AmbiguousAxes counts axes whose first pole lies in the ambiguous band.
func AmbiguousAxes(d types.Dimensions) int {
	n := 0
	for _, axis := range types.Axes {
		first, _ := axis.Poles()
		if v := d.Pole(first); v >= ambiguousLow && v <= ambiguousHigh {
			n++
		}
	}
	return n
}

// Secondary returns the code obtained by flipping the weakest axis when
// that axis is near balance, or "".
func Secondary(d types.Dimensions) string {
	weakest := AxesByStrength(d)[0]
	if Strength(d, weakest) >= secondaryMargin {
		return ""
	}
	return Flip(CodeFor(d), weakest)
}

// Assign builds a full assignment from scores and strategy metadata.
func Assign(d types.Dimensions, s types.Strategy, reasoning string) types.Assignment {
	r := Resolve(d, s)
	return types.Assignment{
		Code:       r.Archetype.Code,
		Title:      r.Archetype.Title,
		Animal:     r.Archetype.Animal,
		Confidence: r.Confidence,
		Strategy:   s,
		Reasoning:  reasoning,
		Secondary:  r.Secondary,
		Dimensions: d,
	}
}
