// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// mockBackend returns a canned response or error and counts calls.
type mockBackend struct {
	resp  AIResponse
	err   error
	calls int
}

func (m *mockBackend) Infer(_ context.Context, _ Request) (AIResponse, error) {
	m.calls++
	return m.resp, m.err
}

func str(v string) evidence.Field[string] {
	return evidence.Field[string]{Value: v, Source: types.SourceCatalog}
}

func TestScore_EmptyBundleIsNeutral(t *testing.T) {
	d, fired := Score(DefaultRules(), evidence.Bundle{Name: "Anonymous"})
	assert.Equal(t, types.NeutralDimensions(), d)
	assert.Empty(t, fired)
	assert.Equal(t, "SRMC", archetype.CodeFor(d))
}

func TestScore_SolitaryAbstractExpressionist(t *testing.T) {
	b := evidence.Bundle{
		Name:      "A. Painter",
		Bio:       str("A solitary painter who withdrew from public life."),
		Movements: []evidence.Field[string]{str("Abstract Expressionism")},
	}
	d, fired := Score(DefaultRules(), b)
	require.NoError(t, d.Validate())

	assert.Equal(t, types.Dimensions{L: 64, S: 36, A: 64, R: 36, E: 60, M: 40, F: 62, C: 38}, d)
	assert.Equal(t, "LAEF", archetype.CodeFor(d))
	assert.Contains(t, fired, "movement abstract expressionism")
	assert.Contains(t, fired, `bio "solitary"`)
	assert.Contains(t, fired, `bio "withdrew from public life"`)
	assert.NotContains(t, fired, "movement expressionism")
}

func TestScore_Bounds(t *testing.T) {
	b := evidence.Bundle{
		Name: "Everything",
		Bio: str("solitary reclusive isolated hermit alone withdrawn abstract conceptual symbolic surreal " +
			"passionate expressive emotional romantic dramatic intense spontaneous intuitive experimental improvised radical"),
		Nationality: str("Korean"),
		Era:         str("Contemporary"),
		Movements: []evidence.Field[string]{
			str("Abstract Expressionism"), str("Surrealism"), str("Expressionism"), str("Dansaekhwa"),
		},
	}
	d, _ := Score(DefaultRules(), b)
	require.NoError(t, d.Validate())
	for _, p := range types.Poles {
		assert.GreaterOrEqual(t, d.Pole(p), scoreFloor, p.String())
		assert.LessOrEqual(t, d.Pole(p), scoreCeil, p.String())
	}
}

func TestScore_EraByBirthYearWinsOverLabel(t *testing.T) {
	b := evidence.Bundle{
		Name:      "Renaissance Man",
		Era:       str("Contemporary"),
		BirthYear: evidence.Field[int]{Value: 1450, Source: types.SourceCatalog},
	}
	_, fired := Score(DefaultRules(), b)
	assert.Contains(t, fired, "era 1400-1600")
	assert.NotContains(t, fired, "era 1950+")

	b.BirthYear = evidence.Field[int]{}
	_, fired = Score(DefaultRules(), b)
	assert.Contains(t, fired, "era 1950+")
}

func TestScore_EraLabelNamesMovement(t *testing.T) {
	_, fired := Score(DefaultRules(), evidence.Bundle{Name: "x", Era: str("Impressionism")})
	assert.Contains(t, fired, "movement impressionism")
}

func TestBioHas(t *testing.T) {
	assert.True(t, bioHas("a figurative painter", "figurative"))
	assert.False(t, bioHas("a non figurative painter", "figurative"))
	assert.True(t, bioHas("non figurative early then figurative later", "figurative"))
	assert.False(t, bioHas("configurative", "figurative"))
	assert.True(t, bioHas("a non figurative painter", "non figurative"))
	assert.False(t, bioHas("anything", ""))
}

func TestInfer_OverrideBeatsAI(t *testing.T) {
	o, err := LoadOverrides("")
	require.NoError(t, err)
	backend := &mockBackend{}
	e := NewEngine(Options{Backend: backend, Overrides: o})

	res := e.Infer(context.Background(), evidence.Bundle{Name: "Mark Rothko"}, types.GradeHigh)
	assert.Equal(t, types.StrategyOverride, res.Strategy)
	assert.Equal(t, "Mark Rothko", res.Override)
	assert.Equal(t, 80, res.Dimensions.L)
	assert.Equal(t, 0, backend.calls)
}

func TestInfer_AI(t *testing.T) {
	backend := &mockBackend{resp: AIResponse{
		AxisScores: json.RawMessage(`[70, 30, 80, 20, 60, 40, 55, 45]`),
		Reasoning:  "Quiet abstraction.",
	}}
	e := NewEngine(Options{Backend: backend})

	res := e.Infer(context.Background(), evidence.Bundle{Name: "x"}, types.GradeMedium)
	assert.Equal(t, types.StrategyAI, res.Strategy)
	assert.Equal(t, "Quiet abstraction.", res.Reasoning)
	assert.Equal(t, 70, res.Dimensions.L)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, backend.calls)
}

func TestInfer_AIFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		backend *mockBackend
	}{
		{"unavailable", &mockBackend{err: ErrAIUnavailable}},
		{"malformed", &mockBackend{resp: AIResponse{AxisScores: json.RawMessage(`[1, 2, 3]`)}}},
		{"other", &mockBackend{err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(Options{Backend: tt.backend})
			res := e.Infer(context.Background(), evidence.Bundle{Name: "x"}, types.GradeHigh)
			assert.Equal(t, types.StrategyHeuristic, res.Strategy)
			assert.True(t, res.Fallback)
			assert.NoError(t, res.Dimensions.Validate())
		})
	}
}

func TestInfer_LowGradeSkipsAI(t *testing.T) {
	backend := &mockBackend{err: errors.New("should not be called")}
	e := NewEngine(Options{Backend: backend})

	for _, g := range []types.ReliabilityGrade{types.GradeLow, types.GradeVeryLow} {
		res := e.Infer(context.Background(), evidence.Bundle{Name: "x"}, g)
		assert.Equal(t, types.StrategyHeuristic, res.Strategy)
		assert.False(t, res.Fallback)
	}
	assert.Equal(t, 0, backend.calls)
}

func TestInfer_NoBackend(t *testing.T) {
	res := NewEngine(Options{}).Infer(context.Background(), evidence.Bundle{Name: "x"}, types.GradeHigh)
	assert.Equal(t, types.StrategyHeuristic, res.Strategy)
	assert.False(t, res.Fallback)
}

func TestRerun(t *testing.T) {
	e := NewEngine(Options{})
	snap := balance.NewSnapshot(map[string]int{"SRMC": 10, "LAEF": 10})
	policy := balance.DefaultPolicy()

	res, ok := e.Rerun(evidence.Bundle{Name: "x"}, "SRMC", snap, policy)
	require.True(t, ok)
	assert.Equal(t, types.StrategyHeuristic, res.Strategy)
	assert.Equal(t, 51, res.Dimensions.L)
	assert.Equal(t, "LRMC", archetype.CodeFor(res.Dimensions))
	assert.Contains(t, res.Reasoning, "Rebalanced away from over-represented SRMC")
}
