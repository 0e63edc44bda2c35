// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// AIBackend abstracts the generative AI API so tests can supply a mock.
type AIBackend interface {
	Infer(ctx context.Context, req Request) (AIResponse, error)
}

// maxPromptBio caps the biography characters sent to the model.
const maxPromptBio = 1500

// Request is the evidence handed to an AI backend.
type Request struct {
	Name         string
	Bio          string
	Nationality  string
	Era          string
	BirthYear    *int
	DeathYear    *int
	Movements    []string
	ArtworkCount int
}

// NewRequest builds a request from an evidence bundle.
func NewRequest(b evidence.Bundle) Request {
	r := Request{
		Name:         b.Name,
		Bio:          truncate(b.Bio.Value, maxPromptBio),
		Nationality:  b.Nationality.Value,
		Era:          b.Era.Value,
		Movements:    b.MovementTags(),
		ArtworkCount: b.ArtworkCount.Value,
	}
	if b.BirthYear.Present() {
		y := b.BirthYear.Value
		r.BirthYear = &y
	}
	if b.DeathYear.Present() {
		y := b.DeathYear.Value
		r.DeathYear = &y
	}
	return r
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// AIResponse is the structured reply expected from a backend. AxisScores
// is kept raw because models answer with either an eight-element array in
// L,S,A,R,E,M,F,C order or an object keyed by pole letter.
type AIResponse struct {
	AxisScores json.RawMessage `json:"axis_scores"`
	Reasoning  string          `json:"reasoning"`
}

// DecodeResponse parses model output text into an AIResponse. Markdown code
// fences and prose around the JSON object are ignored.
func DecodeResponse(text string) (AIResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return AIResponse{}, fmt.Errorf("%w: no JSON object in response", ErrMalformedOutput)
	}
	var resp AIResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return AIResponse{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return resp, nil
}

// ParseScores converts raw axis scores into renormalized dimensions.
func ParseScores(raw json.RawMessage) (types.Dimensions, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return types.Dimensions{}, fmt.Errorf("%w: axis_scores missing", ErrMalformedOutput)
	}

	var values [8]float64
	switch raw[0] {
	case '[':
		var arr []float64
		if err := json.Unmarshal(raw, &arr); err != nil {
			return types.Dimensions{}, fmt.Errorf("%w: axis_scores: %v", ErrMalformedOutput, err)
		}
		if len(arr) != len(types.Poles) {
			return types.Dimensions{}, fmt.Errorf("%w: axis_scores has %d values, want 8", ErrMalformedOutput, len(arr))
		}
		copy(values[:], arr)
	case '{':
		var obj map[string]float64
		if err := json.Unmarshal(raw, &obj); err != nil {
			return types.Dimensions{}, fmt.Errorf("%w: axis_scores: %v", ErrMalformedOutput, err)
		}
		byPole := make(map[types.Pole]float64, len(obj))
		for k, v := range obj {
			k = strings.ToUpper(strings.TrimSpace(k))
			if len(k) != 1 {
				continue
			}
			byPole[types.Pole(k[0])] = v
		}
		for i, p := range types.Poles {
			v, ok := byPole[p]
			if !ok {
				return types.Dimensions{}, fmt.Errorf("%w: axis_scores missing %s", ErrMalformedOutput, p)
			}
			values[i] = v
		}
	default:
		return types.Dimensions{}, fmt.Errorf("%w: axis_scores is neither array nor object", ErrMalformedOutput)
	}

	var d types.Dimensions
	for i, axis := range types.Axes {
		p, q := values[2*i], values[2*i+1]
		first, _ := axis.Poles()
		v, err := Renormalize(p, q)
		if err != nil {
			return types.Dimensions{}, fmt.Errorf("axis %s: %w", axis, err)
		}
		d.SetPole(first, v)
	}
	return d, nil
}

// Renormalize scales a pole pair proportionally so it sums to 100 and
// returns the first pole's integer share: round(100·p/(p+q)). The partner
// is 100 minus the result.
func Renormalize(p, q float64) (int, error) {
	if math.IsNaN(p) || math.IsNaN(q) || math.IsInf(p, 0) || math.IsInf(q, 0) {
		return 0, fmt.Errorf("%w: non-finite score", ErrMalformedOutput)
	}
	if p < 0 || q < 0 {
		return 0, fmt.Errorf("%w: negative score", ErrMalformedOutput)
	}
	if p+q == 0 {
		return 0, fmt.Errorf("%w: pair sums to zero", ErrMalformedOutput)
	}
	return int(math.Round(100 * p / (p + q))), nil
}
