// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reliability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

func fullBundle() evidence.Bundle {
	return evidence.Bundle{
		ArtistID:     "a1",
		Name:         "Claude Monet",
		Bio:          evidence.Field[string]{Value: strings.Repeat("b", 250), Source: types.SourceWikipedia},
		Nationality:  evidence.Field[string]{Value: "French", Source: types.SourceWikipedia},
		BirthYear:    evidence.Field[int]{Value: 1840, Source: types.SourceWikipedia},
		DeathYear:    evidence.Field[int]{Value: 1926, Source: types.SourceWikipedia},
		Movements:    []evidence.Field[string]{{Value: "Impressionism", Source: types.SourceCatalog}},
		ArtworkCount: evidence.Field[int]{Value: 73, Source: types.SourceMetMuseum},
	}
}

func TestWeightsSumTo100(t *testing.T) {
	sum := WeightBirthYear + WeightDeathYear + WeightNationality + WeightMovement + WeightBio + WeightArtworkCount
	assert.Equal(t, 100, sum)
}

func TestAssess(t *testing.T) {
	a := NewAssessor(0)

	tests := []struct {
		name   string
		bundle func() evidence.Bundle
		score  int
		grade  types.ReliabilityGrade
	}{
		{
			name:   "everything present",
			bundle: fullBundle,
			score:  100,
			grade:  types.GradeHigh,
		},
		{
			name:   "empty bundle",
			bundle: func() evidence.Bundle { return evidence.Bundle{ArtistID: "x"} },
			score:  0,
			grade:  types.GradeVeryLow,
		},
		{
			name: "short biography does not count",
			bundle: func() evidence.Bundle {
				b := fullBundle()
				b.Bio.Value = "Painter."
				return b
			},
			score: 75,
			grade: types.GradeHigh,
		},
		{
			name: "years and nationality only",
			bundle: func() evidence.Bundle {
				b := evidence.Bundle{}
				b.BirthYear = evidence.Field[int]{Value: 1900, Source: types.SourceCatalog}
				b.DeathYear = evidence.Field[int]{Value: 1980, Source: types.SourceCatalog}
				b.Nationality = evidence.Field[string]{Value: "Korean", Source: types.SourceCatalog}
				return b
			},
			score: 40,
			grade: types.GradeLow,
		},
		{
			name: "movement and bio alone stay low",
			bundle: func() evidence.Bundle {
				b := fullBundle()
				b.BirthYear = evidence.Field[int]{}
				b.DeathYear = evidence.Field[int]{}
				b.Nationality = evidence.Field[string]{}
				b.ArtworkCount = evidence.Field[int]{}
				b.Bio.Value = strings.Repeat("가", 200)
				return b
			},
			score: 45,
			grade: types.GradeLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Assess(tt.bundle())
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.grade, got.Grade)
		})
	}
}

func TestBioThresholdCountsCharacters(t *testing.T) {
	b := evidence.Bundle{Bio: evidence.Field[string]{Value: strings.Repeat("가", 199), Source: types.SourceCatalog}}
	assert.Equal(t, 0, NewAssessor(200).Assess(b).Score)
	b.Bio.Value += "가"
	assert.Equal(t, WeightBio, NewAssessor(200).Assess(b).Score)
	assert.Equal(t, WeightBio, NewAssessor(10).Assess(evidence.Bundle{Bio: evidence.Field[string]{Value: "ten chars!", Source: types.SourceCatalog}}).Score)
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, types.GradeVeryLow, GradeFor(24))
	assert.Equal(t, types.GradeLow, GradeFor(25))
	assert.Equal(t, types.GradeMedium, GradeFor(50))
	assert.Equal(t, types.GradeHigh, GradeFor(75))
	assert.Equal(t, types.GradeHigh, GradeFor(100))
}

// Adding any populated field to any subset of fields never lowers the score.
func TestAssessMonotonic(t *testing.T) {
	full := fullBundle()
	setters := []func(*evidence.Bundle){
		func(b *evidence.Bundle) { b.Bio = full.Bio },
		func(b *evidence.Bundle) { b.Nationality = full.Nationality },
		func(b *evidence.Bundle) { b.BirthYear = full.BirthYear },
		func(b *evidence.Bundle) { b.DeathYear = full.DeathYear },
		func(b *evidence.Bundle) { b.Movements = full.Movements },
		func(b *evidence.Bundle) { b.ArtworkCount = full.ArtworkCount },
		func(b *evidence.Bundle) { b.Era = evidence.Field[string]{Value: "Modern", Source: types.SourceCatalog} },
	}
	a := NewAssessor(0)

	for mask := 0; mask < 1<<len(setters); mask++ {
		var base evidence.Bundle
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				set(&base)
			}
		}
		before := a.Assess(base)
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				continue
			}
			more := base
			set(&more)
			after := a.Assess(more)
			assert.GreaterOrEqual(t, after.Score, before.Score, "mask %b + field %d", mask, i)
			assert.GreaterOrEqual(t, after.Grade.Rank(), before.Grade.Rank())
		}
	}
}
