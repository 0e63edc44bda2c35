// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reliability grades how complete an artist's evidence is. The
// grade decides which inference strategy may run.
package reliability

import (
	"unicode/utf8"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// Field weights. They sum to 100.
const (
	WeightBirthYear    = 15
	WeightDeathYear    = 10
	WeightNationality  = 15
	WeightMovement     = 20
	WeightBio          = 25
	WeightArtworkCount = 15
)

// Grade thresholds on the 0..100 score.
const (
	ThresholdHigh   = 75
	ThresholdMedium = 50
	ThresholdLow    = 25
)

// DefaultBioMinLength is the biography length, in characters, at which
// the biography starts counting as evidence.
const DefaultBioMinLength = 200

// Assessment is a score together with its grade.
type Assessment struct {
	Score int                    `json:"score"`
	Grade types.ReliabilityGrade `json:"grade"`
}

// Assessor scores evidence bundles.
type Assessor struct {
	bioMinLength int
}

// NewAssessor returns an assessor. A non-positive bioMinLength uses
// DefaultBioMinLength.
func NewAssessor(bioMinLength int) *Assessor {
	if bioMinLength <= 0 {
		bioMinLength = DefaultBioMinLength
	}
	return &Assessor{bioMinLength: bioMinLength}
}

// Assess scores b. Each present field adds its fixed weight, so adding
// fields never lowers the score.
func (a *Assessor) Assess(b evidence.Bundle) Assessment {
	score := 0
	if b.BirthYear.Present() {
		score += WeightBirthYear
	}
	if b.DeathYear.Present() {
		score += WeightDeathYear
	}
	if b.Nationality.Present() {
		score += WeightNationality
	}
	if len(b.Movements) > 0 {
		score += WeightMovement
	}
	if b.Bio.Present() && utf8.RuneCountInString(b.Bio.Value) >= a.bioMinLength {
		score += WeightBio
	}
	if b.ArtworkCount.Present() && b.ArtworkCount.Value >= 1 {
		score += WeightArtworkCount
	}
	return Assessment{Score: score, Grade: GradeFor(score)}
}

// GradeFor maps a score to its grade.
func GradeFor(score int) types.ReliabilityGrade {
	switch {
	case score >= ThresholdHigh:
		return types.GradeHigh
	case score >= ThresholdMedium:
		return types.GradeMedium
	case score >= ThresholdLow:
		return types.GradeLow
	default:
		return types.GradeVeryLow
	}
}
