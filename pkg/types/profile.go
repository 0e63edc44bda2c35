// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Pole is one end of a bipolar axis, identified by its code letter.
type Pole byte

const (
	PoleLone             Pole = 'L'
	PoleSocial           Pole = 'S'
	PoleAbstract         Pole = 'A'
	PoleRepresentational Pole = 'R'
	PoleEmotional        Pole = 'E'
	PoleMeaning          Pole = 'M'
	PoleFlow             Pole = 'F'
	PoleConstructive     Pole = 'C'
)

// Poles lists all eight poles in axis order.
var Poles = [8]Pole{
	PoleLone, PoleSocial,
	PoleAbstract, PoleRepresentational,
	PoleEmotional, PoleMeaning,
	PoleFlow, PoleConstructive,
}

// String returns the pole's code letter.
func (p Pole) String() string {
	return string(rune(p))
}

// Axis returns the axis the pole belongs to.
func (p Pole) Axis() Axis {
	switch p {
	case PoleLone, PoleSocial:
		return AxisLS
	case PoleAbstract, PoleRepresentational:
		return AxisAR
	case PoleEmotional, PoleMeaning:
		return AxisEM
	default:
		return AxisFC
	}
}

// Opposite returns the other pole of the same axis.
func (p Pole) Opposite() Pole {
	first, second := p.Axis().Poles()
	if p == first {
		return second
	}
	return first
}

// Axis is one of the four bipolar trait dimensions.
type Axis int

const (
	AxisLS Axis = iota // Lone / Social
	AxisAR             // Abstract / Representational
	AxisEM             // Emotional / Meaning-driven
	AxisFC             // Flow / Constructive
)

// Axes lists the four axes in code order.
var Axes = [4]Axis{AxisLS, AxisAR, AxisEM, AxisFC}

// Poles returns the axis's two poles in code order.
func (a Axis) Poles() (first, second Pole) {
	switch a {
	case AxisLS:
		return PoleLone, PoleSocial
	case AxisAR:
		return PoleAbstract, PoleRepresentational
	case AxisEM:
		return PoleEmotional, PoleMeaning
	default:
		return PoleFlow, PoleConstructive
	}
}

func (a Axis) String() string {
	first, second := a.Poles()
	return first.String() + "/" + second.String()
}

// Dimensions holds the eight pole scores. Each axis pair sums to 100.
type Dimensions struct {
	L int `json:"L" yaml:"L"`
	S int `json:"S" yaml:"S"`
	A int `json:"A" yaml:"A"`
	R int `json:"R" yaml:"R"`
	E int `json:"E" yaml:"E"`
	M int `json:"M" yaml:"M"`
	F int `json:"F" yaml:"F"`
	C int `json:"C" yaml:"C"`
}

// NeutralDimensions returns the balanced 50/50 vector.
func NeutralDimensions() Dimensions {
	return Dimensions{L: 50, S: 50, A: 50, R: 50, E: 50, M: 50, F: 50, C: 50}
}

// Pole returns the score of pole p.
func (d Dimensions) Pole(p Pole) int {
	switch p {
	case PoleLone:
		return d.L
	case PoleSocial:
		return d.S
	case PoleAbstract:
		return d.A
	case PoleRepresentational:
		return d.R
	case PoleEmotional:
		return d.E
	case PoleMeaning:
		return d.M
	case PoleFlow:
		return d.F
	default:
		return d.C
	}
}

// SetPole sets pole p to v and its opposite to 100-v.
func (d *Dimensions) SetPole(p Pole, v int) {
	d.set(p, v)
	d.set(p.Opposite(), 100-v)
}

func (d *Dimensions) set(p Pole, v int) {
	switch p {
	case PoleLone:
		d.L = v
	case PoleSocial:
		d.S = v
	case PoleAbstract:
		d.A = v
	case PoleRepresentational:
		d.R = v
	case PoleEmotional:
		d.E = v
	case PoleMeaning:
		d.M = v
	case PoleFlow:
		d.F = v
	case PoleConstructive:
		d.C = v
	}
}

// Validate reports an error unless every score is within [0,100] and every
// axis pair sums to exactly 100.
func (d Dimensions) Validate() error {
	for _, a := range Axes {
		first, second := a.Poles()
		p, q := d.Pole(first), d.Pole(second)
		if p < 0 || p > 100 || q < 0 || q > 100 {
			return fmt.Errorf("axis %s: score out of range (%d/%d)", a, p, q)
		}
		if p+q != 100 {
			return fmt.Errorf("axis %s: pair sums to %d, want 100", a, p+q)
		}
	}
	return nil
}

// ReliabilityGrade is the ordered evidence-quality label.
type ReliabilityGrade string

const (
	GradeVeryLow ReliabilityGrade = "very_low"
	GradeLow     ReliabilityGrade = "low"
	GradeMedium  ReliabilityGrade = "medium"
	GradeHigh    ReliabilityGrade = "high"
)

// Rank returns the grade's position in the order very_low < low < medium < high.
// Unknown grades rank below very_low.
func (g ReliabilityGrade) Rank() int {
	switch g {
	case GradeVeryLow:
		return 0
	case GradeLow:
		return 1
	case GradeMedium:
		return 2
	case GradeHigh:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether g ranks at or above min.
func (g ReliabilityGrade) AtLeast(min ReliabilityGrade) bool {
	return g.Rank() >= min.Rank()
}

// Strategy names the inference path that produced an assignment.
type Strategy string

const (
	StrategyOverride  Strategy = "curated_override"
	StrategyAI        Strategy = "ai_assisted"
	StrategyHeuristic Strategy = "heuristic"
)

// Assignment is the resolved archetype for one artist.
type Assignment struct {
	// Code is the four-letter archetype code (e.g. "LAEF").
	Code string `json:"code" yaml:"code"`

	// Title is the archetype's title (e.g. "Dreamy Wanderer").
	Title string `json:"title" yaml:"title"`

	// Animal is the archetype's symbolic label (e.g. "Fox").
	Animal string `json:"animal" yaml:"animal"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Strategy is the inference path that produced the scores.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Reasoning is free text explaining the scores.
	Reasoning string `json:"reasoning" yaml:"reasoning"`

	// Secondary is the code obtained by flipping the weakest axis, set only
	// when that axis is close to balanced.
	Secondary string `json:"secondary,omitempty" yaml:"secondary,omitempty"`

	// Reliability is the evidence grade at classification time.
	Reliability ReliabilityGrade `json:"reliability" yaml:"reliability"`

	// Sources lists the evidence sources that contributed at least one field.
	Sources []Source `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Rebalanced is true when the population balancer moved the assignment
	// off an over-represented code.
	Rebalanced bool `json:"rebalanced" yaml:"rebalanced"`

	// Dimensions are the eight pole scores the code was resolved from.
	Dimensions Dimensions `json:"dimensions" yaml:"dimensions"`

	// ClassifiedAt is when the assignment was produced.
	ClassifiedAt time.Time `json:"classified_at" yaml:"classified_at"`
}

// Profile is the persisted apt_profile document consumed by the serving layer.
type Profile struct {
	Dimensions   Dimensions   `json:"dimensions" yaml:"dimensions"`
	PrimaryTypes []TypeWeight `json:"primary_types" yaml:"primary_types"`
	Meta         ProfileMeta  `json:"meta" yaml:"meta"`
}

// TypeWeight is one entry of Profile.PrimaryTypes. The first entry carries the
// assignment; an optional second entry carries the secondary code.
type TypeWeight struct {
	Type       string  `json:"type" yaml:"type"`
	Title      string  `json:"title,omitempty" yaml:"title,omitempty"`
	Animal     string  `json:"animal,omitempty" yaml:"animal,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Weight     float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// ProfileMeta records how a profile was produced.
type ProfileMeta struct {
	Strategy     Strategy         `json:"strategy" yaml:"strategy"`
	Reliability  ReliabilityGrade `json:"reliability" yaml:"reliability"`
	Reasoning    string           `json:"reasoning" yaml:"reasoning"`
	Sources      []Source         `json:"sources,omitempty" yaml:"sources,omitempty"`
	Rebalanced   bool             `json:"rebalanced" yaml:"rebalanced"`
	ClassifiedAt time.Time        `json:"classified_at" yaml:"classified_at"`
	RunID        string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// secondaryWeight is the weight reported for the secondary type.
const secondaryWeight = 0.3

// NewProfile builds the persisted document for an assignment.
func NewProfile(a Assignment, runID string) Profile {
	p := Profile{
		Dimensions: a.Dimensions,
		PrimaryTypes: []TypeWeight{{
			Type:       a.Code,
			Title:      a.Title,
			Animal:     a.Animal,
			Confidence: a.Confidence,
			Weight:     1 - secondaryWeight,
		}},
		Meta: ProfileMeta{
			Strategy:     a.Strategy,
			Reliability:  a.Reliability,
			Reasoning:    a.Reasoning,
			Sources:      a.Sources,
			Rebalanced:   a.Rebalanced,
			ClassifiedAt: a.ClassifiedAt,
			RunID:        runID,
		},
	}
	if a.Secondary == "" {
		p.PrimaryTypes[0].Weight = 1
	} else {
		p.PrimaryTypes = append(p.PrimaryTypes, TypeWeight{Type: a.Secondary, Weight: secondaryWeight})
	}
	return p
}

// Assignment reconstructs the assignment a profile was built from.
func (p Profile) Assignment() Assignment {
	a := Assignment{
		Dimensions:   p.Dimensions,
		Strategy:     p.Meta.Strategy,
		Reasoning:    p.Meta.Reasoning,
		Reliability:  p.Meta.Reliability,
		Sources:      p.Meta.Sources,
		Rebalanced:   p.Meta.Rebalanced,
		ClassifiedAt: p.Meta.ClassifiedAt,
	}
	if len(p.PrimaryTypes) > 0 {
		a.Code = p.PrimaryTypes[0].Type
		a.Title = p.PrimaryTypes[0].Title
		a.Animal = p.PrimaryTypes[0].Animal
		a.Confidence = p.PrimaryTypes[0].Confidence
	}
	if len(p.PrimaryTypes) > 1 {
		a.Secondary = p.PrimaryTypes[1].Type
	}
	return a
}
