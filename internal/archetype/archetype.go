// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archetype maps eight pole scores to one of the sixteen
// four-letter archetype codes.
package archetype

import (
	"math"

	"github.com/pdiddy/apt-engine/pkg/types"
)

// Count is the number of archetypes.
const Count = 16

// Archetype is one entry of the fixed archetype table.
type Archetype struct {
	Code   string `json:"code" yaml:"code"`
	Animal string `json:"animal" yaml:"animal"`
	Title  string `json:"title" yaml:"title"`
}

// table is indexed by Index(code): bit 3 is set for S, bit 2 for R, bit 1
// for M and bit 0 for C.
var table = [Count]Archetype{
	{"LAEF", "Fox", "Dreamy Wanderer"},
	{"LAEC", "Cat", "Emotional Curator"},
	{"LAMF", "Owl", "Intuitive Explorer"},
	{"LAMC", "Turtle", "Philosophical Collector"},
	{"LREF", "Chameleon", "Solitary Observer"},
	{"LREC", "Hedgehog", "Delicate Connoisseur"},
	{"LRMF", "Octopus", "Digital Explorer"},
	{"LRMC", "Beaver", "Scholarly Researcher"},
	{"SAEF", "Butterfly", "Emotion Sharer"},
	{"SAEC", "Penguin", "Art Networker"},
	{"SAMF", "Parrot", "Inspiration Evangelist"},
	{"SAMC", "Deer", "Cultural Planner"},
	{"SREF", "Dog", "Passionate Viewer"},
	{"SREC", "Duck", "Warm Guide"},
	{"SRMF", "Elephant", "Knowledge Mentor"},
	{"SRMC", "Eagle", "Systematic Educator"},
}

// All returns the sixteen archetypes in index order.
func All() []Archetype {
	out := make([]Archetype, Count)
	copy(out, table[:])
	return out
}

// Index returns the table position of code, or -1 if code is not valid.
func Index(code string) int {
	if len(code) != len(types.Axes) {
		return -1
	}
	idx := 0
	for i, axis := range types.Axes {
		first, second := axis.Poles()
		idx <<= 1
		switch types.Pole(code[i]) {
		case first:
		case second:
			idx |= 1
		default:
			return -1
		}
	}
	return idx
}

// Lookup returns the archetype for code.
func Lookup(code string) (Archetype, bool) {
	i := Index(code)
	if i < 0 {
		return Archetype{}, false
	}
	return table[i], true
}

// At returns the archetype at table index i.
func At(i int) Archetype {
	return table[i]
}

// Valid reports whether code is one of the sixteen codes.
func Valid(code string) bool {
	return Index(code) >= 0
}

// CodeFor returns the code for d. On each axis the first pole is chosen
// only when it scores strictly above 50, so a 50/50 tie resolves to the
// second pole and the all-balanced vector gives "SRMC".
func CodeFor(d types.Dimensions) string {
	code := make([]byte, len(types.Axes))
	for i, axis := range types.Axes {
		code[i] = byte(dominant(d, axis))
	}
	return string(code)
}

func dominant(d types.Dimensions, axis types.Axis) types.Pole {
	first, second := axis.Poles()
	if d.Pole(first) > 50 {
		return first
	}
	return second
}

// Flip returns code with the letter on axis replaced by its opposite pole.
func Flip(code string, axis types.Axis) string {
	b := []byte(code)
	b[axis] = byte(types.Pole(b[axis]).Opposite())
	return string(b)
}

// Strength is the distance of an axis's first pole from 50.
func Strength(d types.Dimensions, axis types.Axis) float64 {
	first, _ := axis.Poles()
	return math.Abs(float64(d.Pole(first) - 50))
}

// AxesByStrength returns the four axes ordered weakest first; ties keep
// axis order.
func AxesByStrength(d types.Dimensions) []types.Axis {
	axes := append([]types.Axis(nil), types.Axes[:]...)
	// Insertion sort keeps equal strengths in axis order.
	for i := 1; i < len(axes); i++ {
		for j := i; j > 0 && Strength(d, axes[j]) < Strength(d, axes[j-1]); j-- {
			axes[j], axes[j-1] = axes[j-1], axes[j]
		}
	}
	return axes
}
