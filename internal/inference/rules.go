// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"fmt"
	"strings"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// Rule adds Delta to Pole when When holds for the artist's facts.
type Rule struct {
	Name  string
	When  func(facts) bool
	Pole  types.Pole
	Delta int
}

// facts is the normalized view of a bundle the rule predicates read.
type facts struct {
	bio         string
	nationality string
	era         string
	movements   map[string]bool
	birthYear   int
	hasBirth    bool
}

func newFacts(b evidence.Bundle) facts {
	f := facts{
		bio:         evidence.NormalizeName(b.Bio.Value),
		nationality: evidence.NormalizeName(b.Nationality.Value),
		era:         evidence.NormalizeName(b.Era.Value),
		movements:   make(map[string]bool),
		birthYear:   b.BirthYear.Value,
		hasBirth:    b.BirthYear.Present(),
	}
	for _, tag := range b.MovementTags() {
		if m := canonicalMovement(evidence.NormalizeName(tag)); m != "" {
			f.movements[m] = true
		}
	}
	// An era label naming a movement ("Impressionism") counts as that
	// movement.
	if m := canonicalMovement(f.era); m != "" {
		f.movements[m] = true
	}
	return f
}

type poleDelta struct {
	pole  types.Pole
	delta int
}

type tendency struct {
	key    string
	deltas []poleDelta
}

func bump(p types.Pole, n int) poleDelta { return poleDelta{p, n} }

// movementTendencies are listed most specific first; a tag maps to the
// first entry whose key appears in it as a whole phrase.
var movementTendencies = []tendency{
	{"abstract expressionism", []poleDelta{bump('L', 20), bump('A', 40), bump('E', 25), bump('F', 30)}},
	{"post impressionism", []poleDelta{bump('A', 15), bump('E', 25), bump('F', 20)}},
	{"neo expressionism", []poleDelta{bump('A', 20), bump('E', 30), bump('F', 25)}},
	{"impressionism", []poleDelta{bump('A', 20), bump('E', 15), bump('F', 20)}},
	{"expressionism", []poleDelta{bump('L', 15), bump('A', 25), bump('E', 30), bump('F', 15)}},
	{"cubism", []poleDelta{bump('A', 30), bump('M', 20), bump('C', 10)}},
	{"surrealism", []poleDelta{bump('A', 35), bump('E', 20), bump('F', 25)}},
	{"pop art", []poleDelta{bump('S', 25), bump('M', 15), bump('C', 10)}},
	{"minimalism", []poleDelta{bump('L', 20), bump('M', 25), bump('C', 30)}},
	{"renaissance", []poleDelta{bump('R', 30), bump('M', 20), bump('C', 25)}},
	{"baroque", []poleDelta{bump('R', 20), bump('E', 15), bump('C', 20)}},
	{"romanticism", []poleDelta{bump('E', 30), bump('F', 20)}},
	{"realism", []poleDelta{bump('R', 35), bump('M', 10), bump('C', 15)}},
	{"street art", []poleDelta{bump('S', 20), bump('M', 15), bump('F', 20)}},
	{"conceptual art", []poleDelta{bump('A', 25), bump('M', 30)}},
	{"dansaekhwa", []poleDelta{bump('L', 20), bump('A', 30), bump('C', 15)}},
}

// canonicalMovement returns the first movementTendencies key found in the
// normalized tag, or "".
func canonicalMovement(tag string) string {
	for _, t := range movementTendencies {
		if evidence.ContainsTokens(tag, t.key) {
			return t.key
		}
	}
	return ""
}

type cultural struct {
	name   string
	keys   []string
	deltas []poleDelta
}

var culturalTendencies = []cultural{
	{"Korean", []string{"korean", "korea"}, []poleDelta{bump('L', 15), bump('E', 20), bump('F', 10)}},
	{"Japanese", []string{"japanese", "japan"}, []poleDelta{bump('L', 20), bump('A', 15), bump('C', 15)}},
	{"Chinese", []string{"chinese", "china"}, []poleDelta{bump('M', 15), bump('C', 20)}},
	{"French", []string{"french", "france"}, []poleDelta{bump('A', 15), bump('E', 10), bump('F', 15)}},
	{"German", []string{"german", "germany"}, []poleDelta{bump('M', 20), bump('C', 20)}},
	{"Italian", []string{"italian", "italy", "florentine", "venetian"}, []poleDelta{bump('E', 15), bump('R', 10)}},
	{"American", []string{"american", "united states", "usa"}, []poleDelta{bump('S', 10), bump('F', 15)}},
	{"British", []string{"british", "english", "scottish", "united kingdom", "england"}, []poleDelta{bump('M', 10), bump('C', 10)}},
	{"Russian", []string{"russian", "russia"}, []poleDelta{bump('E', 20), bump('A', 10)}},
}

type eraBucket struct {
	name     string
	from, to int // birth years, to exclusive
	labels   []string
	deltas   []poleDelta
}

// eraBuckets apply by birth year, or by era label when the birth year is
// unknown.
var eraBuckets = []eraBucket{
	{"pre-1400", -10000, 1400, []string{"medieval", "gothic", "byzantine"}, []poleDelta{bump('R', 30), bump('M', 20), bump('C', 25), bump('L', 10)}},
	{"1400-1600", 1400, 1600, []string{"renaissance", "15th century", "16th century"}, []poleDelta{bump('R', 25), bump('M', 15), bump('C', 20)}},
	{"1600-1750", 1600, 1750, []string{"baroque", "17th century", "golden age"}, []poleDelta{bump('R', 15), bump('E', 10), bump('C', 15)}},
	{"1750-1850", 1750, 1850, []string{"18th century", "romantic", "neoclassical"}, []poleDelta{bump('E', 25), bump('F', 15), bump('A', 10)}},
	{"1850-1950", 1850, 1950, []string{"19th century", "modern", "early 20th century"}, []poleDelta{bump('A', 15), bump('E', 10), bump('F', 10)}},
	{"1950+", 1950, 10000, []string{"contemporary", "21st century", "postmodern"}, []poleDelta{bump('A', 20), bump('S', 15), bump('M', 10)}},
}

// keywordDelta is added per biography keyword hit.
const keywordDelta = 10

var bioKeywords = []struct {
	pole  types.Pole
	words []string
}{
	{types.PoleLone, []string{"solitary", "reclusive", "isolated", "hermit", "alone", "withdrawn", "withdrew from public life"}},
	{types.PoleSocial, []string{"collaborative", "collective", "group", "teacher", "movement"}},
	{types.PoleAbstract, []string{"abstract", "non-figurative", "conceptual", "symbolic", "surreal"}},
	{types.PoleRepresentational, []string{"realistic", "figurative", "portrait", "landscape", "still life", "naturalistic"}},
	{types.PoleEmotional, []string{"passionate", "expressive", "emotional", "romantic", "dramatic", "intense"}},
	{types.PoleMeaning, []string{"intellectual", "philosophical", "analytical", "theoretical", "critical", "allegorical"}},
	{types.PoleFlow, []string{"spontaneous", "intuitive", "experimental", "improvised", "avant-garde", "radical"}},
	{types.PoleConstructive, []string{"systematic", "structured", "methodical", "disciplined", "academic", "precise"}},
}

// DefaultRules returns the heuristic rule table in evaluation order:
// movements, nationality, era, then biography keywords.
func DefaultRules() []Rule {
	var rules []Rule

	for _, t := range movementTendencies {
		key := t.key
		for _, pd := range t.deltas {
			rules = append(rules, Rule{
				Name:  "movement " + key,
				When:  func(f facts) bool { return f.movements[key] },
				Pole:  pd.pole,
				Delta: pd.delta,
			})
		}
	}

	for _, c := range culturalTendencies {
		keys := c.keys
		for _, pd := range c.deltas {
			rules = append(rules, Rule{
				Name:  "nationality " + c.name,
				When:  func(f facts) bool { return anyPhrase(f.nationality, keys) },
				Pole:  pd.pole,
				Delta: pd.delta,
			})
		}
	}

	for _, e := range eraBuckets {
		for _, pd := range e.deltas {
			rules = append(rules, Rule{
				Name: "era " + e.name,
				When: func(f facts) bool {
					if f.hasBirth {
						return f.birthYear >= e.from && f.birthYear < e.to
					}
					return anyPhrase(f.era, e.labels)
				},
				Pole:  pd.pole,
				Delta: pd.delta,
			})
		}
	}

	for _, group := range bioKeywords {
		for _, w := range group.words {
			phrase := evidence.NormalizeName(w)
			rules = append(rules, Rule{
				Name:  fmt.Sprintf("bio %q", w),
				When:  func(f facts) bool { return bioHas(f.bio, phrase) },
				Pole:  group.pole,
				Delta: keywordDelta,
			})
		}
	}

	return rules
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if evidence.ContainsTokens(text, evidence.NormalizeName(p)) {
			return true
		}
	}
	return false
}

// bioHas reports whether phrase occurs in the normalized biography as whole
// words, ignoring occurrences negated by a preceding "non" ("non
// figurative" does not count as "figurative").
func bioHas(bio, phrase string) bool {
	if phrase == "" {
		return false
	}
	padded := " " + bio + " "
	needle := " " + phrase + " "
	for i := 0; ; {
		j := strings.Index(padded[i:], needle)
		if j < 0 {
			return false
		}
		pos := i + j
		if !strings.HasSuffix(padded[:pos+1], " non ") {
			return true
		}
		i = pos + 1
	}
}
