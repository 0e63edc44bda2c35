// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds case and strips diacritics, replacing punctuation
// with single spaces: "Claude Monét" and "claude-monet" both become
// "claude monet". Hangul and other scripts pass through unchanged.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = cases.Fold().String(folded)

	var b strings.Builder
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// SameArtist reports whether two display names refer to the same person:
// equal after normalization, or one appears as a contiguous run of at least
// two tokens in the other. A single-token name matches only the other
// name's surname ("Monet" matches "Claude Monet", "Claude" does not).
func SameArtist(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if short, long := singleToken(na, nb); short != "" {
		return strings.HasSuffix(long, " "+short)
	}
	return ContainsTokens(na, nb) || ContainsTokens(nb, na)
}

// singleToken returns the one-token name and the other name when either
// of a and b has a single token.
func singleToken(a, b string) (short, long string) {
	switch {
	case !strings.Contains(a, " "):
		return a, b
	case !strings.Contains(b, " "):
		return b, a
	}
	return "", ""
}

// ContainsTokens reports whether the normalized phrase needle occurs in
// haystack on token boundaries.
func ContainsTokens(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

type vocabEntry struct {
	pattern string
	tag     string
}

// movementVocabulary maps phrases found in free text to canonical
// movement tags. Longer phrases are matched first so "abstract
// expressionism" is not also counted as "expressionism".
var movementVocabulary = func() []vocabEntry {
	v := []vocabEntry{
		{"abstract expressionism", "Abstract Expressionism"},
		{"abstract expressionist", "Abstract Expressionism"},
		{"post-impressionism", "Post-Impressionism"},
		{"post-impressionist", "Post-Impressionism"},
		{"neo-expressionism", "Neo-Expressionism"},
		{"neo-expressionist", "Neo-Expressionism"},
		{"impressionism", "Impressionism"},
		{"impressionist", "Impressionism"},
		{"expressionism", "Expressionism"},
		{"expressionist", "Expressionism"},
		{"cubism", "Cubism"},
		{"cubist", "Cubism"},
		{"surrealism", "Surrealism"},
		{"surrealist", "Surrealism"},
		{"pop art", "Pop Art"},
		{"minimalism", "Minimalism"},
		{"minimalist", "Minimalism"},
		{"high renaissance", "Renaissance"},
		{"renaissance", "Renaissance"},
		{"baroque", "Baroque"},
		{"romanticism", "Romanticism"},
		{"realism", "Realism"},
		{"realist", "Realism"},
		{"fauvism", "Fauvism"},
		{"dada", "Dada"},
		{"futurism", "Futurism"},
		{"art nouveau", "Art Nouveau"},
		{"neoclassicism", "Neoclassicism"},
		{"neoclassical", "Neoclassicism"},
		{"conceptual art", "Conceptual Art"},
		{"street art", "Street Art"},
		{"graffiti", "Street Art"},
		{"dansaekhwa", "Dansaekhwa"},
		{"ukiyo-e", "Ukiyo-e"},
		{"symbolism", "Symbolism"},
	}
	sort.SliceStable(v, func(i, j int) bool { return len(v[i].pattern) > len(v[j].pattern) })
	return v
}()

var wordBoundary = regexp.MustCompile(`[^\p{L}\p{N}-]+`)

// DetectMovements scans free text for known movement phrases and returns
// their canonical tags in order of first appearance.
func DetectMovements(text string) []string {
	if text == "" {
		return nil
	}
	lower := " " + strings.TrimSpace(wordBoundary.ReplaceAllString(strings.ToLower(text), " ")) + " "

	type hit struct {
		pos int
		tag string
	}
	var hits []hit
	seen := make(map[string]bool)
	for _, v := range movementVocabulary {
		needle := " " + v.pattern + " "
		for {
			i := strings.Index(lower, needle)
			if i < 0 {
				break
			}
			// Blank the match so shorter phrases inside it are not counted.
			lower = lower[:i+1] + strings.Repeat("_", len(v.pattern)) + lower[i+1+len(v.pattern):]
			if !seen[v.tag] {
				seen[v.tag] = true
				hits = append(hits, hit{pos: i, tag: v.tag})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	tags := make([]string, len(hits))
	for i, h := range hits {
		tags[i] = h.tag
	}
	return tags
}

// demonyms are the nationality adjectives recognised in descriptions.
var demonyms = []string{
	"American", "Argentine", "Australian", "Austrian", "Belgian", "Brazilian",
	"British", "Canadian", "Chinese", "Colombian", "Czech", "Danish", "Dutch",
	"English", "Finnish", "Flemish", "French", "German", "Greek", "Hungarian",
	"Indian", "Irish", "Italian", "Japanese", "Korean", "South Korean", "Mexican",
	"Norwegian", "Polish", "Portuguese", "Russian", "Scottish", "Spanish",
	"Swedish", "Swiss", "Ukrainian", "Venetian", "Florentine",
}

var demonymPattern = func() *regexp.Regexp {
	sorted := append([]string(nil), demonyms...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for i, d := range sorted {
		sorted[i] = regexp.QuoteMeta(d)
	}
	return regexp.MustCompile(`\b(` + strings.Join(sorted, "|") + `)\b`)
}()

// DetectNationality returns the first recognised nationality adjective in
// text, or "".
func DetectNationality(text string) string {
	m := demonymPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	parenthetical = regexp.MustCompile(`\(([^()]*)\)`)
	yearPattern   = regexp.MustCompile(`\b(\d{3,4})\b`)
)

// ParseLifespan extracts birth and death years from the first
// parenthetical in text that contains a year, e.g. "(1853–1890)",
// "(30 March 1853 – 29 July 1890)", "(born 1955)" or "(c. 1525 – 1569)".
func ParseLifespan(text string) (birth, death *int) {
	for _, m := range parenthetical.FindAllStringSubmatch(text, -1) {
		inner := m[1]
		years := yearPattern.FindAllString(inner, -1)
		if len(years) == 0 {
			continue
		}
		first, err := strconv.Atoi(years[0])
		if err != nil {
			continue
		}
		lower := strings.ToLower(inner)
		if strings.Contains(lower, "died") || strings.HasPrefix(strings.TrimSpace(lower), "d.") {
			return nil, &first
		}
		birth = &first
		if len(years) > 1 && !strings.Contains(lower, "born") {
			if second, err := strconv.Atoi(years[1]); err == nil && second >= first {
				death = &second
			}
		}
		return birth, death
	}
	return nil, nil
}
