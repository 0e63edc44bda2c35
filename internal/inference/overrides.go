// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/pkg/types"
)

//go:embed overrides.yaml
var builtinOverrides []byte

// attributionQualifiers mark catalog names that credit someone other than
// the artist ("After Rembrandt", "Workshop of Titian"). Such names match an
// override only exactly, never fuzzily.
var attributionQualifiers = []string{
	"after", "attributed to", "circle of", "workshop of", "school of", "follower of", "imitator of",
}

// Override is one curated entry.
type Override struct {
	Name       string           `yaml:"name"`
	Aliases    []string         `yaml:"aliases"`
	Exact      []string         `yaml:"exact"`
	Dimensions types.Dimensions `yaml:"dimensions"`
	Reasoning  string           `yaml:"reasoning"`
}

// Overrides is the curated override table.
type Overrides struct {
	entries []override
}

type override struct {
	Override
	exact map[string]bool
	fuzzy []string
}

// LoadOverrides returns the built-in table, with the entries of extraPath
// (if non-empty) checked first.
func LoadOverrides(extraPath string) (*Overrides, error) {
	var all []Override
	if extraPath != "" {
		data, err := os.ReadFile(extraPath)
		if err != nil {
			return nil, fmt.Errorf("reading overrides %s: %w", extraPath, err)
		}
		extra, err := parseOverrides(data)
		if err != nil {
			return nil, fmt.Errorf("parsing overrides %s: %w", extraPath, err)
		}
		all = append(all, extra...)
	}

	builtin, err := parseOverrides(builtinOverrides)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in overrides: %w", err)
	}
	all = append(all, builtin...)
	return NewOverrides(all)
}

func parseOverrides(data []byte) ([]Override, error) {
	var entries []Override
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// NewOverrides indexes entries for matching. Every entry must have a name
// and valid dimensions.
func NewOverrides(entries []Override) (*Overrides, error) {
	o := &Overrides{}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("override without a name")
		}
		if err := e.Dimensions.Validate(); err != nil {
			return nil, fmt.Errorf("override %q: %w", e.Name, err)
		}

		idx := override{Override: e, exact: make(map[string]bool)}
		for _, n := range append([]string{e.Name}, e.Aliases...) {
			norm := evidence.NormalizeName(n)
			if norm == "" {
				continue
			}
			idx.exact[norm] = true
			if strings.Contains(norm, " ") {
				idx.fuzzy = append(idx.fuzzy, norm)
			}
		}
		for _, n := range e.Exact {
			if norm := evidence.NormalizeName(n); norm != "" {
				idx.exact[norm] = true
			}
		}
		o.entries = append(o.entries, idx)
	}
	return o, nil
}

// Len returns the number of entries.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Match finds the override for a catalog name. Exact matches on the
// normalized name or any alias are tried across all entries first. Then a
// multi-word name or alias appearing as a whole-word run inside the catalog
// name matches, unless the catalog name carries an attribution qualifier.
func (o *Overrides) Match(name string) (Override, bool) {
	if o == nil {
		return Override{}, false
	}
	n := evidence.NormalizeName(name)
	if n == "" {
		return Override{}, false
	}

	for _, e := range o.entries {
		if e.exact[n] {
			return e.Override, true
		}
	}

	if qualified(n) {
		return Override{}, false
	}
	for _, e := range o.entries {
		for _, f := range e.fuzzy {
			if evidence.ContainsTokens(n, f) {
				return e.Override, true
			}
		}
	}
	return Override{}, false
}

func qualified(normalizedName string) bool {
	for _, q := range attributionQualifiers {
		if evidence.ContainsTokens(normalizedName, q) {
			return true
		}
	}
	return false
}
