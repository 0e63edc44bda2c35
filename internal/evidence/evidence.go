// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence gathers biographical fields for an artist from the
// catalog record and external providers, and merges them into a Bundle in
// which every field carries its source.
package evidence

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// Sentinel errors returned by providers. Neither is fatal to a run: the
// aggregator treats both as "no contribution".
var (
	// ErrNoMatch means the provider has no record for the name.
	ErrNoMatch = errors.New("no matching record")

	// ErrProviderUnavailable means the provider could not be reached or
	// returned an unusable response.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Provider looks up an artist by display name.
type Provider interface {
	Name() types.Source
	Lookup(ctx context.Context, name string) (Contribution, error)
}

// Contribution holds the fields one source supplies. Empty strings and nil
// pointers mean the source has no value.
type Contribution struct {
	Bio          string
	Nationality  string
	BirthYear    *int
	DeathYear    *int
	Era          string
	Movements    []string
	ArtworkCount *int
}

// Field is a value together with the source it was taken from. A zero
// Source means the field is absent.
type Field[T any] struct {
	Value  T            `json:"value"`
	Source types.Source `json:"source,omitempty"`
}

// Present reports whether some source supplied the field.
func (f Field[T]) Present() bool {
	return f.Source != ""
}

// Bundle is the merged evidence for one artist, built fresh for each
// classification.
type Bundle struct {
	ArtistID     string          `json:"artist_id"`
	Name         string          `json:"name"`
	Bio          Field[string]   `json:"bio"`
	Nationality  Field[string]   `json:"nationality"`
	BirthYear    Field[int]      `json:"birth_year"`
	DeathYear    Field[int]      `json:"death_year"`
	Era          Field[string]   `json:"era"`
	Movements    []Field[string] `json:"movements"`
	ArtworkCount Field[int]      `json:"artwork_count"`
}

// MovementTags returns the merged movement tags without provenance.
func (b Bundle) MovementTags() []string {
	tags := make([]string, len(b.Movements))
	for i, m := range b.Movements {
		tags[i] = m.Value
	}
	return tags
}

// Sources lists every source that contributed at least one field, in
// provider precedence order.
func (b Bundle) Sources() []types.Source {
	seen := make(map[types.Source]bool)
	mark := func(s types.Source) {
		if s != "" {
			seen[s] = true
		}
	}
	mark(b.Bio.Source)
	mark(b.Nationality.Source)
	mark(b.BirthYear.Source)
	mark(b.DeathYear.Source)
	mark(b.Era.Source)
	mark(b.ArtworkCount.Source)
	for _, m := range b.Movements {
		mark(m.Source)
	}

	var out []types.Source
	for _, s := range sourceOrder {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

var sourceOrder = []types.Source{types.SourceWikipedia, types.SourceMetMuseum, types.SourceCatalog}

type fieldName string

const (
	fieldBio          fieldName = "bio"
	fieldNationality  fieldName = "nationality"
	fieldBirthYear    fieldName = "birth_year"
	fieldDeathYear    fieldName = "death_year"
	fieldEra          fieldName = "era"
	fieldMovements    fieldName = "movements"
	fieldArtworkCount fieldName = "artwork_count"
)

// fieldPriority declares, per field, which sources are consulted and in
// what order. Scalar fields take the first present value; movements are the
// deduplicated union in this order.
var fieldPriority = map[fieldName][]types.Source{
	fieldBio:          {types.SourceWikipedia, types.SourceCatalog, types.SourceMetMuseum},
	fieldNationality:  {types.SourceWikipedia, types.SourceCatalog, types.SourceMetMuseum},
	fieldBirthYear:    {types.SourceWikipedia, types.SourceCatalog, types.SourceMetMuseum},
	fieldDeathYear:    {types.SourceWikipedia, types.SourceCatalog, types.SourceMetMuseum},
	fieldEra:          {types.SourceWikipedia, types.SourceCatalog, types.SourceMetMuseum},
	fieldMovements:    {types.SourceWikipedia, types.SourceMetMuseum, types.SourceCatalog},
	fieldArtworkCount: {types.SourceMetMuseum, types.SourceCatalog},
}

// Aggregator queries providers in declared order and merges their
// contributions with the catalog record.
type Aggregator struct {
	providers []Provider
}

// NewAggregator returns an aggregator over the given providers.
func NewAggregator(providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Gather builds the evidence bundle for rec. Provider failures are logged
// and contribute nothing; Gather never fails. When ctx is cancelled the
// remaining providers are skipped.
func (a *Aggregator) Gather(ctx context.Context, rec types.ArtistRecord) Bundle {
	contribs := map[types.Source]Contribution{
		types.SourceCatalog: catalogContribution(rec),
	}

	for _, p := range a.providers {
		if ctx.Err() != nil {
			break
		}
		c, err := p.Lookup(ctx, rec.Name)
		if err != nil {
			ev := logging.Warn()
			if errors.Is(err, ErrNoMatch) {
				ev = logging.Debug()
			}
			ev.Err(err).Str("provider", string(p.Name())).Str("artist", rec.ID).Msg("provider contributed nothing")
			continue
		}
		contribs[p.Name()] = c
	}

	return merge(rec, contribs)
}

func catalogContribution(rec types.ArtistRecord) Contribution {
	c := Contribution{
		Bio:         strings.TrimSpace(rec.Bio),
		Nationality: strings.TrimSpace(rec.Nationality),
		BirthYear:   rec.BirthYear,
		DeathYear:   rec.DeathYear,
		Era:         strings.TrimSpace(rec.Era),
		Movements:   rec.Movements,
	}
	if rec.ArtworkCount > 0 {
		n := rec.ArtworkCount
		c.ArtworkCount = &n
	}
	return c
}

func merge(rec types.ArtistRecord, contribs map[types.Source]Contribution) Bundle {
	return Bundle{
		ArtistID:    rec.ID,
		Name:        rec.Name,
		Bio:         pick(fieldBio, contribs, func(c Contribution) (string, bool) { return c.Bio, c.Bio != "" }),
		Nationality: pick(fieldNationality, contribs, func(c Contribution) (string, bool) { return c.Nationality, c.Nationality != "" }),
		BirthYear:   pick(fieldBirthYear, contribs, func(c Contribution) (int, bool) { return deref(c.BirthYear) }),
		DeathYear:   pick(fieldDeathYear, contribs, func(c Contribution) (int, bool) { return deref(c.DeathYear) }),
		Era:         pick(fieldEra, contribs, func(c Contribution) (string, bool) { return c.Era, c.Era != "" }),
		Movements:   union(fieldMovements, contribs),
		ArtworkCount: pick(fieldArtworkCount, contribs, func(c Contribution) (int, bool) {
			n, ok := deref(c.ArtworkCount)
			return n, ok && n > 0
		}),
	}
}

func pick[T any](field fieldName, contribs map[types.Source]Contribution, get func(Contribution) (T, bool)) Field[T] {
	for _, src := range fieldPriority[field] {
		c, ok := contribs[src]
		if !ok {
			continue
		}
		if v, ok := get(c); ok {
			return Field[T]{Value: v, Source: src}
		}
	}
	return Field[T]{}
}

func union(field fieldName, contribs map[types.Source]Contribution) []Field[string] {
	var out []Field[string]
	seen := make(map[string]bool)
	for _, src := range fieldPriority[field] {
		for _, tag := range contribs[src].Movements {
			tag = strings.TrimSpace(tag)
			key := strings.ToLower(tag)
			if tag == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Field[string]{Value: tag, Source: src})
		}
	}
	return out
}

func deref(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
