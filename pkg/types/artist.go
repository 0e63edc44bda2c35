// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Source identifies where a piece of evidence came from.
type Source string

const (
	// SourceCatalog is the artist record as held by the catalog store.
	SourceCatalog Source = "catalog"

	// SourceWikipedia is the encyclopedic biography provider.
	SourceWikipedia Source = "wikipedia"

	// SourceMetMuseum is the museum-collection provider.
	SourceMetMuseum Source = "metmuseum"

	// SourceOverride marks hand-curated scores.
	SourceOverride Source = "override"
)

// ArtistRecord is an artist as read from the catalog store. Optional fields
// are empty strings or nil pointers when the catalog has no value.
type ArtistRecord struct {
	// ID is the catalog identifier (e.g. a UUID or slug).
	ID string `json:"id" yaml:"id"`

	// Name is the display name used for provider lookups.
	Name string `json:"name" yaml:"name"`

	// Nationality is a free-form nationality label (e.g. "Dutch").
	Nationality string `json:"nationality,omitempty" yaml:"nationality,omitempty"`

	// BirthYear is the year of birth, if known.
	BirthYear *int `json:"birth_year,omitempty" yaml:"birth_year,omitempty"`

	// DeathYear is the year of death, if known.
	DeathYear *int `json:"death_year,omitempty" yaml:"death_year,omitempty"`

	// Era is a period or style label (e.g. "Impressionism", "Contemporary").
	Era string `json:"era,omitempty" yaml:"era,omitempty"`

	// Bio is the catalog biography text.
	Bio string `json:"bio,omitempty" yaml:"bio,omitempty"`

	// Movements lists movement tags attached to the artist.
	Movements []string `json:"movements,omitempty" yaml:"movements,omitempty"`

	// ArtworkCount is the number of artworks linked to the artist in the catalog.
	ArtworkCount int `json:"artwork_count" yaml:"artwork_count"`
}

// Year returns a pointer to y, for populating optional year fields.
func Year(y int) *int {
	return &y
}
