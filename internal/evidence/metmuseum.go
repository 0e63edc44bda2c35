// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/apt-engine/internal/httputil"
	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// metAPIBase is the Met Museum collection API root. Declared as a var so
// tests can substitute an httptest server.
var metAPIBase = "https://collectionapi.metmuseum.org/public/collection/v1"

// objectFetchFactor bounds object fetches per lookup to this multiple of
// the sample size, whether or not the fetched objects credit the artist.
const objectFetchFactor = 3

type metSearchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

type metObject struct {
	ObjectID          int    `json:"objectID"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ArtistNationality string `json:"artistNationality"`
	ArtistBeginDate   string `json:"artistBeginDate"`
	ArtistEndDate     string `json:"artistEndDate"`
	Period            string `json:"period"`
	Tags              []struct {
		Term string `json:"term"`
	} `json:"tags"`
}

// MetMuseum is the museum-collection provider. It reports the number of
// collection objects credited to the artist and reads artist facts from a
// small sample of those objects.
type MetMuseum struct {
	client  *httputil.Client
	baseURL string
	samples int
}

// NewMetMuseum returns a provider that reads up to samples object records
// per artist. An empty baseURL uses the public endpoint.
func NewMetMuseum(client *httputil.Client, baseURL string, samples int) *MetMuseum {
	return &MetMuseum{client: client, baseURL: baseURL, samples: samples}
}

// Name returns types.SourceMetMuseum.
func (m *MetMuseum) Name() types.Source { return types.SourceMetMuseum }

// Lookup searches the collection for name. Zero hits, or sampled objects
// none of which credit the artist, are ErrNoMatch. At most
// samples*objectFetchFactor object records are fetched.
func (m *MetMuseum) Lookup(ctx context.Context, name string) (Contribution, error) {
	base := strings.TrimRight(m.baseURL, "/")
	if base == "" {
		base = metAPIBase
	}

	var search metSearchResponse
	searchURL := base + "/search?artistOrCulture=true&q=" + url.QueryEscape(strings.TrimSpace(name))
	if err := m.client.GetJSON(ctx, searchURL, &search); err != nil {
		if ctx.Err() != nil {
			return Contribution{}, ctx.Err()
		}
		return Contribution{}, fmt.Errorf("metmuseum %q: %w: %v", name, ErrProviderUnavailable, err)
	}
	if search.Total == 0 || len(search.ObjectIDs) == 0 {
		return Contribution{}, fmt.Errorf("metmuseum %q: %w", name, ErrNoMatch)
	}

	total := search.Total
	c := Contribution{ArtworkCount: &total}
	if m.samples <= 0 {
		return c, nil
	}

	matched := 0
	budget := m.samples * objectFetchFactor
	seenTags := make(map[string]bool)
	for i, id := range search.ObjectIDs {
		if matched >= m.samples || i >= budget {
			break
		}
		obj, err := m.object(ctx, base, id)
		if err != nil {
			if ctx.Err() != nil {
				return Contribution{}, ctx.Err()
			}
			logging.Debug().Err(err).Int("object", id).Msg("metmuseum object skipped")
			continue
		}
		if !SameArtist(obj.ArtistDisplayName, name) {
			continue
		}
		matched++
		mergeObject(&c, obj, seenTags)
	}

	if matched == 0 {
		return Contribution{}, fmt.Errorf("metmuseum %q: %w", name, ErrNoMatch)
	}
	return c, nil
}

func (m *MetMuseum) object(ctx context.Context, base string, id int) (metObject, error) {
	var obj metObject
	err := m.client.GetJSON(ctx, base+"/objects/"+strconv.Itoa(id), &obj)
	return obj, err
}

// mergeObject fills fields of c not yet set from one object record.
func mergeObject(c *Contribution, obj metObject, seenTags map[string]bool) {
	if c.Nationality == "" {
		c.Nationality = strings.TrimSpace(obj.ArtistNationality)
	}
	if c.BirthYear == nil {
		c.BirthYear = parseMetYear(obj.ArtistBeginDate)
	}
	if c.DeathYear == nil {
		c.DeathYear = parseMetYear(obj.ArtistEndDate)
	}
	if c.Era == "" {
		c.Era = strings.TrimSpace(obj.Period)
	}

	var terms []string
	for _, t := range obj.Tags {
		terms = append(terms, t.Term)
	}
	for _, tag := range metTags(terms) {
		if key := strings.ToLower(tag); !seenTags[key] {
			seenTags[key] = true
			c.Movements = append(c.Movements, tag)
		}
	}
}

// metTags canonicalises tag terms against the movement vocabulary, keeping
// unrecognised terms verbatim.
func metTags(terms []string) []string {
	var out []string
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if found := DetectMovements(term); len(found) > 0 {
			out = append(out, found...)
			continue
		}
		out = append(out, term)
	}
	return out
}

// parseMetYear reads artistBeginDate/artistEndDate values such as "1853"
// or "1853      ". The API uses "9999" for living artists.
func parseMetYear(s string) *int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 || y >= 9999 {
		return nil
	}
	return &y
}
