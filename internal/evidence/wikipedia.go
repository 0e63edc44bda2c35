// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/apt-engine/internal/httputil"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// wikipediaAPIBase is the Wikipedia REST root. Declared as a var so tests
// can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/api/rest_v1"

// wikipediaSummary captures the fields we need from a page summary.
type wikipediaSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
}

// Wikipedia is the encyclopedic biography provider.
type Wikipedia struct {
	client  *httputil.Client
	baseURL string
}

// NewWikipedia returns a provider using client. An empty baseURL uses the
// public endpoint.
func NewWikipedia(client *httputil.Client, baseURL string) *Wikipedia {
	return &Wikipedia{client: client, baseURL: baseURL}
}

// Name returns types.SourceWikipedia.
func (w *Wikipedia) Name() types.Source { return types.SourceWikipedia }

// Lookup fetches the page summary for name. Missing pages and
// disambiguation pages are ErrNoMatch.
func (w *Wikipedia) Lookup(ctx context.Context, name string) (Contribution, error) {
	base := w.baseURL
	if base == "" {
		base = wikipediaAPIBase
	}
	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	apiURL := strings.TrimRight(base, "/") + "/page/summary/" + title

	var s wikipediaSummary
	if err := w.client.GetJSON(ctx, apiURL, &s); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return Contribution{}, fmt.Errorf("wikipedia %q: %w", name, ErrNoMatch)
		}
		if ctx.Err() != nil {
			return Contribution{}, ctx.Err()
		}
		return Contribution{}, fmt.Errorf("wikipedia %q: %w: %v", name, ErrProviderUnavailable, err)
	}

	if s.Type == "disambiguation" || strings.TrimSpace(s.Extract) == "" {
		return Contribution{}, fmt.Errorf("wikipedia %q: %w", name, ErrNoMatch)
	}
	return parseSummary(s), nil
}

// parseSummary turns a page summary into a contribution. The short
// description ("Dutch painter (1853–1890)") is preferred for nationality
// and lifespan; the extract is the fallback and the biography.
func parseSummary(s wikipediaSummary) Contribution {
	c := Contribution{
		Bio:       strings.TrimSpace(s.Extract),
		Movements: DetectMovements(s.Extract),
	}

	c.Nationality = DetectNationality(s.Description)
	if c.Nationality == "" {
		c.Nationality = DetectNationality(firstSentence(s.Extract))
	}

	c.BirthYear, c.DeathYear = ParseLifespan(s.Description)
	if c.BirthYear == nil && c.DeathYear == nil {
		c.BirthYear, c.DeathYear = ParseLifespan(firstSentence(s.Extract))
	}
	return c
}

func firstSentence(text string) string {
	// Lifespans contain periods ("c. 1525"), so cut at ". " after the
	// first closing parenthesis when there is one.
	start := strings.Index(text, ")")
	if start < 0 {
		start = 0
	}
	if i := strings.Index(text[start:], ". "); i >= 0 {
		return text[:start+i+1]
	}
	return text
}
