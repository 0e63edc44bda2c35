// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/internal/inference"
	"github.com/pdiddy/apt-engine/internal/reliability"
	"github.com/pdiddy/apt-engine/internal/store"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// --- test helpers ---

// stubProvider never matches; onLookup runs on every call.
type stubProvider struct {
	onLookup func()
}

func (p *stubProvider) Name() types.Source { return types.SourceWikipedia }

func (p *stubProvider) Lookup(_ context.Context, _ string) (evidence.Contribution, error) {
	if p.onLookup != nil {
		p.onLookup()
	}
	return evidence.Contribution{}, evidence.ErrNoMatch
}

// failingBackend always reports the AI as unavailable.
type failingBackend struct{ calls int }

func (b *failingBackend) Infer(_ context.Context, _ inference.Request) (inference.AIResponse, error) {
	b.calls++
	return inference.AIResponse{}, inference.ErrAIUnavailable
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func testRunner(t *testing.T, providers []evidence.Provider, backend inference.AIBackend) *Runner {
	t.Helper()
	st, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "apt.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	overrides, err := inference.LoadOverrides("")
	require.NoError(t, err)

	return &Runner{
		Store:    st,
		Evidence: evidence.NewAggregator(providers...),
		Assessor: reliability.NewAssessor(0),
		Engine:   inference.NewEngine(inference.Options{Backend: backend, Overrides: overrides}),
		Policy:   balance.DefaultPolicy(),
		Now:      func() time.Time { return fixedNow },
	}
}

// catalog returns the SQLite store behind r.
func catalog(r *Runner) *store.Store {
	switch s := r.Store.(type) {
	case *store.Store:
		return s
	case *flakyStore:
		return s.Store
	default:
		panic("unexpected artist store")
	}
}

// flakyStore fails every profile write for failID.
type flakyStore struct {
	*store.Store
	failID string
}

func (s *flakyStore) SaveProfile(ctx context.Context, id string, p types.Profile) error {
	if id == s.failID {
		return &store.PersistenceError{ArtistID: id, Err: errors.New("disk I/O error")}
	}
	return s.Store.SaveProfile(ctx, id, p)
}

func importArtists(t *testing.T, r *Runner, recs ...types.ArtistRecord) {
	t.Helper()
	_, err := catalog(r).ImportArtists(context.Background(), recs)
	require.NoError(t, err)
}

// --- tests ---

func TestRun_ClassifiesAndPersists(t *testing.T) {
	r := testRunner(t, []evidence.Provider{&stubProvider{}}, nil)
	importArtists(t, r,
		types.ArtistRecord{ID: "a1", Name: "Mark Rothko"},
		types.ArtistRecord{ID: "a2", Name: "Anonymous"},
		types.ArtistRecord{
			ID:        "a3",
			Name:      "A. Painter",
			Bio:       "A solitary painter who withdrew from public life.",
			Movements: []string{"Abstract Expressionism"},
		},
	)

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), Options{}, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Classified)
	assert.False(t, summary.HasFailures())
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Distribution.Total)
	assert.Contains(t, out.String(), "classified a1 LAEF")
	assert.Contains(t, out.String(), "classified a2 SRMC")
	assert.Contains(t, out.String(), "Batch summary: 3 classified, 0 failed")
	assert.Contains(t, out.String(), "Diversity index:")

	ctx := context.Background()
	rothko, err := catalog(r).Profile(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.StrategyOverride, rothko.Meta.Strategy)
	assert.Contains(t, rothko.Meta.Sources, types.SourceOverride)
	assert.Equal(t, summary.RunID, rothko.Meta.RunID)

	anon, err := catalog(r).Profile(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, types.NeutralDimensions(), anon.Dimensions)
	assert.Equal(t, types.GradeVeryLow, anon.Meta.Reliability)
	assert.Equal(t, types.StrategyHeuristic, anon.Meta.Strategy)
	assert.True(t, fixedNow.Equal(anon.Meta.ClassifiedAt))

	painter, err := catalog(r).Profile(ctx, "a3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(painter.PrimaryTypes[0].Type, "LA"))

	// Everyone is classified now, so a second run selects nobody.
	out.Reset()
	summary, err = r.Run(context.Background(), Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total())
	assert.Equal(t, 3, summary.Distribution.Total)
}

func TestRun_Idempotent(t *testing.T) {
	r := testRunner(t, nil, nil)
	importArtists(t, r, types.ArtistRecord{
		ID: "a1", Name: "Someone", Nationality: "French", BirthYear: types.Year(1870),
		Movements: []string{"Post-Impressionism"},
	})

	_, err := r.Run(context.Background(), Options{}, &bytes.Buffer{})
	require.NoError(t, err)
	first, err := catalog(r).Profile(context.Background(), "a1")
	require.NoError(t, err)

	_, err = r.Run(context.Background(), Options{Force: true}, &bytes.Buffer{})
	require.NoError(t, err)
	second, err := catalog(r).Profile(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, first.Dimensions, second.Dimensions)
	assert.Equal(t, first.PrimaryTypes, second.PrimaryTypes)
	assert.NotEqual(t, first.Meta.RunID, second.Meta.RunID)
}

func TestRun_AIFallbackCounted(t *testing.T) {
	backend := &failingBackend{}
	r := testRunner(t, nil, backend)
	// Birth year, nationality and a movement grade medium.
	importArtists(t, r, types.ArtistRecord{
		ID: "a1", Name: "Someone", Nationality: "Korean", BirthYear: types.Year(1960),
		Movements: []string{"Dansaekhwa"},
	})

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, 1, summary.Fallbacks)
	assert.Contains(t, out.String(), "after AI fallback")

	p, err := catalog(r).Profile(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, types.StrategyHeuristic, p.Meta.Strategy)
	assert.Equal(t, types.GradeMedium, p.Meta.Reliability)
}

func TestRun_Rebalances(t *testing.T) {
	r := testRunner(t, nil, nil)
	ctx := context.Background()

	// Twenty artists already sit on SRMC.
	var crowd []types.ArtistRecord
	for i := 0; i < 20; i++ {
		crowd = append(crowd, types.ArtistRecord{ID: "crowd-" + string(rune('a'+i)), Name: "Crowd"})
	}
	importArtists(t, r, crowd...)
	for _, c := range crowd {
		a := archetype.Assign(types.NeutralDimensions(), types.StrategyHeuristic, "seed")
		a.ClassifiedAt = fixedNow
		require.NoError(t, r.Store.SaveProfile(ctx, c.ID, types.NewProfile(a, "seed")))
	}

	// A newcomer with no evidence would also resolve to SRMC at low
	// confidence.
	importArtists(t, r, types.ArtistRecord{ID: "new", Name: "Newcomer"})

	var out bytes.Buffer
	summary, err := r.Run(ctx, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rebalanced)
	assert.Contains(t, out.String(), "rebalanced from SRMC")

	p, err := catalog(r).Profile(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "LRMC", p.PrimaryTypes[0].Type)
	assert.True(t, p.Meta.Rebalanced)
	assert.Contains(t, p.Meta.Reasoning, "Rebalanced away from over-represented SRMC")
	assert.Equal(t, 1, summary.Distribution.Entries[archetype.Index("LRMC")].Count)
}

func TestRun_OverrideNeverRebalanced(t *testing.T) {
	r := testRunner(t, nil, nil)
	ctx := context.Background()

	overrides, err := inference.LoadOverrides("")
	require.NoError(t, err)
	o, ok := overrides.Match("Mark Rothko")
	require.True(t, ok)
	code := archetype.CodeFor(o.Dimensions)

	var crowd []types.ArtistRecord
	for i := 0; i < 20; i++ {
		crowd = append(crowd, types.ArtistRecord{ID: "crowd-" + string(rune('a'+i)), Name: "Crowd"})
	}
	importArtists(t, r, crowd...)
	for _, c := range crowd {
		a := archetype.Assign(o.Dimensions, types.StrategyHeuristic, "seed")
		require.NoError(t, r.Store.SaveProfile(ctx, c.ID, types.NewProfile(a, "seed")))
	}
	importArtists(t, r, types.ArtistRecord{ID: "rothko", Name: "Mark Rothko"})

	summary, err := r.Run(ctx, Options{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rebalanced)

	p, err := catalog(r).Profile(ctx, "rothko")
	require.NoError(t, err)
	assert.Equal(t, code, p.PrimaryTypes[0].Type)
}

func TestRun_CancelStopsBetweenArtists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := testRunner(t, []evidence.Provider{&stubProvider{onLookup: cancel}}, nil)
	importArtists(t, r,
		types.ArtistRecord{ID: "a1", Name: "One"},
		types.ArtistRecord{ID: "a2", Name: "Two"},
		types.ArtistRecord{ID: "a3", Name: "Three"},
	)

	var out bytes.Buffer
	summary, err := r.Run(ctx, Options{}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, summary.Total(), "only the in-flight artist is attempted")
	assert.Contains(t, out.String(), "Batch summary:")

	remaining, err := r.Store.Candidates(context.Background(), store.CandidateOptions{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(remaining), 2)
}

func TestRun_PersistenceFailureContinues(t *testing.T) {
	r := testRunner(t, nil, nil)
	importArtists(t, r,
		types.ArtistRecord{ID: "a1", Name: "One"},
		types.ArtistRecord{ID: "a2", Name: "Two"},
		types.ArtistRecord{ID: "a3", Name: "Three"},
	)
	db := catalog(r)
	r.Store = &flakyStore{Store: db, failID: "a2"}

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Classified)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, 2, summary.Distribution.Total)
	assert.Contains(t, out.String(), "failed  a2: persisting profile for a2: disk I/O error")
	assert.Contains(t, out.String(), "classified a3 ")
	assert.Contains(t, out.String(), "Batch summary: 2 classified, 1 failed")

	ctx := context.Background()
	_, err = db.Profile(ctx, "a2")
	assert.ErrorIs(t, err, store.ErrNotClassified)

	// The failed artist is selected again by the next run.
	r.Store = db
	out.Reset()
	summary, err = r.Run(ctx, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Classified)
	assert.False(t, summary.HasFailures())
	assert.Contains(t, out.String(), "classified a2 ")
}

func TestRun_LimitAndIDs(t *testing.T) {
	r := testRunner(t, nil, nil)
	importArtists(t, r,
		types.ArtistRecord{ID: "a1", Name: "One"},
		types.ArtistRecord{ID: "a2", Name: "Two"},
		types.ArtistRecord{ID: "a3", Name: "Three"},
	)

	summary, err := r.Run(context.Background(), Options{Limit: 2}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Classified)

	summary, err = r.Run(context.Background(), Options{IDs: []string{"a1"}}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Classified)
	assert.Equal(t, 2, summary.Distribution.Total)
}

func TestRenderDistribution(t *testing.T) {
	snap := balance.NewSnapshot(map[string]int{"LAEF": 3, "SRMC": 1})
	out := RenderDistribution(snap.Distribution())

	for _, a := range archetype.All() {
		assert.Contains(t, out, a.Code)
	}
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Dominant archetype: LAEF (75.0%)")

	empty := RenderDistribution(balance.Snapshot{}.Distribution())
	assert.Contains(t, empty, "Dominant archetype: none")
}
