// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "apt.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	var recs []types.ArtistRecord
	for _, id := range ids {
		recs = append(recs, types.ArtistRecord{ID: id, Name: "Artist " + id})
	}
	_, err := s.ImportArtists(context.Background(), recs)
	require.NoError(t, err)
}

func testProfile(code string, at time.Time) types.Profile {
	d := types.Dimensions{L: 70, S: 30, A: 70, R: 30, E: 70, M: 30, F: 70, C: 30}
	a := archetype.Assign(d, types.StrategyHeuristic, "test")
	a.Code = code
	a.ClassifiedAt = at
	a.Reliability = types.GradeLow
	return types.NewProfile(a, "run-1")
}

// --- tests ---

func TestImportArtists_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := types.ArtistRecord{
		ID:           "a1",
		Name:         "Kim Whanki",
		Nationality:  "Korean",
		BirthYear:    types.Year(1913),
		DeathYear:    types.Year(1974),
		Era:          "Modern",
		Bio:          "Pioneer of Korean abstraction.",
		Movements:    []string{"Dansaekhwa", "Abstract art"},
		ArtworkCount: 12,
	}
	n, err := s.ImportArtists(ctx, []types.ArtistRecord{in, {ID: "a2", Name: "Unknown"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Artist(ctx, "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("artist mismatch (-want +got):\n%s", diff)
	}

	sparse, err := s.Artist(ctx, "a2")
	require.NoError(t, err)
	assert.Nil(t, sparse.BirthYear)
	assert.Empty(t, sparse.Bio)
	assert.Nil(t, sparse.Movements)

	var stored string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT movements FROM artists WHERE id = ?`, "a2").Scan(&stored))
	assert.Equal(t, "[]", stored)

	_, err = s.Artist(ctx, "missing")
	assert.ErrorIs(t, err, ErrArtistNotFound)
}

func TestEncodeMovements(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "[]"},
		{[]string{}, "[]"},
		{[]string{"Cubism", "Dansaekhwa"}, `["Cubism","Dansaekhwa"]`},
	}
	for _, tt := range tests {
		got, err := encodeMovements(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestImportArtists_RejectsIncomplete(t *testing.T) {
	s := testStore(t)
	_, err := s.ImportArtists(context.Background(), []types.ArtistRecord{{ID: "ok", Name: "Ok"}, {ID: "x"}})
	require.Error(t, err)

	// The whole import rolls back.
	cands, err := s.Candidates(context.Background(), CandidateOptions{Force: true})
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestImportArtists_KeepsProfile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s, "a1")
	require.NoError(t, s.SaveProfile(ctx, "a1", testProfile("LAEF", time.Now())))

	_, err := s.ImportArtists(ctx, []types.ArtistRecord{{ID: "a1", Name: "Renamed"}})
	require.NoError(t, err)

	p, err := s.Profile(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "LAEF", p.PrimaryTypes[0].Type)
}

func TestSaveProfile_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s, "a1")

	_, err := s.Profile(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotClassified)

	want := testProfile("LAEF", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveProfile(ctx, "a1", want))

	got, err := s.Profile(ctx, "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	// Overwrite replaces wholesale.
	next := testProfile("SRMC", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveProfile(ctx, "a1", next))
	got, err = s.Profile(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SRMC", got.PrimaryTypes[0].Type)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Total())
	assert.Equal(t, 1, snap.Count("SRMC"))
}

func TestSaveProfile_Failures(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s, "a1")

	err := s.SaveProfile(ctx, "missing", testProfile("LAEF", time.Now()))
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "missing", perr.ArtistID)
	assert.ErrorIs(t, err, ErrArtistNotFound)

	bad := testProfile("LAEF", time.Now())
	bad.Dimensions.L = 90
	err = s.SaveProfile(ctx, "a1", bad)
	require.True(t, errors.As(err, &perr))

	err = s.SaveProfile(ctx, "a1", types.Profile{})
	require.True(t, errors.As(err, &perr))

	_, err = s.Profile(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotClassified, "failed writes leave the artist unclassified")
}

func TestCandidates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s, "c", "a", "b", "d")

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveProfile(ctx, "a", testProfile("LAEF", old)))
	require.NoError(t, s.SaveProfile(ctx, "b", testProfile("SRMC", recent)))

	ids := func(cs []Candidate) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	tests := []struct {
		name string
		opts CandidateOptions
		want []string
	}{
		{"unclassified only", CandidateOptions{}, []string{"c", "d"}},
		{"with stale", CandidateOptions{StaleBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, []string{"a", "c", "d"}},
		{"limit", CandidateOptions{Limit: 1}, []string{"c"}},
		{"force", CandidateOptions{Force: true}, []string{"a", "b", "c", "d"}},
		{"explicit ids", CandidateOptions{IDs: []string{"b", "d"}}, []string{"b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Candidates(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	got, err := s.Candidates(ctx, CandidateOptions{IDs: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "LAEF", got[0].CurrentCode)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s, "a1", "a2")
	require.NoError(t, s.SaveProfile(ctx, "a1", testProfile("LAEF", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))))

	dir := filepath.Join(t.TempDir(), "export")

	yamlPath, err := s.ExportYAML(ctx, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "a1", fromYAML[0].ID)
	assert.Equal(t, "LAEF", fromYAML[0].Profile.PrimaryTypes[0].Type)

	jsonPath, err := s.ExportJSON(ctx, dir)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []ExportEntry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, 70, fromJSON[0].Profile.Dimensions.L)
}

func TestReadArtistsFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "artists.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- id: a1
  name: Claude Monet
  birth_year: 1840
  movements: [Impressionism]
  artwork_count: 40
`), 0o644))
	got, err := ReadArtistsFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1840, *got[0].BirthYear)
	assert.Equal(t, []string{"Impressionism"}, got[0].Movements)

	jsonPath := filepath.Join(dir, "artists.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id": "a2", "name": "Banksy", "artwork_count": 3}]`), 0o644))
	got, err = ReadArtistsFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Banksy", got[0].Name)

	_, err = ReadArtistsFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
