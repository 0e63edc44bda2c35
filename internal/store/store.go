// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists artist records and their APT profiles in SQLite.
// Catalog fields are written by ImportArtists; the apt_* columns are
// written only by SaveProfile, one transaction per artist.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// timeLayout is fixed-width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrArtistNotFound means no artist has the requested id.
	ErrArtistNotFound = errors.New("artist not found")

	// ErrNotClassified means the artist exists but has no profile yet.
	ErrNotClassified = errors.New("artist not classified")
)

// PersistenceError reports a profile write that did not complete. The
// artist keeps its previous profile (or none) and is retried next run.
type PersistenceError struct {
	ArtistID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting profile for %s: %v", e.ArtistID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store manages the artist SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path, creating its directory
// and schema if they do not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			nationality TEXT,
			birth_year INTEGER,
			death_year INTEGER,
			era TEXT,
			bio TEXT,
			movements TEXT,
			artwork_count INTEGER NOT NULL DEFAULT 0,
			apt_profile TEXT,
			apt_code TEXT,
			apt_confidence REAL,
			apt_strategy TEXT,
			classified_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artists_apt_code ON artists(apt_code)`,
		`CREATE INDEX IF NOT EXISTS idx_artists_classified_at ON artists(classified_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportArtists upserts catalog records. Existing profiles are left
// untouched. It returns the number of records written.
func (s *Store) ImportArtists(ctx context.Context, artists []types.ArtistRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO artists (id, name, nationality, birth_year, death_year, era, bio, movements, artwork_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, nationality=excluded.nationality,
			birth_year=excluded.birth_year, death_year=excluded.death_year,
			era=excluded.era, bio=excluded.bio, movements=excluded.movements,
			artwork_count=excluded.artwork_count`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range artists {
		if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.Name) == "" {
			return 0, fmt.Errorf("artist record needs an id and a name (id=%q, name=%q)", a.ID, a.Name)
		}
		movementsJSON, err := encodeMovements(a.Movements)
		if err != nil {
			return 0, fmt.Errorf("encoding movements of %s: %w", a.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			a.ID, a.Name, nullString(a.Nationality),
			nullYear(a.BirthYear), nullYear(a.DeathYear),
			nullString(a.Era), nullString(a.Bio),
			movementsJSON, a.ArtworkCount,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting artist %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(artists), nil
}

// encodeMovements renders movement tags as a JSON array; no tags is "[]".
func encodeMovements(m []string) (string, error) {
	if m == nil {
		m = []string{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Candidate is an artist selected for classification together with the
// code it currently holds ("" when unclassified).
type Candidate struct {
	types.ArtistRecord
	CurrentCode string
}

// CandidateOptions selects artists for a batch.
type CandidateOptions struct {
	// Limit caps the number of candidates; zero means no limit.
	Limit int

	// StaleBefore also selects artists classified before this time.
	// Zero disables staleness.
	StaleBefore time.Time

	// Force selects every artist regardless of classification state.
	Force bool

	// IDs restricts selection to these artists, which are returned
	// regardless of classification state.
	IDs []string
}

const artistColumns = `id, name, nationality, birth_year, death_year, era, bio, movements, artwork_count, apt_code`

// Candidates returns unclassified artists, plus stale ones when
// StaleBefore is set, ordered by id.
func (s *Store) Candidates(ctx context.Context, opts CandidateOptions) ([]Candidate, error) {
	query := `SELECT ` + artistColumns + ` FROM artists`
	var (
		conds []string
		args  []any
	)

	switch {
	case len(opts.IDs) > 0:
		placeholders := make([]string, len(opts.IDs))
		for i, id := range opts.IDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, "id IN ("+strings.Join(placeholders, ", ")+")")
	case opts.Force:
	case !opts.StaleBefore.IsZero():
		conds = append(conds, "(apt_code IS NULL OR classified_at < ?)")
		args = append(args, opts.StaleBefore.UTC().Format(timeLayout))
	default:
		conds = append(conds, "apt_code IS NULL")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Artist returns one catalog record.
func (s *Store) Artist(ctx context.Context, id string) (types.ArtistRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ArtistRecord{}, fmt.Errorf("%s: %w", id, ErrArtistNotFound)
	}
	if err != nil {
		return types.ArtistRecord{}, err
	}
	return c.ArtistRecord, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCandidate(sc scanner) (Candidate, error) {
	var (
		c                                Candidate
		nationality, era, bio, movements sql.NullString
		code                             sql.NullString
		birth, death                     sql.NullInt64
	)
	err := sc.Scan(&c.ID, &c.Name, &nationality, &birth, &death, &era, &bio, &movements, &c.ArtworkCount, &code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, err
		}
		return Candidate{}, fmt.Errorf("scanning artist: %w", err)
	}
	c.Nationality = nationality.String
	c.Era = era.String
	c.Bio = bio.String
	c.CurrentCode = code.String
	if birth.Valid {
		c.BirthYear = types.Year(int(birth.Int64))
	}
	if death.Valid {
		c.DeathYear = types.Year(int(death.Int64))
	}
	if movements.String != "" {
		if err := json.Unmarshal([]byte(movements.String), &c.Movements); err != nil {
			return Candidate{}, fmt.Errorf("decoding movements for %s: %w", c.ID, err)
		}
		if len(c.Movements) == 0 {
			c.Movements = nil
		}
	}
	return c, nil
}

// SaveProfile replaces the artist's profile wholesale in one transaction.
// Every failure is a *PersistenceError; an unknown id wraps
// ErrArtistNotFound.
func (s *Store) SaveProfile(ctx context.Context, id string, p types.Profile) error {
	fail := func(err error) error { return &PersistenceError{ArtistID: id, Err: err} }

	if len(p.PrimaryTypes) == 0 || !archetype.Valid(p.PrimaryTypes[0].Type) {
		return fail(errors.New("profile has no valid primary type"))
	}
	if err := p.Dimensions.Validate(); err != nil {
		return fail(err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fail(fmt.Errorf("marshaling profile: %w", err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	primary := p.PrimaryTypes[0]
	res, err := tx.ExecContext(ctx,
		`UPDATE artists SET apt_profile = ?, apt_code = ?, apt_confidence = ?, apt_strategy = ?, classified_at = ?
		 WHERE id = ?`,
		string(data), primary.Type, primary.Confidence, string(p.Meta.Strategy),
		p.Meta.ClassifiedAt.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fail(fmt.Errorf("updating profile: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail(err)
	}
	if n == 0 {
		return fail(ErrArtistNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("committing profile: %w", err))
	}
	return nil
}

// Profile returns the persisted profile of an artist.
func (s *Store) Profile(ctx context.Context, id string) (types.Profile, error) {
	var data sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT apt_profile FROM artists WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Profile{}, fmt.Errorf("%s: %w", id, ErrArtistNotFound)
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	if !data.Valid || data.String == "" {
		return types.Profile{}, fmt.Errorf("%s: %w", id, ErrNotClassified)
	}

	var p types.Profile
	if err := json.Unmarshal([]byte(data.String), &p); err != nil {
		return types.Profile{}, fmt.Errorf("decoding profile for %s: %w", id, err)
	}
	return p, nil
}

// Snapshot counts persisted assignments per archetype code.
func (s *Store) Snapshot(ctx context.Context) (balance.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT apt_code, count(*) FROM artists WHERE apt_code IS NOT NULL GROUP BY apt_code`)
	if err != nil {
		return balance.Snapshot{}, fmt.Errorf("querying distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			code string
			n    int
		)
		if err := rows.Scan(&code, &n); err != nil {
			return balance.Snapshot{}, fmt.Errorf("scanning distribution: %w", err)
		}
		counts[code] = n
	}
	if err := rows.Err(); err != nil {
		return balance.Snapshot{}, err
	}
	return balance.NewSnapshot(counts), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}
