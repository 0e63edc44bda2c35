// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apt-engine/pkg/types"
)

// ExportEntry is one classified artist in an export file.
type ExportEntry struct {
	ID      string        `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Profile types.Profile `json:"apt_profile" yaml:"apt_profile"`
}

// Profiles returns every classified artist with its profile, ordered by id.
func (s *Store) Profiles(ctx context.Context) ([]ExportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, apt_profile FROM artists WHERE apt_profile IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var (
			e    ExportEntry
			data string
		)
		if err := rows.Scan(&e.ID, &e.Name, &data); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &e.Profile); err != nil {
			return nil, fmt.Errorf("decoding profile for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes all classified profiles to dir/profiles.yaml and
// returns the file path.
func (s *Store) ExportYAML(ctx context.Context, dir string) (string, error) {
	entries, err := s.Profiles(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(dir, "profiles.yaml", data)
}

// ExportJSON writes all classified profiles to dir/profiles.json and
// returns the file path.
func (s *Store) ExportJSON(ctx context.Context, dir string) (string, error) {
	entries, err := s.Profiles(ctx)
	if err != nil {
		return "", err
	}
	if entries == nil {
		entries = []ExportEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(dir, "profiles.json", data)
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
