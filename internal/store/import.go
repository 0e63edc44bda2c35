// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apt-engine/pkg/types"
)

// ReadArtistsFile parses a list of artist records from a .json file, or
// from YAML for any other extension.
func ReadArtistsFile(path string) ([]types.ArtistRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var artists []types.ArtistRecord
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &artists)
	} else {
		err = yaml.Unmarshal(data, &artists)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return artists, nil
}
