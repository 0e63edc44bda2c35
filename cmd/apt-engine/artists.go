// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apt-engine/internal/store"
)

var artistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "Manage catalog artist records",
}

// --- import subcommand ---

var artistsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import artist records from a YAML or JSON file",
	Long: `Import upserts catalog records (id, name, nationality, birth_year,
death_year, era, bio, movements, artwork_count) into the artist store.
Existing profiles are kept; re-run classify with the artist ids to refresh
them.`,
	Args: cobra.ExactArgs(1),
	RunE: runArtistsImport,
}

func runArtistsImport(cmd *cobra.Command, args []string) error {
	artists, err := store.ReadArtistsFile(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.ImportArtists(cmd.Context(), artists)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d artist(s) into %s\n", n, cfg.Store.Path)
	return nil
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export classified profiles to YAML or JSON",
	Long: `Export writes every classified artist with its apt_profile to
profiles.yaml or profiles.json in the export directory.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Store.ExportDir
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context(), dir)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("dir", "", "export directory (default from store.export_dir)")

	artistsCmd.AddCommand(artistsImportCmd)
	rootCmd.AddCommand(artistsCmd)
	rootCmd.AddCommand(exportCmd)
}
