// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apt-engine/internal/archetype"
	"github.com/pdiddy/apt-engine/internal/pipeline"
)

// --- distribution ---

var distributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Show the archetype distribution of classified artists",
	Long: `Distribution reports how many classified artists hold each of the
sixteen archetypes, the normalized Shannon diversity index (0 = everyone
shares one type, 1 = perfectly even) and the dominant archetype's share.`,
	RunE: runDistribution,
}

func runDistribution(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	dist := snap.Distribution()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dist)
	}
	fmt.Print(pipeline.RenderDistribution(dist))
	return nil
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile <artist-id>",
	Short: "Print the persisted profile of one artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.Profile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// --- archetypes ---

var archetypesCmd = &cobra.Command{
	Use:   "archetypes",
	Short: "List the sixteen archetypes",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Code", "Title", "Animal"})
		for _, a := range archetype.All() {
			tw.AppendRow(table.Row{a.Code, a.Title, a.Animal})
		}
		fmt.Println(tw.Render())
		return nil
	},
}

func init() {
	distributionCmd.Flags().Bool("json", false, "output as JSON")
	profileCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(distributionCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(archetypesCmd)
}
