// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apt-engine/internal/pipeline"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [artist-ids...]",
	Short: "Classify unclassified (and stale) artists",
	Long: `Classify runs a batch over the artist store. Each selected artist is
processed in turn: evidence is gathered from the enabled providers, graded,
scored by a curated override, the AI backend or the heuristic rules, resolved
to an archetype, balanced against the current population and persisted.

Without arguments the batch selects unclassified artists, plus artists
classified longer ago than --stale-after. Pass artist ids to classify exactly
those artists, or --force to reclassify everyone.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Int("limit", 0, "maximum number of artists in this batch (default from batch.limit)")
	classifyCmd.Flags().Duration("stale-after", 0, "also reclassify profiles older than this (default from batch.stale_after)")
	classifyCmd.Flags().Bool("force", false, "reclassify every artist")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	opts := pipeline.Options{
		Limit:      cfg.Batch.Limit,
		StaleAfter: cfg.Batch.StaleAfter,
		IDs:        args,
	}
	if cmd.Flags().Changed("limit") {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("stale-after") {
		opts.StaleAfter, _ = cmd.Flags().GetDuration("stale-after")
	}
	opts.Force, _ = cmd.Flags().GetBool("force")

	runner, st, err := buildRunner(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := runner.Run(cmd.Context(), opts, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d artist(s) failed classification", summary.Failed)
	}
	return nil
}
