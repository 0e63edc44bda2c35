// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/apt-engine/internal/balance"
)

// RenderDistribution formats the archetype distribution as a table of all
// sixteen codes followed by the diversity index and dominant share.
func RenderDistribution(d balance.Distribution) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Code", "Title", "Animal", "Count", "Share"})
	for _, e := range d.Entries {
		tw.AppendRow(table.Row{
			e.Archetype.Code,
			e.Archetype.Title,
			e.Archetype.Animal,
			e.Count,
			fmt.Sprintf("%.1f%%", 100*e.Share),
		})
	}
	tw.AppendFooter(table.Row{"", "", "Total", d.Total, ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	fmt.Fprintf(&b, "\nDiversity index: %.3f\n", d.Diversity)
	if d.Dominant == "" {
		b.WriteString("Dominant archetype: none\n")
	} else {
		fmt.Fprintf(&b, "Dominant archetype: %s (%.1f%%)\n", d.Dominant, 100*d.DominantShare)
	}
	return b.String()
}
