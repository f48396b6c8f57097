package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/ui"
)

func layoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the selectable layouts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Banner("layouts")
			var rows [][]string
			for _, name := range layout.Names() {
				d := layout.Lookup(name)
				current := ""
				if name == cfg.Canvas.Layout {
					current = ui.Good.Sprint("●")
				}
				rows = append(rows, []string{current, name, d.AlgorithmID, layoutParams(d.Params)})
			}
			ui.Table([]string{"", "NAME", "ALGORITHM", "PARAMS"}, rows)
		},
	}
}

func layoutParams(p layout.Params) string {
	switch {
	case p.Iterations > 0:
		return fmt.Sprintf("%d iterations, seed %d", p.Iterations, p.Seed)
	case p.Horizontal:
		return fmt.Sprintf("spacing %.0f, horizontal", p.Spacing)
	case p.Spacing > 0:
		return fmt.Sprintf("spacing %.0f", p.Spacing)
	case p.Padding > 0:
		return fmt.Sprintf("padding %.0f", p.Padding)
	}
	return ""
}
