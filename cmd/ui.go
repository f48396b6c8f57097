package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/tui"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ui [cypher]",
		Aliases: []string{"tui", "view"},
		Short:   "Open the interactive graph viewer",
		Long: `Browse a query result in the terminal. Move between elements with j/k,
press enter to select, x to expand, m for the context menu, n to draft a
node and : to type a new query. Press ? for every key.

  agv ui
  agv ui "MATCH (n)-[r]->(m) RETURN n, r, m"`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			v, err := openViewer(ctx)
			if err != nil {
				fail("%v", err)
			}
			defer v.Close(context.Background())

			if text := queryText(args); text != "" {
				if err := v.Query(ctx, text); err != nil {
					fail("%v", err)
				}
			}
			// The log would tear through the alternate screen.
			logger.SetOutput(io.Discard)
			v.Command.SetCommand(queryText(args))
			if err := tui.Run(ctx, v); err != nil {
				fail("%v", err)
			}
		},
	}
}
