package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/ui"
)

func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <cypher> <node-id>...",
		Short: "Run a query, then merge the neighborhood of one or more nodes",
		Long: `Render the result of a query and expand the given nodes one after the
other, as double-clicking them in the viewer would.

  agv expand "MATCH (n:Person) RETURN n" 844424930131969`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			v, err := openViewer(ctx)
			if err != nil {
				fail("%v", err)
			}
			defer v.Close(context.Background())

			if err := v.Query(ctx, args[0]); err != nil {
				fail("%v", err)
			}
			before := v.Engine.Stats()

			for _, id := range args[1:] {
				if !v.Engine.Has(id) {
					ui.Warn.Printf("  %s node %s is not in the graph\n", ui.WarnIcon(), id)
					continue
				}
				start := time.Now()
				notices, err := v.ExpandWait(ctx, id)
				record("expand", id, v, start, err)
				if err != nil {
					fail("expand %s: %v", id, err)
				}
				for _, n := range notices {
					ui.Info.Printf("  %s: %s\n", id, n)
				}
			}

			after := v.Engine.Stats()
			ui.Banner("expand")
			printGraph(v)
			ui.Subtle.Printf("\n  +%d nodes, +%d edges\n",
				after.NodeCount-before.NodeCount, after.EdgeCount-before.EdgeCount)
		},
	}
	return cmd
}
