package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/shortcut"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

func labelsCmd() *cobra.Command {
	var (
		copyOut bool
		run     bool
	)

	cmd := &cobra.Command{
		Use:   "labels node|edge [label]",
		Short: "Print the query listing elements with a label",
		Long: `Build the label shortcut query for the configured graph. Without a
label every element of that kind is listed.

  agv labels node Person
  agv labels edge --run`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{shortcut.KindNode, shortcut.KindEdge},
		Run: func(cmd *cobra.Command, args []string) {
			label := shortcut.AllLabels
			if len(args) == 2 {
				label = args[1]
			}
			q := shortcut.LabelQuery(args[0], label, shortcut.Database{Flavor: cfg.Graph.Flavor, Graph: cfg.Graph.Name})
			if q == "" {
				fail("no shortcut for %s on %s", args[0], cfg.Graph.Flavor)
			}
			emitShortcut(q, copyOut, run)
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the query to the clipboard")
	cmd.Flags().BoolVar(&run, "run", false, "Submit the query and show the result")
	return cmd
}

func propsCmd() *cobra.Command {
	var (
		copyOut bool
		run     bool
	)

	cmd := &cobra.Command{
		Use:   "props v|e <key>",
		Short: "Print the query listing elements carrying a property key",
		Long: `Build the property shortcut query for vertices (v) or edges (e).

  agv props v name
  agv props e since --copy`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{shortcut.KeyVertex, shortcut.KeyEdge},
		Run: func(cmd *cobra.Command, args []string) {
			q := shortcut.PropertyQuery(args[0], args[1])
			if q == "" {
				fail("unknown key type %q (want v or e)", args[0])
			}
			emitShortcut(q, copyOut, run)
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the query to the clipboard")
	cmd.Flags().BoolVar(&run, "run", false, "Submit the query and show the result")
	return cmd
}

func emitShortcut(q string, copyOut, run bool) {
	fmt.Println(q)
	if copyOut {
		if err := clipboard.WriteAll(q); err != nil {
			ui.Warn.Printf("  %s clipboard: %v\n", ui.WarnIcon(), err)
		} else {
			ui.Good.Println("  ✓ copied to clipboard")
		}
	}
	if !run {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	v, err := openViewer(ctx)
	if err != nil {
		fail("%v", err)
	}
	defer v.Close(context.Background())
	start := time.Now()
	err = runShortcut(ctx, v, q)
	record("shortcut", q, v, start, err)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println()
	printGraph(v)
}

// runShortcut places q in the editor and submits it, as picking a label in
// the viewer does.
func runShortcut(ctx context.Context, v *viewer.Viewer, q string) error {
	v.Command.SetCommand(q)
	return v.Run(ctx)
}
