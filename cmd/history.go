package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/activity"
	"github.com/msalah0e/agviewer/internal/style"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

func historyCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"log"},
		Short:   "List recently submitted statements",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := activity.Read(count)
			if err != nil {
				fail("%v", err)
			}
			ui.Banner("history")
			if len(entries) == 0 {
				fmt.Println("  No statements recorded yet.")
				return
			}
			printEntries(entries)
			fmt.Printf("\n  Showing %d most recent entries\n", len(entries))
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries to show (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "search <term>",
		Short: "Search the history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			results, err := activity.Search(args[0], 50)
			if err != nil {
				fail("%v", err)
			}
			if len(results) == 0 {
				fmt.Printf("  No entries matching %q\n", args[0])
				return
			}
			ui.Banner("search results")
			printEntries(results)
			fmt.Printf("\n  %d results\n", len(results))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the history",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := activity.Clear(); err != nil {
				fail("%v", err)
			}
			ui.Good.Println("  ✓ history cleared")
		},
	})

	return cmd
}

func printEntries(entries []activity.Entry) {
	var rows [][]string
	for _, e := range entries {
		result := fmt.Sprintf("%d/%d", e.Nodes, e.Edges)
		if e.Error != "" {
			result = ui.Bad.Sprint("error")
		}
		dur := "-"
		if e.Duration > 0 {
			dur = (time.Duration(e.Duration * float64(time.Second))).Round(time.Millisecond).String()
		}
		q := strings.Join(strings.Fields(e.Query), " ")
		rows = append(rows, []string{e.Timestamp.Format("Jan 02 15:04"), e.Action, result, dur, style.Truncate(q, 60)})
	}
	ui.Table([]string{"TIME", "ACTION", "N/E", "TOOK", "QUERY"}, rows)
}

// record logs one submission. Failing to write the log never fails the
// command.
func record(action, query string, v *viewer.Viewer, start time.Time, err error) {
	e := activity.Entry{
		Action:   action,
		Backend:  cfg.Server.Backend,
		Query:    query,
		Duration: time.Since(start).Seconds(),
	}
	if err != nil {
		e.Error = err.Error()
	} else if v != nil {
		st := v.Engine.Stats()
		e.Nodes, e.Edges = st.NodeCount, st.EdgeCount
	}
	if lerr := activity.Record(e); lerr != nil {
		logger.Debug("activity log", "err", lerr)
	}
}
