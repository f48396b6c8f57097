package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

// watchSettle absorbs the burst of events editors emit on save.
const watchSettle = 150 * time.Millisecond

func queryCmd() *cobra.Command {
	var (
		file   string
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query [cypher]",
		Short: "Run a query and show the resulting graph",
		Long: `Submit a Cypher statement, lay the result out and print every element
with its caption, colour and position.

  agv query "MATCH (n)-[r]->(m) RETURN n, r, m"
  agv query --file q.cypher --watch   # re-run whenever q.cypher changes
  agv query --json "MATCH (n) RETURN n"`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if watch && file == "" {
				fail("--watch needs --file")
			}
			text := queryText(args)
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					fail("read %s: %v", file, err)
				}
				text = string(data)
			}
			if text == "" {
				fail("nothing to run: pass a statement or --file")
			}

			v, err := openViewer(ctx)
			if err != nil {
				fail("%v", err)
			}
			defer v.Close(context.Background())

			if err := runAndPrint(ctx, v, text, asJSON); err != nil {
				if !watch {
					fail("%v", err)
				}
				ui.Bad.Printf("  %v\n", err)
			}
			if !watch {
				return
			}
			if err := watchFile(ctx, file, func(text string) {
				if err := runAndPrint(ctx, v, text, asJSON); err != nil {
					ui.Bad.Printf("  %v\n", err)
				}
			}); err != nil {
				fail("watch: %v", err)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the statement from a file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when --file changes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print Cytoscape elements JSON instead of a table")
	return cmd
}

func runAndPrint(ctx context.Context, v *viewer.Viewer, text string, asJSON bool) error {
	start := time.Now()
	err := v.Query(ctx, text)
	record("query", text, v, start, err)
	if err != nil {
		return err
	}
	if asJSON {
		m, err := graph.FromElements(v.Engine.Snapshot())
		if err != nil {
			return err
		}
		data, err := m.ExportCytoscape()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	ui.Banner("query")
	printGraph(v)
	return nil
}

// watchFile calls run with the file contents each time it is written, until
// ctx is done. The directory is watched so editors that replace the file on
// save are followed.
func watchFile(ctx context.Context, path string, run func(text string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	ui.Subtle.Printf("  watching %s (ctrl+c to stop)\n", path)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-settle:
			settle = nil
			data, err := os.ReadFile(abs)
			if err != nil {
				logger.Warn("re-read failed", "path", abs, "err", err)
				continue
			}
			run(string(data))
		}
	}
}
