package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/parallel"
	"github.com/msalah0e/agviewer/internal/render"
	"github.com/msalah0e/agviewer/internal/ui"
)

func exportCmd() *cobra.Command {
	var (
		outDir      string
		format      string
		layouts     []string
		allLayouts  bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export <cypher>",
		Short: "Render a query result to SVG, Cytoscape JSON or DOT",
		Long: `Submit a query once and write the laid-out graph to files.
SVG output is rendered for each requested layout in parallel.

  agv export "MATCH (n)-[r]->(m) RETURN n, r, m" -o out
  agv export --all-layouts "MATCH (n) RETURN n"
  agv export --format dot "MATCH (n)-[r]->(m) RETURN n, r, m"`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if allLayouts {
				layouts = layout.Names()
			}
			if len(layouts) == 0 {
				layouts = []string{cfg.Canvas.Layout}
			}
			for _, name := range layouts {
				if !layout.Known(name) {
					fail("unknown layout %q", name)
				}
			}
			if concurrency <= 0 {
				concurrency = cfg.Parallel.Concurrency
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				fail("%v", err)
			}

			sub, err := newSubmitter(ctx)
			if err != nil {
				fail("%v", err)
			}
			if c, ok := sub.(cypher.Closer); ok {
				defer c.Close(context.Background())
			}

			probe, err := newViewer(sub, layouts[0])
			if err != nil {
				fail("%v", err)
			}
			start := time.Now()
			res, err := probe.Fetch(ctx, queryText(args))
			record("export", queryText(args), nil, start, err)
			if err != nil {
				fail("%v", err)
			}

			ui.Banner("export")
			switch format {
			case "svg":
				exportSVG(ctx, sub, res, layouts, outDir, concurrency)
			case "json", "dot":
				if err := probe.Load(res); err != nil {
					fail("%v", err)
				}
				m, err := graph.FromElements(probe.Engine.Snapshot())
				if err != nil {
					fail("%v", err)
				}
				path := filepath.Join(outDir, "graph."+format)
				var data []byte
				if format == "json" {
					if data, err = m.ExportCytoscape(); err != nil {
						fail("%v", err)
					}
				} else {
					data = []byte(m.ExportDOT())
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					fail("%v", err)
				}
				ui.Good.Printf("  ✓ %s\n", path)
			default:
				fail("unknown format %q (want svg, json or dot)", format)
			}
			probe.Engine.Unmount()
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&format, "format", "F", "svg", "Output format: svg, json or dot")
	cmd.Flags().StringSliceVar(&layouts, "layouts", nil, "Layouts to render (default: the configured one)")
	cmd.Flags().BoolVar(&allLayouts, "all-layouts", false, "Render every selectable layout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Parallel renders (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("layouts", layoutCompletionFunc)
	return cmd
}

// exportSVG renders res once per layout. Each task owns its own engine.
func exportSVG(ctx context.Context, sub cypher.Submitter, res *cypher.Result, layouts []string, outDir string, concurrency int) {
	tasks := make([]parallel.Task, 0, len(layouts))
	for _, name := range layouts {
		name := name
		tasks = append(tasks, parallel.Task{
			Name: name,
			Fn: func(ctx context.Context) (string, error) {
				v, err := newViewer(sub, name)
				if err != nil {
					return "", err
				}
				defer v.Engine.Unmount()
				if err := v.Load(res); err != nil {
					return "", err
				}
				path := filepath.Join(outDir, name+".svg")
				err = render.SVGFile(path, v.Engine, render.Options{
					Width:  int(cfg.Canvas.Width),
					Height: int(cfg.Canvas.Height),
					Title:  fmt.Sprintf("agv · %s", name),
					Legend: v.Legend.Legend(),
				})
				if err != nil {
					return "", err
				}
				st := v.Engine.Stats()
				return fmt.Sprintf("%s (%d nodes, %d edges)", path, st.NodeCount, st.EdgeCount), nil
			},
		})
	}

	results := parallel.Run(ctx, tasks, concurrency, os.Stdout)
	if n := parallel.Failed(results); n > 0 {
		var names []string
		for _, r := range results {
			if r.Err != nil {
				names = append(names, r.Name)
			}
		}
		fail("%d of %d renders failed: %s", n, len(results), strings.Join(names, ", "))
	}
}
