package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/config"
	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/shortcut"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

var version = "0.4.0"

var (
	cfg    *config.Config
	logger *log.Logger

	debugMode   bool
	layoutFlag  string
	backendFlag string
	urlFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "agv",
	Short: "agv, a graph viewer for Apache AGE",
	Long: ui.Brand.Sprint(ui.Mark+" agv") + " explore query results as an interactive graph\n" +
		ui.Subtle.Sprint("Run Cypher, lay the result out, expand neighborhoods and draft new nodes and edges"),
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if layoutFlag != "" {
			cfg.Canvas.Layout = layoutFlag
		}
		if backendFlag != "" {
			cfg.Server.Backend = backendFlag
		}
		if urlFlag != "" {
			cfg.Server.URL = urlFlag
		}
		if debugMode {
			cfg.Log.Level = "debug"
		}
		logger = newLogger(cfg.Log.Level)
		return cfg.Validate()
	},
}

func init() {
	rootCmd.SetVersionTemplate("agv {{ .Version }}\n")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&layoutFlag, "layout", "", "Layout to use (see `agv layouts`)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Query backend: http or bolt")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Viewer server URL for the http backend")
	_ = rootCmd.RegisterFlagCompletionFunc("layout", layoutCompletionFunc)

	rootCmd.AddCommand(
		queryCmd(),
		expandCmd(),
		createCmd(),
		labelsCmd(),
		propsCmd(),
		layoutsCmd(),
		exportCmd(),
		uiCmd(),
		configCmd(),
		historyCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          "agv",
	})
}

// newSubmitter connects to the configured backend.
func newSubmitter(ctx context.Context) (cypher.Submitter, error) {
	switch cfg.Server.Backend {
	case config.BackendBolt:
		b := cfg.Server.Bolt
		client, err := cypher.NewBoltClient(b.URI, b.User, b.Password, b.Database)
		if err != nil {
			return nil, fmt.Errorf("bolt: %w", err)
		}
		if err := client.Verify(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("bolt %s: %w", b.URI, err)
		}
		logger.Debug("connected", "backend", "bolt", "uri", b.URI)
		return client, nil
	default:
		logger.Debug("using server", "backend", "http", "url", cfg.Server.URL)
		return cypher.NewHTTPClient(cfg.Server.URL), nil
	}
}

// openViewer builds a viewer on the configured backend and layout.
func openViewer(ctx context.Context) (*viewer.Viewer, error) {
	sub, err := newSubmitter(ctx)
	if err != nil {
		return nil, err
	}
	return newViewer(sub, cfg.Canvas.Layout)
}

func newViewer(sub cypher.Submitter, layoutName string) (*viewer.Viewer, error) {
	return viewer.New(viewer.Options{
		Submitter:    sub,
		Database:     shortcut.Database{Flavor: cfg.Graph.Flavor, Graph: cfg.Graph.Name},
		Layout:       layoutName,
		Width:        cfg.Canvas.Width,
		Height:       cfg.Canvas.Height,
		MaxElements:  cfg.Graph.MaxElements,
		NodeCaptions: cfg.Canvas.NodeCaptions,
		EdgeCaptions: cfg.Canvas.EdgeCaptions,
		Logger:       logger,
	})
}

// fail prints a failure line and exits.
func fail(format string, args ...any) {
	ui.Bad.Printf("  "+format+"\n", args...)
	os.Exit(1)
}

// queryText joins the arguments into one statement.
func queryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
