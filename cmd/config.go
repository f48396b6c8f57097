package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/config"
	"github.com/msalah0e/agviewer/internal/ui"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			shown := *cfg
			if shown.Server.Bolt.Password != "" {
				shown.Server.Bolt.Password = "********"
			}
			if err := toml.NewEncoder(os.Stdout).Encode(shown); err != nil {
				fail("%v", err)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file if none exists",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.EnsureExists(); err != nil {
				fail("%v", err)
			}
			ui.Good.Printf("  ✓ %s\n", config.Path())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.Path())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "captions",
		Short: "List caption overrides per label",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var rows [][]string
			for _, kind := range []string{"node", "edge"} {
				m := cfg.Canvas.NodeCaptions
				if kind == "edge" {
					m = cfg.Canvas.EdgeCaptions
				}
				labels := make([]string, 0, len(m))
				for l := range m {
					labels = append(labels, l)
				}
				sort.Strings(labels)
				for _, l := range labels {
					rows = append(rows, []string{kind, l, m[l]})
				}
			}
			if len(rows) == 0 {
				ui.Subtle.Println("  No caption overrides. Add [canvas.node_captions] to", config.Path())
				return
			}
			ui.Table([]string{"KIND", "LABEL", "FIELD"}, rows)
		},
	})

	return cmd
}
