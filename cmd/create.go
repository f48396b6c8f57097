package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/creation"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

func createCmd() *cobra.Command {
	var (
		label       string
		props       []string
		from, to    string
		interactive bool
		copyOut     bool
		run         bool
	)

	cmd := &cobra.Command{
		Use:   "create node|edge",
		Short: "Compile a CREATE statement for a new node or edge",
		Long: `Fill the new-node or new-edge form and print the compiled statement.
Nothing is sent unless --run is given.

  agv create node --label Person --prop name=Ada --prop born=1815
  agv create edge --label KNOWS --from 1 --to 2 --copy
  agv create edge -i`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"node", "edge"},
		Run: func(cmd *cobra.Command, args []string) {
			kind := args[0]
			if kind != "node" && kind != "edge" {
				fail("unknown element kind %q (want node or edge)", kind)
			}
			if interactive {
				if err := askForm(kind, &label, &props, &from, &to); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return
					}
					fail("%v", err)
				}
			}

			buf := &viewer.CommandBuffer{}
			w := creation.NewWorkflow(buf, nil)
			if kind == "edge" {
				w.OpenEdge(from, to)
			} else {
				w.OpenNode()
			}
			w.SetLabel(label)
			for _, p := range props {
				k, val, _ := strings.Cut(p, "=")
				w.AddProperty(k, val)
			}

			text, err := w.Confirm()
			if err != nil {
				var fe creation.FieldErrors
				if errors.As(err, &fe) {
					for _, e := range fe {
						ui.Bad.Printf("  ✗ %-10s %s\n", e.Field, e.Message)
					}
					os.Exit(1)
				}
				fail("%v", err)
			}

			fmt.Println(text)
			if copyOut {
				if err := clipboard.WriteAll(text); err != nil {
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
			v.Command.SetCommand(buf.Command())
			start := time.Now()
			err = v.Run(ctx)
			record("create", text, v, start, err)
			if err != nil {
				fail("%v", err)
			}
			fmt.Println()
			printGraph(v)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Label of the new element")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Property as key=value (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "Origin node id (edge only)")
	cmd.Flags().StringVar(&to, "to", "", "Target node id (edge only)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the form interactively")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the statement to the clipboard")
	cmd.Flags().BoolVar(&run, "run", false, "Submit the statement and show the result")
	return cmd
}

// askForm prompts for the form fields, starting from the flag values.
// Properties are entered one key=value pair per line.
func askForm(kind string, label *string, props *[]string, from, to *string) error {
	lines := strings.Join(*props, "\n")
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}

	fields := []huh.Field{
		huh.NewInput().Title("Label").Value(label).Validate(required),
	}
	if kind == "edge" {
		fields = append(fields,
			huh.NewInput().Title("Origin node id").Value(from).Validate(required),
			huh.NewInput().Title("Target node id").Value(to).Validate(required),
		)
	}
	fields = append(fields,
		huh.NewText().Title("Properties").Description("one key=value per line").Value(&lines),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	*props = (*props)[:0]
	for _, line := range strings.Split(lines, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			*props = append(*props, line)
		}
	}
	return nil
}
