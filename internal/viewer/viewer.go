// Package viewer wires the canvas engine to a query backend, the creation
// forms and the sinks a front end reads from.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/creation"
	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/shortcut"
	"github.com/msalah0e/agviewer/internal/transform"
)

// ErrEmptyCommand is returned when there is nothing to submit.
var ErrEmptyCommand = errors.New("viewer: empty command")

// Options configures a Viewer.
type Options struct {
	Submitter     cypher.Submitter
	Database      shortcut.Database
	Layout        string
	Width, Height float64
	MaxElements   int
	// Caption fields per label, applied before the first query.
	NodeCaptions map[string]string
	EdgeCaptions map[string]string
	Logger       *log.Logger
}

// Viewer is one open graph view.
type Viewer struct {
	Engine    *canvas.Engine
	Workflow  *creation.Workflow
	Command   *CommandBuffer
	Inspector *Inspector
	Alerts    *Alerts
	Legend    *LegendBook

	sub         cypher.Submitter
	transformer *transform.Transformer
	db          shortcut.Database
	desc        layout.Descriptor
	maxElements int
	log         *log.Logger
}

// New builds a viewer. The layout name must be one layout.Names returns.
func New(opts Options) (*Viewer, error) {
	if opts.Layout == "" {
		opts.Layout = "coseBilkent"
	}
	if !layout.Known(opts.Layout) {
		return nil, fmt.Errorf("unknown layout %q", opts.Layout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	t := transform.New()
	for label, field := range opts.NodeCaptions {
		t.SetCaption(graph.KindNode, label, field)
	}
	for label, field := range opts.EdgeCaptions {
		t.SetCaption(graph.KindEdge, label, field)
	}

	v := &Viewer{
		Command:     &CommandBuffer{},
		Inspector:   &Inspector{},
		Alerts:      &Alerts{log: logger.WithPrefix("alerts")},
		Legend:      &LegendBook{},
		sub:         opts.Submitter,
		transformer: t,
		db:          opts.Database,
		desc:        layout.Lookup(opts.Layout),
		maxElements: opts.MaxElements,
		log:         logger.WithPrefix("viewer"),
	}
	v.Engine = canvas.New(canvas.Options{
		Width:       opts.Width,
		Height:      opts.Height,
		MaxElements: opts.MaxElements,
		Submitter:   opts.Submitter,
		Transformer: t,
		Notifier:    v.Inspector,
		Legend:      v.Legend,
		Alerts:      v.Alerts,
		OnEdgeDraft: v.onEdgeDraft,
		Logger:      logger,
	})
	v.Workflow = creation.NewWorkflow(v.Command, v.Engine)
	v.Workflow.Match = cypher.MatchNodeFor(opts.Submitter)
	return v, nil
}

// onEdgeDraft opens the edge form for a completed gesture.
func (v *Viewer) onEdgeDraft(d canvas.Draft) {
	v.Workflow.OpenEdge(d.OriginID, d.TargetID)
}

// Query submits text and renders the result, replacing the current model.
func (v *Viewer) Query(ctx context.Context, text string) error {
	res, err := v.Fetch(ctx, text)
	if err != nil {
		return err
	}
	return v.Load(res)
}

// Fetch submits text without touching the engine. It is safe to call off
// the owner goroutine; hand the result to Load afterwards.
func (v *Viewer) Fetch(ctx context.Context, text string) (*cypher.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyCommand
	}
	if v.sub == nil {
		return nil, errors.New("viewer: no submitter configured")
	}
	v.log.Debug("submit", "cmd", text)
	res, err := v.sub.Submit(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	v.Command.remember(text)
	return res, nil
}

// Run submits the command buffer.
func (v *Viewer) Run(ctx context.Context) error {
	return v.Query(ctx, v.Command.Command())
}

// Load transforms res and renders it with the current layout.
func (v *Viewer) Load(res *cypher.Result) error {
	out := v.transformer.Transform(res.Columns, res.Rows, transform.Options{MaxElements: v.maxElements})
	if err := v.Engine.Render(out.Elements, v.desc); err != nil {
		return err
	}
	v.Legend.reset()
	v.Legend.AddLegend(out.Legend)
	return nil
}

// SetLayout switches to layout name and lays the model out again.
func (v *Viewer) SetLayout(name string) error {
	if !layout.Known(name) {
		return fmt.Errorf("unknown layout %q", name)
	}
	v.desc = layout.Lookup(name)
	if v.Engine.State() == canvas.StateUnmounted {
		return nil
	}
	return v.Engine.ApplyLayout(v.desc)
}

// Layout returns the current layout descriptor.
func (v *Viewer) Layout() layout.Descriptor { return v.desc }

// Expand starts a background expansion of node id. The result lands once
// the engine inbox is pumped.
func (v *Viewer) Expand(ctx context.Context, id string) error {
	return v.Engine.RequestExpansion(ctx, id)
}

// ExpandWait expands node id and blocks until the result has been merged
// or discarded. It returns the notices raised meanwhile, such as the one
// sent when the neighborhood holds nothing new.
func (v *Viewer) ExpandWait(ctx context.Context, id string) ([]string, error) {
	if err := v.Expand(ctx, id); err != nil {
		return nil, err
	}
	for v.Engine.Pending() > 0 {
		if err := v.Engine.Wait(ctx); err != nil {
			return nil, err
		}
	}
	errs, notices := v.Alerts.Drain()
	return notices, errors.Join(errs...)
}

// ShowLabel writes the label shortcut query to the command buffer and
// returns it.
func (v *Viewer) ShowLabel(kind, label string) string {
	q := shortcut.LabelQuery(kind, label, v.db)
	if q != "" {
		v.Command.SetCommand(q)
	}
	return q
}

// ShowProperty writes the property shortcut query to the command buffer and
// returns it.
func (v *Viewer) ShowProperty(keyType, name string) string {
	q := shortcut.PropertyQuery(keyType, name)
	if q != "" {
		v.Command.SetCommand(q)
	}
	return q
}

// Labels returns the node and edge labels seen so far.
func (v *Viewer) Labels() (nodes, edges []string) {
	return v.Legend.Legend().Labels()
}

// Close unmounts the engine and releases the backend.
func (v *Viewer) Close(ctx context.Context) error {
	v.Engine.Unmount()
	if c, ok := v.sub.(cypher.Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
