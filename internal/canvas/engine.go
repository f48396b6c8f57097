// Package canvas owns the live graph model behind the interactive diagram:
// rendering with a layout, selection and hover overlays, scoped neighborhood
// expansion and the edge-draw gesture.
//
// An Engine is not safe for concurrent use. Every method must be called from
// the goroutine that owns it; background fetches hand their results back
// through the inbox (see Pump and Wait).
package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/style"
	"github.com/msalah0e/agviewer/internal/transform"
)

var (
	ErrNotReady         = errors.New("canvas: not ready")
	ErrExpansionPending = errors.New("canvas: expansion already pending")
	ErrUnmounted        = errors.New("canvas: unmounted")
)

// State is the engine lifecycle state.
type State int

const (
	StateUnmounted State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unmounted"
	}
}

// Menu radii by zoom.
const (
	MenuRadiusNear = 55.0
	MenuRadiusFar  = 70.0
)

const (
	defaultWidth  = 1200.0
	defaultHeight = 800.0
	fitPadding    = 30.0
	inboxSize     = 16
)

// Options configures an Engine. Nil sinks are replaced with no-ops.
type Options struct {
	Width, Height float64
	MaxElements   int

	Submitter   cypher.Submitter
	Transformer *transform.Transformer
	Notifier    Notifier
	Legend      LegendSink
	Alerts      AlertSink
	// OnEdgeDraft is called when an edge-draw gesture completes.
	OnEdgeDraft func(Draft)
	Logger      *log.Logger
}

// Engine is the canvas. Create one with New.
type Engine struct {
	opts   Options
	log    *log.Logger
	state  State
	closed bool

	model    *graph.Model
	rendered *graph.Elements
	desc     layout.Descriptor
	gen      int

	pos     map[string]layout.Point
	initial map[string]layout.Point
	frozen  map[string]bool

	selected     map[string]bool
	unselectable map[string]bool
	highlighted  map[string]bool
	bound        map[string]bool

	zoom             float64
	minZoom, maxZoom float64
	pan              layout.Point

	setups   int
	drawing  bool
	drawFrom string
	draft    *Draft
	menu     *Menu

	pending map[string]context.CancelFunc
	inbox   chan func()
	done    chan struct{}

	resolver *style.Resolver
}

// New creates an unmounted engine with an empty model.
func New(opts Options) *Engine {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Transformer == nil {
		opts.Transformer = transform.New()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Legend == nil {
		opts.Legend = nopLegend{}
	}
	if opts.Alerts == nil {
		opts.Alerts = nopAlerts{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		opts:     opts,
		log:      logger.WithPrefix("canvas"),
		model:    graph.New(),
		zoom:     1,
		minZoom:  layout.LayoutMinZoom,
		maxZoom:  layout.InteractiveMaxZoom,
		pending:  make(map[string]context.CancelFunc),
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
		resolver: style.NewResolver(),
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.pos = make(map[string]layout.Point)
	e.initial = make(map[string]layout.Point)
	e.frozen = make(map[string]bool)
	e.selected = make(map[string]bool)
	e.unselectable = make(map[string]bool)
	e.highlighted = make(map[string]bool)
	e.bound = make(map[string]bool)
	e.draft = nil
	e.drawing = false
	e.drawFrom = ""
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// SetupCount reports how many times the one-time setup ran. It is at most 1.
func (e *Engine) SetupCount() int { return e.setups }

// Generation increases each time the model is repopulated.
func (e *Engine) Generation() int { return e.gen }

// Render repopulates the model with elems and runs layout d. Calling it again
// with the same elems pointer and descriptor does nothing.
func (e *Engine) Render(elems *graph.Elements, d layout.Descriptor) error {
	if e.closed {
		return ErrUnmounted
	}
	if elems != nil && elems == e.rendered && d == e.desc && e.state == StateReady {
		return nil
	}

	model, err := graph.FromElements(cloneElements(elems))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	e.model = model
	e.rendered = elems
	e.gen++
	e.reset()
	if e.state == StateUnmounted {
		e.state = StateInitializing
	}
	if e.state == StateReady {
		e.bindAll()
	}
	e.log.Debug("render", "nodes", e.model.Stats().NodeCount, "edges", e.model.Stats().EdgeCount, "layout", d.Name)
	return e.ApplyLayout(d)
}

func cloneElements(es *graph.Elements) *graph.Elements {
	out := &graph.Elements{}
	if es == nil {
		return out
	}
	for _, n := range es.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	for _, ed := range es.Edges {
		out.Edges = append(out.Edges, ed.Clone())
	}
	return out
}

// ApplyLayout re-runs layout d over the whole model. Frozen nodes keep their
// positions. The first successful run performs the one-time setup and moves
// the engine to StateReady.
func (e *Engine) ApplyLayout(d layout.Descriptor) error {
	if e.closed {
		return ErrUnmounted
	}
	if e.state == StateUnmounted {
		return ErrNotReady
	}
	e.desc = d

	// Normalizing layouts are bounded so fitting cannot run away.
	e.minZoom, e.maxZoom = layout.LayoutMinZoom, layout.LayoutMaxZoom

	g := e.layoutGraph(nil)
	box := layout.Box{W: e.opts.Width, H: e.opts.Height}
	for id, p := range layout.Run(d, g, e.pos, box) {
		if !e.frozen[id] {
			e.pos[id] = p
		}
	}
	if d.Fit {
		e.fit()
	}
	e.zoom = clamp(e.zoom, e.minZoom, e.maxZoom)
	e.maxZoom = layout.InteractiveMaxZoom

	for id, p := range e.pos {
		e.initial[id] = p
	}

	if e.state == StateInitializing {
		e.setup()
		e.state = StateReady
	}
	return nil
}

// setup installs the edge-draw recognizer and the element bindings.
func (e *Engine) setup() {
	e.setups++
	e.bindAll()
	e.log.Debug("canvas ready", "elements", e.model.Len())
}

func (e *Engine) bindAll() {
	for _, id := range e.model.IDs() {
		if !e.isProvisional(id) {
			e.bound[id] = true
		}
	}
}

// layoutGraph builds the layout input. A nil only set selects every node.
func (e *Engine) layoutGraph(only map[string]bool) layout.Graph {
	var g layout.Graph
	for _, n := range e.model.Nodes() {
		if only == nil || only[n.ID] {
			g.Nodes = append(g.Nodes, n.ID)
		}
	}
	for _, ed := range e.model.Edges() {
		if e.isProvisional(ed.ID) {
			continue
		}
		if only == nil || only[ed.ID] {
			g.Edges = append(g.Edges, layout.Edge{Source: ed.Source, Target: ed.Target})
		}
	}
	return g
}

func (e *Engine) fit() {
	if len(e.pos) == 0 {
		return
	}
	content := layout.Bounds(e.pos)
	e.zoom = layout.FitZoom(content, e.opts.Width, e.opts.Height, fitPadding, e.minZoom, e.maxZoom)
	c := content.Center()
	e.pan = layout.Point{X: e.opts.Width/2 - c.X*e.zoom, Y: e.opts.Height/2 - c.Y*e.zoom}
}

// Unmount tears the engine down. Outstanding fetches are cancelled and their
// results discarded. Every later call returns ErrUnmounted.
func (e *Engine) Unmount() {
	if e.closed {
		return
	}
	e.closed = true
	e.state = StateUnmounted
	for id, cancel := range e.pending {
		cancel()
		delete(e.pending, id)
	}
	close(e.done)
	e.log.Debug("unmounted")
}

// ─── Read access ───

// Get returns a copy of the element with id.
func (e *Engine) Get(id string) (*graph.Element, bool) {
	el, ok := e.model.Get(id)
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Has reports whether id is in the model.
func (e *Engine) Has(id string) bool { return e.model.Has(id) }

// Snapshot returns a copy of the model contents.
func (e *Engine) Snapshot() *graph.Elements { return e.model.Snapshot() }

// Stats returns node and edge counts.
func (e *Engine) Stats() graph.Stats { return e.model.Stats() }

// Position returns a node's position.
func (e *Engine) Position(id string) (layout.Point, bool) {
	p, ok := e.pos[id]
	return p, ok
}

// Positions returns a copy of every node position.
func (e *Engine) Positions() map[string]layout.Point {
	out := make(map[string]layout.Point, len(e.pos))
	for k, v := range e.pos {
		out[k] = v
	}
	return out
}

// Zoom returns the current zoom level.
func (e *Engine) Zoom() float64 { return e.zoom }

// ZoomBounds returns the current zoom bounds.
func (e *Engine) ZoomBounds() (min, max float64) { return e.minZoom, e.maxZoom }

// Pan returns the viewport translation.
func (e *Engine) Pan() layout.Point { return e.pan }

// Layout returns the descriptor of the last layout run.
func (e *Engine) Layout() layout.Descriptor { return e.desc }

// Selected returns the selected ids in model order.
func (e *Engine) Selected() []string { return e.filter(e.selected) }

// Highlighted returns the highlighted ids in model order.
func (e *Engine) Highlighted() []string { return e.filter(e.highlighted) }

// IsSelected reports whether id is selected.
func (e *Engine) IsSelected(id string) bool { return e.selected[id] }

// IsHighlighted reports whether id is highlighted.
func (e *Engine) IsHighlighted(id string) bool { return e.highlighted[id] }

// IsSelectable reports whether id accepts selection changes.
func (e *Engine) IsSelectable(id string) bool { return e.model.Has(id) && !e.unselectable[id] }

// IsFrozen reports whether id's position is locked.
func (e *Engine) IsFrozen(id string) bool { return e.frozen[id] }

// IsBound reports whether interaction events are bound to id.
func (e *Engine) IsBound(id string) bool { return e.bound[id] }

func (e *Engine) filter(set map[string]bool) []string {
	var out []string
	for _, id := range e.model.IDs() {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

// Captions exposes the caption tracker fed by Style.
func (e *Engine) Captions() *style.Tracker { return e.resolver.Tracker }

// Style resolves the drawable style of id with its overlays applied.
func (e *Engine) Style(id string) (style.Record, bool) {
	el, ok := e.model.Get(id)
	if !ok {
		return style.Record{}, false
	}
	r := e.resolver.Resolve(el)
	return style.Overlay(r, el, e.highlighted[id], e.selected[id]), true
}

// MenuRadius returns the context menu radius for the current zoom.
func (e *Engine) MenuRadius() float64 {
	if e.zoom <= 1 {
		return MenuRadiusNear
	}
	return MenuRadiusFar
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
