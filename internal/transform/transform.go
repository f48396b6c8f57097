// Package transform turns query result rows into canvas elements and a
// per-label legend.
package transform

import (
	"sort"
	"sync"

	"github.com/msalah0e/agviewer/internal/graph"
)

// Element size hints.
const (
	NodeSize = 55.0
	EdgeSize = 1.0
)

// ClassNew tags elements produced by an expansion.
const ClassNew = "new"

// Swatch is one palette entry.
type Swatch struct {
	Color       string
	BorderColor string
	FontColor   string
}

// Palette is assigned to labels in first-seen order, wrapping around.
var Palette = []Swatch{
	{"#604A0E", "#423204", "#FFF"},
	{"#C990C0", "#B261A5", "#FFF"},
	{"#F79767", "#F36924", "#FFF"},
	{"#57C7E3", "#23B3D7", "#2A2C34"},
	{"#F16667", "#EB2728", "#FFF"},
	{"#D9C8AE", "#C0A378", "#2A2C34"},
	{"#8DCC93", "#5DB665", "#2A2C34"},
	{"#ECB5C9", "#DA7298", "#2A2C34"},
	{"#4C8EDA", "#2870C2", "#FFF"},
	{"#FFC454", "#D7A013", "#2A2C34"},
	{"#DA7194", "#CC3C6C", "#FFF"},
	{"#569480", "#447666", "#FFF"},
}

// LegendEntry describes how one label is drawn.
type LegendEntry struct {
	Color   string  `json:"color"`
	Size    float64 `json:"size"`
	Caption string  `json:"caption"`
}

// Legend maps labels to their entries.
type Legend struct {
	NodeLegend map[string]LegendEntry `json:"nodeLegend"`
	EdgeLegend map[string]LegendEntry `json:"edgeLegend"`
}

// Labels returns the node and edge labels in the legend, sorted.
func (l Legend) Labels() (nodes, edges []string) {
	for k := range l.NodeLegend {
		nodes = append(nodes, k)
	}
	for k := range l.EdgeLegend {
		edges = append(edges, k)
	}
	sort.Strings(nodes)
	sort.Strings(edges)
	return nodes, edges
}

// Options tunes a transformation.
type Options struct {
	// MaxElements caps the number of nodes emitted when positive.
	MaxElements int
	// MarkNew tags every emitted element with ClassNew.
	MarkNew bool
}

// Result is the output of a transformation.
type Result struct {
	Elements *graph.Elements
	Legend   Legend
}

type labelStyle struct {
	swatch  Swatch
	caption string
}

// Transformer keeps label colours and captions stable across calls, so an
// expansion draws labels the way the initial render did.
type Transformer struct {
	mu    sync.Mutex
	nodes map[string]labelStyle
	edges map[string]labelStyle
	next  int
}

// New creates a transformer with an empty label table.
func New() *Transformer {
	return &Transformer{
		nodes: make(map[string]labelStyle),
		edges: make(map[string]labelStyle),
	}
}

// Transform converts rows into elements. columns fixes the column order;
// when empty the row keys are used in sorted order.
func (t *Transformer) Transform(columns []string, rows []map[string]any, opts Options) *Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := &builder{
		t:      t,
		opts:   opts,
		seen:   make(map[string]bool),
		legend: Legend{NodeLegend: map[string]LegendEntry{}, EdgeLegend: map[string]LegendEntry{}},
		out:    &graph.Elements{},
	}
	for _, row := range rows {
		cols := columns
		if len(cols) == 0 {
			cols = sortedKeys(row)
		}
		for _, c := range cols {
			b.value(row[c])
		}
	}
	b.dropDangling()
	return &Result{Elements: b.out, Legend: b.legend}
}

// Transform converts rows with a fresh label table.
func Transform(columns []string, rows []map[string]any, opts Options) *Result {
	return New().Transform(columns, rows, opts)
}

type builder struct {
	t      *Transformer
	opts   Options
	seen   map[string]bool
	nodes  int
	legend Legend
	out    *graph.Elements
}

func (b *builder) value(v any) {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			b.value(item)
		}
	case []map[string]any:
		for _, item := range val {
			b.value(item)
		}
	case map[string]any:
		if isEdge(val) {
			b.edge(val)
		} else if isVertex(val) {
			b.vertex(val)
		}
	}
}

func isVertex(m map[string]any) bool {
	_, hasID := m["id"]
	_, hasLabel := m["label"]
	return hasID && hasLabel
}

func isEdge(m map[string]any) bool {
	_, hasStart := m["start"]
	_, hasEnd := m["end"]
	return isVertex(m) && hasStart && hasEnd
}

func (b *builder) vertex(m map[string]any) {
	id := graph.FormatValue(m["id"])
	if id == "" || b.seen[id] {
		return
	}
	if b.opts.MaxElements > 0 && b.nodes >= b.opts.MaxElements {
		return
	}
	label := graph.FormatValue(m["label"])
	props := properties(m["properties"])
	st := b.t.style(b.t.nodes, label, props)

	el := &graph.Element{
		Kind:            graph.KindNode,
		ID:              id,
		Label:           label,
		Properties:      props,
		Caption:         st.caption,
		Size:            NodeSize,
		BackgroundColor: st.swatch.Color,
		BorderColor:     st.swatch.BorderColor,
		FontColor:       st.swatch.FontColor,
	}
	if b.opts.MarkNew {
		el.AddClass(ClassNew)
	}
	b.seen[id] = true
	b.nodes++
	b.out.Nodes = append(b.out.Nodes, el)
	b.legend.NodeLegend[label] = LegendEntry{Color: st.swatch.Color, Size: NodeSize, Caption: st.caption}
}

func (b *builder) edge(m map[string]any) {
	id := graph.FormatValue(m["id"])
	if id == "" || b.seen[id] {
		return
	}
	label := graph.FormatValue(m["label"])
	props := properties(m["properties"])
	st := b.t.style(b.t.edges, label, props)

	el := &graph.Element{
		Kind:            graph.KindEdge,
		ID:              id,
		Label:           label,
		Properties:      props,
		Caption:         st.caption,
		Size:            EdgeSize,
		BackgroundColor: st.swatch.Color,
		FontColor:       "#2A2C34",
		Source:          graph.FormatValue(m["start"]),
		Target:          graph.FormatValue(m["end"]),
	}
	if b.opts.MarkNew {
		el.AddClass(ClassNew)
	}
	b.seen[id] = true
	b.out.Edges = append(b.out.Edges, el)
}

// dropDangling removes edges whose endpoints were not emitted, then builds
// the edge legend from what survives.
func (b *builder) dropDangling() {
	nodes := make(map[string]bool, len(b.out.Nodes))
	for _, n := range b.out.Nodes {
		nodes[n.ID] = true
	}
	kept := b.out.Edges[:0]
	for _, e := range b.out.Edges {
		if nodes[e.Source] && nodes[e.Target] {
			kept = append(kept, e)
			b.legend.EdgeLegend[e.Label] = LegendEntry{Color: e.BackgroundColor, Size: EdgeSize, Caption: e.Caption}
		}
	}
	b.out.Edges = kept
}

// style returns the label's swatch and caption, assigning them on first
// sight. Caller holds t.mu.
func (t *Transformer) style(table map[string]labelStyle, label string, props graph.Properties) labelStyle {
	if st, ok := table[label]; ok {
		return st
	}
	caption := "gid"
	if v, ok := props.Get("name"); ok && v != nil {
		caption = "name"
	}
	st := labelStyle{swatch: Palette[t.next%len(Palette)], caption: caption}
	t.next++
	table[label] = st
	return st
}

// SetCaption overrides the caption field for a label.
func (t *Transformer) SetCaption(kind graph.Kind, label, field string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	table := t.nodes
	if kind == graph.KindEdge {
		table = t.edges
	}
	st, ok := table[label]
	if !ok {
		st = labelStyle{swatch: Palette[t.next%len(Palette)]}
		t.next++
	}
	st.caption = field
	table[label] = st
}

func properties(v any) graph.Properties {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return graph.FromMap(m)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
