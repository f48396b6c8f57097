// Package style resolves canvas elements into drawable style records.
package style

import (
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/msalah0e/agviewer/internal/graph"
)

// Fallbacks used when an element carries no visual hint.
const (
	DefaultColor     = "#FF0000"
	DefaultFontColor = "#FFF"
	DefaultSize      = 1.0
	HighlightColor   = "#B2EBF4"
	FontSize         = 10.0
	BorderWidth      = 3.0
	ActiveBorder     = 6.0
)

// CaptionPolicy selects what an element renders as on-canvas text.
type CaptionPolicy int

const (
	CaptionByProperty CaptionPolicy = iota
	CaptionByID
	CaptionByLabel
)

// Caption is a caption-field choice.
type Caption struct {
	Policy   CaptionPolicy
	Property string
}

// ByID renders "[ <id> ]".
func ByID() Caption { return Caption{Policy: CaptionByID} }

// ByLabel renders "[ :<label> ]".
func ByLabel() Caption { return Caption{Policy: CaptionByLabel} }

// ByProperty renders the named property value.
func ByProperty(name string) Caption { return Caption{Policy: CaptionByProperty, Property: name} }

// ParseCaption maps a caption field name to a policy. "gid" and "id" select
// the element id, "label" the type tag, anything else a property.
func ParseCaption(field string) Caption {
	switch field {
	case "gid", "id":
		return ByID()
	case "label":
		return ByLabel()
	default:
		return ByProperty(field)
	}
}

// String returns the field name recorded for legends.
func (c Caption) String() string {
	switch c.Policy {
	case CaptionByID:
		return "gid"
	case CaptionByLabel:
		return "label"
	default:
		return c.Property
	}
}

// Config carries the caption policy for a resolution.
type Config struct {
	Caption Caption
}

// ConfigFor derives the config from the element's own caption field.
func ConfigFor(el *graph.Element) Config {
	return Config{Caption: ParseCaption(el.Caption)}
}

// Record is the drawable style of one element.
type Record struct {
	Text            string
	Width           float64
	Height          float64
	BackgroundColor string
	BorderColor     string
	BorderWidth     float64
	LineColor       string
	ArrowColor      string
	FontColor       string
	FontSize        float64
	TextMaxWidth    float64
}

// Text returns the caption text for el under policy c. The second result is
// false when a property caption is absent on the element.
func Text(el *graph.Element, c Caption) (string, bool) {
	switch c.Policy {
	case CaptionByID:
		return "[ " + el.ID + " ]", true
	case CaptionByLabel:
		return "[ :" + el.Label + " ]", true
	}
	v, ok := el.Properties.Get(c.Property)
	if !ok || v == nil {
		return "", false
	}
	return graph.FormatValue(v), true
}

// Resolve maps an element to its style record. It has no side effects.
func Resolve(el *graph.Element, cfg Config) Record {
	text, _ := Text(el, cfg.Caption)
	size := el.Size
	if size <= 0 {
		size = DefaultSize
	}
	bg := color(el.BackgroundColor, DefaultColor)

	r := Record{
		Text:      text,
		Width:     size,
		FontColor: color(el.FontColor, DefaultFontColor),
		FontSize:  FontSize,
	}
	if el.IsNode() {
		r.Height = size
		r.BackgroundColor = bg
		r.BorderColor = color(el.BorderColor, DefaultColor)
		r.BorderWidth = BorderWidth
		r.TextMaxWidth = size
	} else {
		r.LineColor = bg
		r.ArrowColor = bg
	}
	return r
}

// Overlay applies the highlight and selection overlays. Both render the
// same way; they are tracked independently by the canvas.
func Overlay(r Record, el *graph.Element, highlighted, selected bool) Record {
	if !highlighted && !selected {
		return r
	}
	if el.IsNode() {
		r.BorderWidth = ActiveBorder
		r.BorderColor = HighlightColor
	} else {
		r.LineColor = HighlightColor
		r.ArrowColor = HighlightColor
	}
	return r
}

// Truncate shortens caption text to width cells with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

func color(hex, fallback string) string {
	if hex == "" {
		return fallback
	}
	if _, err := colorful.Hex(hex); err != nil {
		return fallback
	}
	return hex
}

// Tracker remembers which caption field was last used per label.
type Tracker struct {
	mu    sync.Mutex
	nodes map[string]string
	edges map[string]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{nodes: make(map[string]string), edges: make(map[string]string)}
}

// Observe records the caption field for el's label. Property captions are
// only recorded when the element actually has the property.
func (t *Tracker) Observe(el *graph.Element, c Caption) {
	if c.Policy == CaptionByProperty {
		if v, ok := el.Properties.Get(c.Property); !ok || v == nil {
			return
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if el.IsNode() {
		t.nodes[el.Label] = c.String()
	} else {
		t.edges[el.Label] = c.String()
	}
}

// NodeCaptions returns label -> caption field for nodes.
func (t *Tracker) NodeCaptions() map[string]string { return t.copy(t.nodes) }

// EdgeCaptions returns label -> caption field for edges.
func (t *Tracker) EdgeCaptions() map[string]string { return t.copy(t.edges) }

func (t *Tracker) copy(m map[string]string) map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Labels returns the tracked node and edge labels, sorted.
func (t *Tracker) Labels() (nodes, edges []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.nodes {
		nodes = append(nodes, k)
	}
	for k := range t.edges {
		edges = append(edges, k)
	}
	sort.Strings(nodes)
	sort.Strings(edges)
	return nodes, edges
}

// Resolver pairs Resolve with a Tracker.
type Resolver struct {
	Tracker *Tracker
}

// NewResolver creates a resolver with a fresh tracker.
func NewResolver() *Resolver {
	return &Resolver{Tracker: NewTracker()}
}

// Resolve resolves el under its own caption field and records the field.
func (r *Resolver) Resolve(el *graph.Element) Record {
	cfg := ConfigFor(el)
	r.Tracker.Observe(el, cfg.Caption)
	return Resolve(el, cfg)
}
