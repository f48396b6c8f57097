package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNotFound         = errors.New("element not found")
	ErrDuplicateID      = errors.New("duplicate element id")
	ErrDanglingEndpoint = errors.New("edge endpoint not in model")
	ErrEmptyID          = errors.New("element id cannot be empty")
	ErrEndpointNotANode = errors.New("edge endpoint is not a node")
)

// Kind discriminates nodes from edges.
type Kind int

const (
	KindNode Kind = iota
	KindEdge
)

func (k Kind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "node"
}

// Property is a single key/value pair on an element.
type Property struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Properties keeps insertion order, which is the order captions and
// inspectors display them in.
type Properties []Property

// Get returns the value stored under key.
func (p Properties) Get(key string) (any, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key or appends a new pair.
func (p Properties) Set(key string, value any) Properties {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Property{Key: key, Value: value})
}

// Keys returns the property keys in order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}
	return keys
}

// FromMap builds Properties from a map, sorted by key for determinism.
func FromMap(m map[string]any) Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make(Properties, 0, len(keys))
	for _, k := range keys {
		props = append(props, Property{Key: k, Value: m[k]})
	}
	return props
}

// MarshalJSON renders properties as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Element is a node or an edge on the canvas. Visual hints left at their
// zero value fall back to the style defaults.
type Element struct {
	Kind            Kind       `json:"-"`
	ID              string     `json:"id"`
	Label           string     `json:"label"`
	Properties      Properties `json:"properties"`
	Caption         string     `json:"caption,omitempty"`
	Size            float64    `json:"size,omitempty"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	BorderColor     string     `json:"borderColor,omitempty"`
	FontColor       string     `json:"fontColor,omitempty"`
	Source          string     `json:"source,omitempty"`
	Target          string     `json:"target,omitempty"`
	Classes         []string   `json:"-"`
}

// IsNode reports whether the element is a node.
func (e *Element) IsNode() bool { return e.Kind == KindNode }

// IsEdge reports whether the element is an edge.
func (e *Element) IsEdge() bool { return e.Kind == KindEdge }

// HasClass reports whether the element carries the given class tag.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass tags the element.
func (e *Element) AddClass(class string) {
	if !e.HasClass(class) {
		e.Classes = append(e.Classes, class)
	}
}

// RemoveClass strips a class tag.
func (e *Element) RemoveClass(class string) {
	out := e.Classes[:0]
	for _, c := range e.Classes {
		if c != class {
			out = append(out, c)
		}
	}
	e.Classes = out
}

// Clone returns a deep copy.
func (e *Element) Clone() *Element {
	c := *e
	c.Properties = append(Properties(nil), e.Properties...)
	c.Classes = append([]string(nil), e.Classes...)
	return &c
}

// Elements is the declarative {nodes, edges} payload handed to the canvas.
type Elements struct {
	Nodes []*Element `json:"nodes"`
	Edges []*Element `json:"edges"`
}

// Len returns the total element count.
func (es *Elements) Len() int { return len(es.Nodes) + len(es.Edges) }

// Stats holds summary counts.
type Stats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// Model is the live set of canvas elements. Node and edge ids share one
// namespace, and an edge may only reference nodes already in the model.
type Model struct {
	order    []string
	byID     map[string]*Element
	incident map[string][]string
}

// New creates an empty model.
func New() *Model {
	return &Model{
		byID:     make(map[string]*Element),
		incident: make(map[string][]string),
	}
}

// FromElements builds a model from a declarative payload, nodes first.
func FromElements(es *Elements) (*Model, error) {
	m := New()
	if es == nil {
		return m, nil
	}
	for _, n := range es.Nodes {
		if err := m.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range es.Edges {
		if err := m.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddNode inserts a node.
func (m *Model) AddNode(el *Element) error {
	if el.ID == "" {
		return ErrEmptyID
	}
	if _, exists := m.byID[el.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, el.ID)
	}
	el.Kind = KindNode
	m.byID[el.ID] = el
	m.order = append(m.order, el.ID)
	return nil
}

// AddEdge inserts an edge. Both endpoints must already be nodes in the model.
func (m *Model) AddEdge(el *Element) error {
	if el.ID == "" {
		return ErrEmptyID
	}
	if _, exists := m.byID[el.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, el.ID)
	}
	for _, end := range []string{el.Source, el.Target} {
		n, ok := m.byID[end]
		if !ok {
			return fmt.Errorf("%w: %s -> %s", ErrDanglingEndpoint, el.ID, end)
		}
		if !n.IsNode() {
			return fmt.Errorf("%w: %s", ErrEndpointNotANode, end)
		}
	}
	el.Kind = KindEdge
	m.byID[el.ID] = el
	m.order = append(m.order, el.ID)
	m.incident[el.Source] = append(m.incident[el.Source], el.ID)
	if el.Target != el.Source {
		m.incident[el.Target] = append(m.incident[el.Target], el.ID)
	}
	return nil
}

// Get returns an element by id.
func (m *Model) Get(id string) (*Element, bool) {
	el, ok := m.byID[id]
	return el, ok
}

// Has reports whether id is in the model.
func (m *Model) Has(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// Remove deletes an element. Removing a node also removes every edge that
// references it so no edge is left with a dangling endpoint. The returned ids
// include the element itself.
func (m *Model) Remove(id string) ([]string, error) {
	el, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := []string{}
	if el.IsNode() {
		for _, edgeID := range append([]string(nil), m.incident[id]...) {
			m.removeEdge(edgeID)
			removed = append(removed, edgeID)
		}
		delete(m.incident, id)
		delete(m.byID, id)
		m.dropOrder(id)
	} else {
		m.removeEdge(id)
	}
	return append(removed, id), nil
}

func (m *Model) removeEdge(id string) {
	el, ok := m.byID[id]
	if !ok {
		return
	}
	m.incident[el.Source] = without(m.incident[el.Source], id)
	m.incident[el.Target] = without(m.incident[el.Target], id)
	delete(m.byID, id)
	m.dropOrder(id)
}

func (m *Model) dropOrder(id string) {
	m.order = without(m.order, id)
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Elements returns every element in insertion order.
func (m *Model) Elements() []*Element {
	out := make([]*Element, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Nodes returns the nodes in insertion order.
func (m *Model) Nodes() []*Element {
	var out []*Element
	for _, id := range m.order {
		if el := m.byID[id]; el.IsNode() {
			out = append(out, el)
		}
	}
	return out
}

// Edges returns the edges in insertion order.
func (m *Model) Edges() []*Element {
	var out []*Element
	for _, id := range m.order {
		if el := m.byID[id]; el.IsEdge() {
			out = append(out, el)
		}
	}
	return out
}

// IDs returns every id in insertion order.
func (m *Model) IDs() []string {
	return append([]string(nil), m.order...)
}

// IncidentEdges returns the ids of edges touching a node.
func (m *Model) IncidentEdges(id string) []string {
	return append([]string(nil), m.incident[id]...)
}

// Neighborhood returns the nodes adjacent to id together with the edges
// connecting them, excluding id itself.
func (m *Model) Neighborhood(id string) []string {
	seen := map[string]bool{id: true}
	var out []string
	for _, edgeID := range m.incident[id] {
		edge := m.byID[edgeID]
		if !seen[edgeID] {
			seen[edgeID] = true
			out = append(out, edgeID)
		}
		other := edge.Target
		if other == id {
			other = edge.Source
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// Stats returns node and edge counts.
func (m *Model) Stats() Stats {
	var s Stats
	for _, el := range m.byID {
		if el.IsNode() {
			s.NodeCount++
		} else {
			s.EdgeCount++
		}
	}
	return s
}

// Len returns the number of elements.
func (m *Model) Len() int { return len(m.order) }

// Snapshot returns the declarative payload of the model with cloned elements.
func (m *Model) Snapshot() *Elements {
	es := &Elements{}
	for _, el := range m.Elements() {
		if el.IsNode() {
			es.Nodes = append(es.Nodes, el.Clone())
		} else {
			es.Edges = append(es.Edges, el.Clone())
		}
	}
	return es
}

// ─── Export ───

type cyData struct {
	Data    *Element `json:"data"`
	Classes string   `json:"classes,omitempty"`
}

// ExportCytoscape returns the model in Cytoscape.js elements JSON.
func (m *Model) ExportCytoscape() ([]byte, error) {
	out := struct {
		Nodes []cyData `json:"nodes"`
		Edges []cyData `json:"edges"`
	}{Nodes: []cyData{}, Edges: []cyData{}}

	for _, el := range m.Elements() {
		d := cyData{Data: el, Classes: strings.Join(el.Classes, " ")}
		if el.IsNode() {
			out.Nodes = append(out.Nodes, d)
		} else {
			out.Edges = append(out.Edges, d)
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cytoscape elements: %w", err)
	}
	return data, nil
}

// ExportDOT returns the model in Graphviz DOT format.
func (m *Model) ExportDOT() string {
	var b strings.Builder
	b.WriteString("digraph agviewer {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=ellipse, style=filled];\n\n")

	for _, n := range m.Nodes() {
		label := n.ID
		if n.Label != "" {
			label += "\\n(:" + n.Label + ")"
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q];\n", n.ID, label))
	}

	b.WriteString("\n")
	for _, e := range m.Edges() {
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.Source, e.Target, e.Label))
	}

	b.WriteString("}\n")
	return b.String()
}

// FormatValue renders a scalar property value the way captions show it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
