// Package layout maps named layout choices to algorithm parameters and
// computes node positions for them.
package layout

import (
	"fmt"
	"math"
	"sort"
)

// Algorithm identifiers.
const (
	AlgoCose         = "cose"
	AlgoGrid         = "grid"
	AlgoCircle       = "circle"
	AlgoConcentric   = "concentric"
	AlgoBreadthfirst = "breadthfirst"
	AlgoLayered      = "layered"
	AlgoRandom       = "random"
)

// Zoom bounds applied around a layout run.
const (
	LayoutMinZoom      = 1e-1
	LayoutMaxZoom      = 1.5
	InteractiveMaxZoom = 5.0
)

// Point is a model-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Box is an axis-aligned rectangle.
type Box struct {
	X, Y, W, H float64
}

// Center returns the middle of the box.
func (b Box) Center() Point { return Point{X: b.X + b.W/2, Y: b.Y + b.H/2} }

// BoxAround returns a w*h box centred on c.
func BoxAround(c Point, w, h float64) Box {
	return Box{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Bounds returns the bounding box of a set of positions.
func Bounds(pos map[string]Point) Box {
	if len(pos) == 0 {
		return Box{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range pos {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Params tunes an algorithm. Zero values select the algorithm defaults.
type Params struct {
	Padding      float64
	Spacing      float64
	Iterations   int
	RepelForce   float64
	AttractForce float64
	Damping      float64
	Seed         int64
	Horizontal   bool
}

// Descriptor is a concrete layout choice.
type Descriptor struct {
	Name        string
	AlgorithmID string
	Animate     bool
	Fit         bool
	Params      Params
}

// Selectable holds the layouts a user can pick by name.
var Selectable = map[string]Descriptor{
	"coseBilkent": {Name: "coseBilkent", AlgorithmID: AlgoCose, Animate: true, Fit: true,
		Params: Params{Iterations: 300, RepelForce: 8000, AttractForce: 0.015, Damping: 0.85, Seed: 42}},
	"cola": {Name: "cola", AlgorithmID: AlgoCose, Animate: true, Fit: true,
		Params: Params{Iterations: 200, RepelForce: 6000, AttractForce: 0.03, Damping: 0.8, Seed: 7}},
	"euler": {Name: "euler", AlgorithmID: AlgoCose, Animate: true, Fit: true,
		Params: Params{Iterations: 400, RepelForce: 4500, AttractForce: 0.02, Damping: 0.9, Seed: 11}},
	"spread": {Name: "spread", AlgorithmID: AlgoCose, Animate: true, Fit: true,
		Params: Params{Iterations: 150, RepelForce: 12000, AttractForce: 0.01, Damping: 0.85, Seed: 3}},
	"dagre": {Name: "dagre", AlgorithmID: AlgoLayered, Animate: true, Fit: true,
		Params: Params{Spacing: 80}},
	"klay": {Name: "klay", AlgorithmID: AlgoLayered, Animate: true, Fit: true,
		Params: Params{Spacing: 80, Horizontal: true}},
	"avsdf": {Name: "avsdf", AlgorithmID: AlgoCircle, Animate: true, Fit: true,
		Params: Params{Spacing: 60}},
	"concentric": {Name: "concentric", AlgorithmID: AlgoConcentric, Animate: true, Fit: true,
		Params: Params{Spacing: 90}},
	"grid": {Name: "grid", AlgorithmID: AlgoGrid, Animate: true, Fit: true,
		Params: Params{Padding: 30}},
	"circle": {Name: "circle", AlgorithmID: AlgoCircle, Animate: true, Fit: true,
		Params: Params{Spacing: 60, Padding: 30}},
	"breadthfirst": {Name: "breadthfirst", AlgorithmID: AlgoBreadthfirst, Animate: true, Fit: true,
		Params: Params{Spacing: 80, Padding: 30}},
	"random": {Name: "random", AlgorithmID: AlgoRandom, Animate: true, Fit: true,
		Params: Params{Seed: 1, Padding: 30}},
}

// Lookup returns the descriptor registered under name. Callers are expected
// to pass a validated name; an unknown one panics.
func Lookup(name string) Descriptor {
	d, ok := Selectable[name]
	if !ok {
		panic(fmt.Sprintf("layout: unknown layout %q", name))
	}
	return d
}

// Known reports whether name is a selectable layout.
func Known(name string) bool {
	_, ok := Selectable[name]
	return ok
}

// Names returns the selectable layout names, sorted.
func Names() []string {
	names := make([]string, 0, len(Selectable))
	for n := range Selectable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Edge is a connection between two node ids.
type Edge struct {
	Source, Target string
}

// Graph is the input to a layout run.
type Graph struct {
	Nodes []string
	Edges []Edge
}

// Run computes positions for every node in g inside box. current holds the
// existing positions, which iterative algorithms use as a starting point.
func Run(d Descriptor, g Graph, current map[string]Point, box Box) map[string]Point {
	if len(g.Nodes) == 0 {
		return map[string]Point{}
	}
	p := d.Params
	switch d.AlgorithmID {
	case AlgoGrid:
		return gridLayout(g, box, p)
	case AlgoCircle:
		return circleLayout(g.Nodes, box, p)
	case AlgoConcentric:
		return concentricLayout(g, box, p)
	case AlgoBreadthfirst:
		return breadthfirstLayout(g, box, p)
	case AlgoLayered:
		return layeredLayout(g, box, p)
	case AlgoRandom:
		return randomLayout(g.Nodes, box, p)
	case AlgoCose:
		return forceLayout(g, current, box, p)
	default:
		panic(fmt.Sprintf("layout: unknown algorithm %q", d.AlgorithmID))
	}
}

// FitZoom returns the zoom that fits content into a viewport, clamped to
// [minZoom, maxZoom].
func FitZoom(content Box, viewW, viewH, padding, minZoom, maxZoom float64) float64 {
	w := content.W + 2*padding
	h := content.H + 2*padding
	zoom := maxZoom
	if w > 0 && h > 0 {
		zoom = math.Min(viewW/w, viewH/h)
	}
	return math.Max(minZoom, math.Min(maxZoom, zoom))
}
