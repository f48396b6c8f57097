package layout

import (
	"math"
	"math/rand"
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// indexed maps layout node ids onto gonum int64 ids.
type indexed struct {
	ids   []string
	index map[string]int64
}

func newIndexed(nodes []string) indexed {
	ix := indexed{ids: nodes, index: make(map[string]int64, len(nodes))}
	for i, id := range nodes {
		ix.index[id] = int64(i)
	}
	return ix
}

func (ix indexed) undirected(edges []Edge) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range ix.ids {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		a, okA := ix.index[e.Source]
		b, okB := ix.index[e.Target]
		if !okA || !okB || a == b {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	}
	return g
}

func (ix indexed) directed(edges []Edge) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range ix.ids {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		a, okA := ix.index[e.Source]
		b, okB := ix.index[e.Target]
		if !okA || !okB || a == b {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	}
	return g
}

func gridLayout(g Graph, box Box, p Params) map[string]Point {
	n := len(g.Nodes)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))
	inner := shrink(box, p.Padding)
	cw := inner.W / float64(cols)
	ch := inner.H / float64(rows)

	out := make(map[string]Point, n)
	for i, id := range g.Nodes {
		r, c := i/cols, i%cols
		out[id] = Point{
			X: inner.X + cw*(float64(c)+0.5),
			Y: inner.Y + ch*(float64(r)+0.5),
		}
	}
	return out
}

func circleLayout(nodes []string, box Box, p Params) map[string]Point {
	out := make(map[string]Point, len(nodes))
	c := box.Center()
	if len(nodes) == 1 {
		out[nodes[0]] = c
		return out
	}
	inner := shrink(box, p.Padding)
	r := math.Max(math.Min(inner.W, inner.H)/2, float64(len(nodes))*p.Spacing/(2*math.Pi))
	step := 2 * math.Pi / float64(len(nodes))
	for i, id := range nodes {
		a := -math.Pi/2 + step*float64(i)
		out[id] = Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return out
}

// concentricLayout places nodes on rings by degree, highest degree at the
// centre. Ties keep input order.
func concentricLayout(g Graph, box Box, p Params) map[string]Point {
	if p.Spacing == 0 {
		p.Spacing = 90
	}
	ix := newIndexed(g.Nodes)
	ug := ix.undirected(g.Edges)

	degree := make(map[string]int, len(g.Nodes))
	for id, n := range ix.index {
		degree[id] = ug.From(n).Len()
	}
	order := append([]string(nil), g.Nodes...)
	sort.SliceStable(order, func(i, j int) bool { return degree[order[i]] > degree[order[j]] })

	var levels [][]string
	for i, id := range order {
		if i == 0 || degree[id] != degree[order[i-1]] {
			levels = append(levels, nil)
		}
		levels[len(levels)-1] = append(levels[len(levels)-1], id)
	}

	c := box.Center()
	out := make(map[string]Point, len(g.Nodes))
	ring := 0.0
	for li, level := range levels {
		if li == 0 && len(level) == 1 {
			out[level[0]] = c
			continue
		}
		ring++
		// Rings grow so that adjacent nodes stay at least Spacing apart.
		r := math.Max(ring*p.Spacing, float64(len(level))*p.Spacing/(2*math.Pi))
		step := 2 * math.Pi / float64(len(level))
		for i, id := range level {
			a := -math.Pi/2 + step*float64(i)
			out[id] = Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
		}
	}
	return out
}

// breadthfirstLayout arranges nodes in rows by BFS depth. Each connected
// component is rooted at its highest-degree node.
func breadthfirstLayout(g Graph, box Box, p Params) map[string]Point {
	ix := newIndexed(g.Nodes)
	ug := ix.undirected(g.Edges)

	order := append([]string(nil), g.Nodes...)
	sort.SliceStable(order, func(i, j int) bool {
		return ug.From(ix.index[order[i]]).Len() > ug.From(ix.index[order[j]]).Len()
	})

	depth := make(map[string]int, len(g.Nodes))
	var bf traverse.BreadthFirst
	for _, root := range order {
		n := ug.Node(ix.index[root])
		if bf.Visited(n) {
			continue
		}
		bf.Walk(ug, n, func(v gonumgraph.Node, d int) bool {
			depth[ix.ids[v.ID()]] = d
			return false
		})
	}
	return ranked(g.Nodes, depth, box, p)
}

// layeredLayout ranks nodes along edge direction: sources first.
func layeredLayout(g Graph, box Box, p Params) map[string]Point {
	ix := newIndexed(g.Nodes)
	dg := ix.directed(g.Edges)

	var roots []string
	for _, id := range g.Nodes {
		if dg.To(ix.index[id]).Len() == 0 {
			roots = append(roots, id)
		}
	}
	roots = append(roots, g.Nodes...)

	depth := make(map[string]int, len(g.Nodes))
	var bf traverse.BreadthFirst
	for _, root := range roots {
		n := dg.Node(ix.index[root])
		if bf.Visited(n) {
			continue
		}
		bf.Walk(dg, n, func(v gonumgraph.Node, d int) bool {
			depth[ix.ids[v.ID()]] = d
			return false
		})
	}
	return ranked(g.Nodes, depth, box, p)
}

// ranked spreads nodes of equal depth along one axis and depths along the
// other.
func ranked(nodes []string, depth map[string]int, box Box, p Params) map[string]Point {
	if p.Spacing == 0 {
		p.Spacing = 80
	}
	rows := map[int][]string{}
	maxDepth := 0
	for _, id := range nodes {
		d := depth[id]
		rows[d] = append(rows[d], id)
		if d > maxDepth {
			maxDepth = d
		}
	}

	inner := shrink(box, p.Padding)
	across, along := inner.W, inner.H
	if p.Horizontal {
		across, along = inner.H, inner.W
	}
	gap := math.Max(p.Spacing, along/float64(maxDepth+1))

	out := make(map[string]Point, len(nodes))
	for d := 0; d <= maxDepth; d++ {
		row := rows[d]
		width := math.Max(across, float64(len(row))*p.Spacing)
		cell := width / float64(len(row)+1)
		for i, id := range row {
			a := cell * float64(i+1)
			b := gap * (float64(d) + 0.5)
			if p.Horizontal {
				out[id] = Point{X: inner.X + b, Y: inner.Y + a}
			} else {
				out[id] = Point{X: inner.X + a, Y: inner.Y + b}
			}
		}
	}
	return out
}

func randomLayout(nodes []string, box Box, p Params) map[string]Point {
	rng := rand.New(rand.NewSource(p.Seed))
	inner := shrink(box, p.Padding)
	out := make(map[string]Point, len(nodes))
	for _, id := range nodes {
		out[id] = Point{X: inner.X + rng.Float64()*inner.W, Y: inner.Y + rng.Float64()*inner.H}
	}
	return out
}

func shrink(b Box, padding float64) Box {
	if b.W <= 2*padding || b.H <= 2*padding {
		return b
	}
	return Box{X: b.X + padding, Y: b.Y + padding, W: b.W - 2*padding, H: b.H - 2*padding}
}
