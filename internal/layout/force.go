package layout

import (
	"math"
	"math/rand"
)

type forceNode struct {
	x, y   float64
	vx, vy float64
}

// forceLayout runs a Fruchterman-Reingold style simulation. Nodes with a
// known position start there; the rest are scattered with a seeded rng so
// results are reproducible. The result is centred on the box.
func forceLayout(g Graph, current map[string]Point, box Box, p Params) map[string]Point {
	if p.Iterations == 0 {
		p.Iterations = 300
	}
	if p.RepelForce == 0 {
		p.RepelForce = 8000
	}
	if p.AttractForce == 0 {
		p.AttractForce = 0.015
	}
	if p.Damping == 0 {
		p.Damping = 0.85
	}

	size := math.Max(800, math.Sqrt(float64(len(g.Nodes)))*200)
	rng := rand.New(rand.NewSource(p.Seed))
	nodes := make([]forceNode, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for i, id := range g.Nodes {
		index[id] = i
		if pt, ok := current[id]; ok {
			nodes[i] = forceNode{x: pt.X, y: pt.Y}
			continue
		}
		nodes[i] = forceNode{
			x: size/2 + (rng.Float64()-0.5)*size*0.8,
			y: size/2 + (rng.Float64()-0.5)*size*0.8,
		}
	}

	temperature := size / 2
	for iter := 0; iter < p.Iterations; iter++ {
		for i := range nodes {
			nodes[i].vx, nodes[i].vy = 0, 0
		}

		for i := range nodes {
			for j := range nodes {
				if i == j {
					continue
				}
				dx := nodes[i].x - nodes[j].x
				dy := nodes[i].y - nodes[j].y
				dist := math.Max(1, math.Hypot(dx, dy))
				force := p.RepelForce / (dist * dist)
				nodes[i].vx += dx / dist * force
				nodes[i].vy += dy / dist * force
			}
		}

		for _, e := range g.Edges {
			a, okA := index[e.Source]
			b, okB := index[e.Target]
			if !okA || !okB || a == b {
				continue
			}
			dx := nodes[b].x - nodes[a].x
			dy := nodes[b].y - nodes[a].y
			dist := math.Max(1, math.Hypot(dx, dy))
			force := dist * p.AttractForce
			nodes[a].vx += dx / dist * force
			nodes[a].vy += dy / dist * force
			nodes[b].vx -= dx / dist * force
			nodes[b].vy -= dy / dist * force
		}

		for i := range nodes {
			disp := math.Hypot(nodes[i].vx, nodes[i].vy)
			if disp > temperature {
				nodes[i].vx = nodes[i].vx / disp * temperature
				nodes[i].vy = nodes[i].vy / disp * temperature
			}
			nodes[i].x += nodes[i].vx * p.Damping
			nodes[i].y += nodes[i].vy * p.Damping
		}
		temperature *= 0.97
	}

	out := make(map[string]Point, len(nodes))
	for id, i := range index {
		out[id] = Point{X: nodes[i].x, Y: nodes[i].y}
	}
	return recenter(out, box.Center())
}

// recenter translates pos so the centre of its bounding box lands on c.
func recenter(pos map[string]Point, c Point) map[string]Point {
	delta := c.Sub(Bounds(pos).Center())
	for id, pt := range pos {
		pos[id] = pt.Add(delta)
	}
	return pos
}
