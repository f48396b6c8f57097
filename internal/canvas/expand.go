package canvas

import (
	"context"
	"fmt"

	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/transform"
)

// NoticeNoData is sent when an expansion finds nothing new.
const NoticeNoData = "No data to extend"

// scopedLayout places the new neighborhood around its centre.
const scopedLayout = "concentric"

// Expand merges rows fetched for the neighborhood of centerID into the model.
// Only the new edges and their endpoints are laid out again, and the result
// is translated so centerID ends where it started. When the rows hold no new
// node the model is left untouched and a notice is sent instead. It returns
// the ids of the added elements.
func (e *Engine) Expand(centerID string, columns []string, rows []map[string]any) ([]string, error) {
	if e.closed {
		return nil, ErrUnmounted
	}
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	center, ok := e.model.Get(centerID)
	if !ok || !center.IsNode() {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, centerID)
	}

	res := e.opts.Transformer.Transform(columns, rows, transform.Options{
		MaxElements: e.opts.MaxElements,
		MarkNew:     true,
	})
	var nodes, edges []*graph.Element
	for _, n := range res.Elements.Nodes {
		if !e.model.Has(n.ID) {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		e.log.Debug("expand: nothing new", "center", centerID)
		e.opts.Alerts.Notice(NoticeNoData)
		return nil, nil
	}
	for _, ed := range res.Elements.Edges {
		if !e.model.Has(ed.ID) {
			edges = append(edges, ed)
		}
	}

	// Freeze everything already on the canvas.
	prior := e.frozen
	e.frozen = make(map[string]bool, len(e.pos))
	for id := range e.pos {
		e.frozen[id] = true
	}

	origin := e.pos[centerID]
	var added []string
	for _, n := range nodes {
		if err := e.model.AddNode(n); err != nil {
			e.rollback(added, prior)
			return nil, fmt.Errorf("expand: %w", err)
		}
		e.pos[n.ID] = origin
		added = append(added, n.ID)
	}
	for _, ed := range edges {
		if err := e.model.AddEdge(ed); err != nil {
			e.rollback(added, prior)
			return nil, fmt.Errorf("expand: %w", err)
		}
		added = append(added, ed.ID)
	}

	targets := make(map[string]bool)
	for _, ed := range edges {
		targets[ed.ID] = true
		targets[ed.Source] = true
		targets[ed.Target] = true
	}
	// Targets may move; everything else stays frozen for the scoped run.
	for id := range targets {
		delete(e.frozen, id)
	}

	before, hadCenter := e.pos[centerID]
	e.runScoped(targets)
	if hadCenter && targets[centerID] {
		after := e.pos[centerID]
		delta := after.Sub(before)
		for id := range targets {
			if p, ok := e.pos[id]; ok {
				e.pos[id] = p.Sub(delta)
			}
		}
	}

	e.frozen = prior
	for _, id := range added {
		e.bound[id] = true
	}
	for _, id := range added {
		if el, ok := e.model.Get(id); ok {
			el.RemoveClass(transform.ClassNew)
		}
		if p, ok := e.pos[id]; ok {
			e.initial[id] = p
		}
	}
	e.opts.Legend.AddLegend(res.Legend)
	e.log.Debug("expand", "center", centerID, "nodes", len(nodes), "edges", len(edges))
	return added, nil
}

// runScoped lays out only the target elements around their current centroid.
func (e *Engine) runScoped(targets map[string]bool) {
	g := e.layoutGraph(targets)
	if len(g.Nodes) == 0 {
		return
	}
	var cx, cy float64
	for _, id := range g.Nodes {
		p := e.pos[id]
		cx += p.X
		cy += p.Y
	}
	n := float64(len(g.Nodes))
	box := layout.BoxAround(layout.Point{X: cx / n, Y: cy / n}, e.opts.Width, e.opts.Height)
	for id, p := range layout.Run(layout.Lookup(scopedLayout), g, e.pos, box) {
		if targets[id] && !e.frozen[id] {
			e.pos[id] = p
		}
	}
}

func (e *Engine) rollback(added []string, prior map[string]bool) {
	for i := len(added) - 1; i >= 0; i-- {
		if removed, err := e.model.Remove(added[i]); err == nil {
			for _, r := range removed {
				e.forget(r)
			}
		}
	}
	e.frozen = prior
}

// RequestExpansion fetches the neighborhood of node id in the background and
// merges it once the result is pumped. Only one request per node may be
// outstanding. Results are dropped when the engine is unmounted or the model
// is repopulated in the meantime; failures go to the alert sink.
func (e *Engine) RequestExpansion(ctx context.Context, id string) error {
	if e.closed {
		return ErrUnmounted
	}
	if e.state != StateReady {
		return ErrNotReady
	}
	if e.opts.Submitter == nil {
		return fmt.Errorf("canvas: no submitter configured")
	}
	el, ok := e.model.Get(id)
	if !ok || !el.IsNode() {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if _, busy := e.pending[id]; busy {
		return fmt.Errorf("%w: %s", ErrExpansionPending, id)
	}

	fctx, cancel := context.WithCancel(ctx)
	e.pending[id] = cancel
	gen := e.gen
	query := cypher.ExpandQueryFor(e.opts.Submitter, id)
	sub := e.opts.Submitter
	e.log.Debug("expand request", "id", id)

	go func() {
		res, err := sub.Submit(fctx, query)
		e.post(func() { e.finishExpansion(id, gen, res, err) })
	}()
	return nil
}

func (e *Engine) finishExpansion(id string, gen int, res *cypher.Result, err error) {
	if cancel, ok := e.pending[id]; ok {
		cancel()
		delete(e.pending, id)
	}
	if e.closed {
		return
	}
	if gen != e.gen || !e.model.Has(id) {
		e.log.Debug("expand result discarded", "id", id)
		return
	}
	if err != nil {
		e.opts.Alerts.Alert(fmt.Errorf("expand %s: %w", id, err))
		return
	}
	if _, err := e.Expand(id, res.Columns, res.Rows); err != nil {
		e.opts.Alerts.Alert(err)
	}
}
