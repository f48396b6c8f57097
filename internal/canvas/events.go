package canvas

import (
	"fmt"

	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
)

// interactive returns the element behind an interaction event. A nil
// element with a nil error means the event is not bound and is ignored.
func (e *Engine) interactive(id string) (*graph.Element, error) {
	if e.closed {
		return nil, ErrUnmounted
	}
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	el, ok := e.model.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if !e.bound[id] {
		return nil, nil
	}
	return el, nil
}

// Hover highlights id and reports it to the inspector.
func (e *Engine) Hover(id string) error {
	el, err := e.interactive(id)
	if el == nil {
		return err
	}
	e.highlighted[id] = true
	e.opts.Notifier.Notify(Summary{Type: SummaryElements, Data: el.Clone()})
	return nil
}

// Unhover clears the highlight on id. The inspector falls back to the first
// selected element, or to the background summary when nothing is selected.
func (e *Engine) Unhover(id string) error {
	el, err := e.interactive(id)
	if el == nil {
		return err
	}
	if sel := e.Selected(); len(sel) > 0 {
		first, _ := e.model.Get(sel[0])
		e.opts.Notifier.Notify(Summary{Type: SummaryElements, Data: first.Clone()})
	} else {
		e.notifyBackground()
	}
	delete(e.highlighted, id)
	return nil
}

// Click applies neighborhood selection. Clicking a selected node while it is
// the only selected node selects its neighborhood and locks those elements
// against selection changes. With several nodes selected, the neighborhoods
// of the other selected nodes are selected and locked instead. Clicking
// anything else clears the selection. The click then selects the element
// itself when it is selectable.
func (e *Engine) Click(id string) error {
	el, err := e.interactive(id)
	if el == nil {
		return err
	}
	if el.IsNode() && e.selected[id] {
		nodes := e.selectedNodes()
		if len(nodes) == 1 {
			e.lockSelect(e.model.Neighborhood(id))
		} else {
			for _, n := range nodes {
				if n != id {
					e.lockSelect(e.model.Neighborhood(n))
				}
			}
		}
	} else {
		e.clearSelection()
	}
	e.tap(id)
	return nil
}

// BackgroundClick clears the selection and reports the background summary.
func (e *Engine) BackgroundClick() error {
	if e.closed {
		return ErrUnmounted
	}
	if e.state != StateReady {
		return ErrNotReady
	}
	e.clearSelection()
	e.notifyBackground()
	return nil
}

// Select adds id to the selection unless it is locked.
func (e *Engine) Select(id string) error {
	if !e.model.Has(id) {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if !e.unselectable[id] {
		e.selected[id] = true
	}
	return nil
}

// Unselect removes id from the selection unless it is locked.
func (e *Engine) Unselect(id string) error {
	if !e.model.Has(id) {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if !e.unselectable[id] {
		delete(e.selected, id)
	}
	return nil
}

func (e *Engine) selectedNodes() []string {
	var out []string
	for _, n := range e.model.Nodes() {
		if e.selected[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

func (e *Engine) lockSelect(ids []string) {
	for _, id := range ids {
		e.selected[id] = true
		e.unselectable[id] = true
	}
}

func (e *Engine) clearSelection() {
	e.selected = make(map[string]bool)
	e.unselectable = make(map[string]bool)
}

// tap is the default single-selection behaviour of a click.
func (e *Engine) tap(id string) {
	if e.unselectable[id] {
		return
	}
	for s := range e.selected {
		if s != id && !e.unselectable[s] {
			delete(e.selected, s)
		}
	}
	e.selected[id] = true
}

func (e *Engine) notifyBackground() {
	e.opts.Notifier.Notify(Summary{Type: SummaryBackground, Data: e.model.Stats()})
}

// Hide removes id from the model. Hiding a node removes its edges too.
func (e *Engine) Hide(id string) error {
	if e.closed {
		return ErrUnmounted
	}
	removed, err := e.model.Remove(id)
	if err != nil {
		return err
	}
	for _, r := range removed {
		e.forget(r)
	}
	if e.draft != nil && !e.model.Has(e.draft.EdgeID) {
		e.draft = nil
	}
	e.log.Debug("hide", "id", id, "removed", len(removed))
	return nil
}

func (e *Engine) forget(id string) {
	delete(e.pos, id)
	delete(e.initial, id)
	delete(e.frozen, id)
	delete(e.selected, id)
	delete(e.unselectable, id)
	delete(e.highlighted, id)
	delete(e.bound, id)
}

// Move drags a node to p. Frozen nodes do not move.
func (e *Engine) Move(id string, p layout.Point) error {
	if e.closed {
		return ErrUnmounted
	}
	el, ok := e.model.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if !el.IsNode() || e.frozen[id] {
		return nil
	}
	e.pos[id] = p
	return nil
}

// ResetPosition moves a node back to where the last layout placed it.
func (e *Engine) ResetPosition(id string) error {
	if e.closed {
		return ErrUnmounted
	}
	if !e.model.Has(id) {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if p, ok := e.initial[id]; ok {
		e.pos[id] = p
	}
	return nil
}

// SetZoom sets the zoom level within the current bounds.
func (e *Engine) SetZoom(z float64) {
	e.zoom = clamp(z, e.minZoom, e.maxZoom)
}
