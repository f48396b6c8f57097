package canvas

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/msalah0e/agviewer/internal/graph"
)

// ClassGhost marks the provisional edge drawn by the edge-draw gesture.
const ClassGhost = "eh-ghost"

// Draft is a completed edge-draw gesture awaiting the creation form.
type Draft struct {
	OriginID string
	TargetID string
	// EdgeID is the provisional edge on the canvas.
	EdgeID string
}

// BeginEdgeDraw enters draw mode anchored at node id.
func (e *Engine) BeginEdgeDraw(id string) error {
	if e.closed {
		return ErrUnmounted
	}
	if e.state != StateReady {
		return ErrNotReady
	}
	el, ok := e.model.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if !el.IsNode() {
		return fmt.Errorf("%w: %s", graph.ErrEndpointNotANode, id)
	}
	e.drawing = true
	e.drawFrom = id
	return nil
}

// Drawing reports whether draw mode is active and its anchor.
func (e *Engine) Drawing() (string, bool) { return e.drawFrom, e.drawing }

// CompleteEdgeDraw finishes a drag from source to target. A provisional edge
// is added, the draft is recorded and OnEdgeDraft is called with it. Any
// earlier draft is discarded first.
func (e *Engine) CompleteEdgeDraw(source, target string) (Draft, error) {
	if e.closed {
		return Draft{}, ErrUnmounted
	}
	if e.state != StateReady {
		return Draft{}, ErrNotReady
	}
	e.ClearDraft()

	ghost := &graph.Element{
		ID:      uuid.NewString(),
		Source:  source,
		Target:  target,
		Classes: []string{ClassGhost},
	}
	if err := e.model.AddEdge(ghost); err != nil {
		return Draft{}, err
	}
	d := Draft{OriginID: source, TargetID: target, EdgeID: ghost.ID}
	e.draft = &d
	e.drawing = false
	e.drawFrom = ""
	e.log.Debug("edge drafted", "origin", source, "target", target)

	if e.opts.OnEdgeDraft != nil {
		e.opts.OnEdgeDraft(d)
	}
	return d, nil
}

// PendingDraft returns the current draft, if any.
func (e *Engine) PendingDraft() (Draft, bool) {
	if e.draft == nil {
		return Draft{}, false
	}
	return *e.draft, true
}

// ClearDraft removes the provisional edge and forgets the draft.
func (e *Engine) ClearDraft() {
	if e.draft == nil {
		return
	}
	if e.model.Has(e.draft.EdgeID) {
		_, _ = e.model.Remove(e.draft.EdgeID)
		e.forget(e.draft.EdgeID)
	}
	e.draft = nil
}

func (e *Engine) isProvisional(id string) bool {
	el, ok := e.model.Get(id)
	return ok && el.HasClass(ClassGhost)
}
