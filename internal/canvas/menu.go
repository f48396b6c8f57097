package canvas

import (
	"context"
	"fmt"

	"github.com/msalah0e/agviewer/internal/graph"
)

// Command identifiers, in menu order.
const (
	CmdResetPosition = "reset-position"
	CmdExpand        = "expand-neighborhood"
	CmdHide          = "hide"
	CmdBeginEdgeDraw = "begin-edge-draw"
)

// Icons maps command ids to icon names for front ends that draw them.
var Icons = map[string]string{
	CmdResetPosition: "lock-open",
	CmdExpand:        "project-diagram",
	CmdHide:          "eye-slash",
	CmdBeginEdgeDraw: "code-compare",
}

// Command is one context menu entry.
type Command struct {
	ID           string
	Precondition func(el *graph.Element) bool
	Effect       func(ctx context.Context, el *graph.Element) error
}

// Menu is the right-click menu of an engine.
type Menu struct {
	engine   *Engine
	Commands []Command
}

// ContextMenu returns the engine's menu, building it on first use. Later
// calls return the same menu.
func (e *Engine) ContextMenu() (*Menu, error) {
	if e.closed {
		return nil, ErrUnmounted
	}
	if e.menu != nil {
		return e.menu, nil
	}
	isNode := func(el *graph.Element) bool { return el.IsNode() }
	e.menu = &Menu{
		engine: e,
		Commands: []Command{
			{ID: CmdResetPosition, Precondition: isNode, Effect: func(_ context.Context, el *graph.Element) error {
				return e.ResetPosition(el.ID)
			}},
			{ID: CmdExpand, Precondition: isNode, Effect: func(ctx context.Context, el *graph.Element) error {
				return e.RequestExpansion(ctx, el.ID)
			}},
			{ID: CmdHide, Precondition: isNode, Effect: func(_ context.Context, el *graph.Element) error {
				return e.Hide(el.ID)
			}},
			{ID: CmdBeginEdgeDraw, Precondition: isNode, Effect: func(_ context.Context, el *graph.Element) error {
				return e.BeginEdgeDraw(el.ID)
			}},
		},
	}
	return e.menu, nil
}

// Radius returns the menu radius for the current zoom.
func (m *Menu) Radius() float64 { return m.engine.MenuRadius() }

// Available returns the commands whose precondition holds for elementID.
func (m *Menu) Available(elementID string) []Command {
	el, ok := m.engine.model.Get(elementID)
	if !ok {
		return nil
	}
	var out []Command
	for _, c := range m.Commands {
		if c.Precondition(el) {
			out = append(out, c)
		}
	}
	return out
}

// Select runs command id against elementID.
func (m *Menu) Select(ctx context.Context, id, elementID string) error {
	if m.engine.closed {
		return ErrUnmounted
	}
	el, ok := m.engine.model.Get(elementID)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrNotFound, elementID)
	}
	for _, c := range m.Commands {
		if c.ID != id {
			continue
		}
		if !c.Precondition(el) {
			return fmt.Errorf("canvas: %s does not apply to %s", id, elementID)
		}
		return c.Effect(ctx, el)
	}
	return fmt.Errorf("canvas: unknown command %q", id)
}
