package transform

import (
	"testing"

	"github.com/msalah0e/agviewer/internal/graph"
)

func vertex(id any, label string, props map[string]any) map[string]any {
	return map[string]any{"id": id, "label": label, "properties": props}
}

func rel(id any, label string, start, end any) map[string]any {
	return map[string]any{"id": id, "label": label, "start": start, "end": end, "properties": map[string]any{}}
}

func TestTransformRows(t *testing.T) {
	rows := []map[string]any{
		{"a": vertex("1", "Person", map[string]any{"name": "Ann"}), "r": rel("10", "KNOWS", "1", "2"), "b": vertex("2", "Person", map[string]any{"name": "Bob"})},
		{"a": vertex("1", "Person", map[string]any{"name": "Ann"}), "r": rel("11", "LIVES_IN", "1", "3"), "b": vertex("3", "City", map[string]any{"zip": "1"})},
	}
	res := Transform([]string{"a", "r", "b"}, rows, Options{})

	if len(res.Elements.Nodes) != 3 {
		t.Fatalf("expected 3 deduplicated nodes, got %d", len(res.Elements.Nodes))
	}
	if len(res.Elements.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(res.Elements.Edges))
	}
	ann := res.Elements.Nodes[0]
	if ann.Size != NodeSize || ann.Caption != "name" {
		t.Errorf("unexpected node hints size=%v caption=%q", ann.Size, ann.Caption)
	}
	city := res.Elements.Nodes[2]
	if city.Caption != "gid" {
		t.Errorf("label without name should caption by gid, got %q", city.Caption)
	}
	if city.BackgroundColor == ann.BackgroundColor {
		t.Error("distinct labels should get distinct colours")
	}

	e := res.Elements.Edges[0]
	if e.Source != "1" || e.Target != "2" || e.Size != EdgeSize {
		t.Errorf("unexpected edge %+v", e)
	}

	if len(res.Legend.NodeLegend) != 2 || len(res.Legend.EdgeLegend) != 2 {
		t.Errorf("unexpected legend %+v", res.Legend)
	}
	if res.Legend.NodeLegend["Person"].Color != Palette[0].Color {
		t.Errorf("first label should take the first swatch, got %s", res.Legend.NodeLegend["Person"].Color)
	}
}

func TestNumericIDs(t *testing.T) {
	rows := []map[string]any{{"n": vertex(float64(844424930131969), "Person", nil)}}
	res := Transform(nil, rows, Options{})
	if got := res.Elements.Nodes[0].ID; got != "844424930131969" {
		t.Errorf("expected integral id, got %q", got)
	}
}

func TestPathsAndScalars(t *testing.T) {
	path := []any{vertex("1", "A", nil), rel("e", "R", "1", "2"), vertex("2", "A", nil)}
	rows := []map[string]any{{"p": path, "count": float64(3)}}
	res := Transform(nil, rows, Options{})
	if len(res.Elements.Nodes) != 2 || len(res.Elements.Edges) != 1 {
		t.Errorf("expected path to yield 2 nodes and 1 edge, got %d/%d", len(res.Elements.Nodes), len(res.Elements.Edges))
	}
}

func TestMaxElementsDropsDanglingEdges(t *testing.T) {
	rows := []map[string]any{
		{"a": vertex("1", "P", nil), "r": rel("e", "R", "1", "2"), "b": vertex("2", "P", nil)},
	}
	res := Transform([]string{"a", "r", "b"}, rows, Options{MaxElements: 1})
	if len(res.Elements.Nodes) != 1 {
		t.Fatalf("expected cap of 1 node, got %d", len(res.Elements.Nodes))
	}
	if len(res.Elements.Edges) != 0 {
		t.Error("edge to a capped-out node should be dropped")
	}
	if len(res.Legend.EdgeLegend) != 0 {
		t.Error("dropped edges should not reach the legend")
	}
}

func TestMarkNew(t *testing.T) {
	rows := []map[string]any{{"a": vertex("1", "P", nil)}}
	res := Transform(nil, rows, Options{MarkNew: true})
	if !res.Elements.Nodes[0].HasClass(ClassNew) {
		t.Error("expected new class")
	}
}

func TestColoursStableAcrossCalls(t *testing.T) {
	tr := New()
	first := tr.Transform(nil, []map[string]any{{"a": vertex("1", "A", nil)}, {"a": vertex("2", "B", nil)}}, Options{})
	second := tr.Transform(nil, []map[string]any{{"a": vertex("3", "B", nil)}}, Options{})

	if first.Elements.Nodes[1].BackgroundColor != second.Elements.Nodes[0].BackgroundColor {
		t.Error("label B should keep its colour across calls")
	}
}

func TestSetCaption(t *testing.T) {
	tr := New()
	tr.SetCaption(graph.KindNode, "P", "label")
	res := tr.Transform(nil, []map[string]any{{"a": vertex("1", "P", map[string]any{"name": "x"})}}, Options{})
	if res.Elements.Nodes[0].Caption != "label" {
		t.Errorf("expected overridden caption, got %q", res.Elements.Nodes[0].Caption)
	}
}
