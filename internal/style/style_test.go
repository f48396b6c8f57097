package style

import (
	"testing"

	"github.com/msalah0e/agviewer/internal/graph"
)

func person() *graph.Element {
	return &graph.Element{
		Kind:       graph.KindNode,
		ID:         "42",
		Label:      "Person",
		Properties: graph.Properties{{Key: "name", Value: "Ann"}},
	}
}

func TestCaptionPolicies(t *testing.T) {
	el := person()
	tests := []struct {
		field string
		want  string
	}{
		{"gid", "[ 42 ]"},
		{"id", "[ 42 ]"},
		{"label", "[ :Person ]"},
		{"name", "Ann"},
		{"missing", ""},
	}
	for _, tt := range tests {
		got := Resolve(el, Config{Caption: ParseCaption(tt.field)})
		if got.Text != tt.want {
			t.Errorf("caption %q: got %q, want %q", tt.field, got.Text, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	el := person()
	r := Resolve(el, Config{Caption: ByID()})

	if r.BackgroundColor != DefaultColor || r.BorderColor != DefaultColor {
		t.Errorf("expected %s fallbacks, got bg=%s border=%s", DefaultColor, r.BackgroundColor, r.BorderColor)
	}
	if r.FontColor != DefaultFontColor {
		t.Errorf("expected white text, got %s", r.FontColor)
	}
	if r.Width != 1 || r.Height != 1 {
		t.Errorf("expected default size 1, got %vx%v", r.Width, r.Height)
	}
}

func TestElementHints(t *testing.T) {
	el := person()
	el.Size = 55
	el.BackgroundColor = "#604A0E"
	el.FontColor = "#2A2C34"
	el.BorderColor = "not-a-colour"

	r := Resolve(el, Config{Caption: ByLabel()})
	if r.Width != 55 || r.TextMaxWidth != 55 {
		t.Errorf("expected size 55, got %v / %v", r.Width, r.TextMaxWidth)
	}
	if r.BackgroundColor != "#604A0E" {
		t.Errorf("unexpected background %s", r.BackgroundColor)
	}
	if r.FontColor != "#2A2C34" {
		t.Errorf("unexpected font colour %s", r.FontColor)
	}
	if r.BorderColor != DefaultColor {
		t.Errorf("invalid border colour should fall back, got %s", r.BorderColor)
	}
}

func TestEdgeStyle(t *testing.T) {
	e := &graph.Element{Kind: graph.KindEdge, ID: "e1", Label: "KNOWS", BackgroundColor: "#0171E3"}
	r := Resolve(e, Config{Caption: ByLabel()})
	if r.LineColor != "#0171E3" || r.ArrowColor != "#0171E3" {
		t.Errorf("edge line/arrow should follow background, got %s / %s", r.LineColor, r.ArrowColor)
	}
	if r.BackgroundColor != "" {
		t.Errorf("edges have no fill, got %s", r.BackgroundColor)
	}

	hl := Overlay(r, e, true, false)
	if hl.LineColor != HighlightColor {
		t.Errorf("expected highlight line colour, got %s", hl.LineColor)
	}
}

func TestOverlayNode(t *testing.T) {
	el := person()
	r := Resolve(el, Config{Caption: ByID()})

	if got := Overlay(r, el, false, false); got != r {
		t.Error("no overlay should leave the record unchanged")
	}
	sel := Overlay(r, el, false, true)
	if sel.BorderWidth != ActiveBorder || sel.BorderColor != HighlightColor {
		t.Errorf("selected node should get the active border, got %v %s", sel.BorderWidth, sel.BorderColor)
	}
}

func TestTrackerRecordsLastField(t *testing.T) {
	tr := NewTracker()
	el := person()

	tr.Observe(el, ByID())
	tr.Observe(el, ByProperty("name"))
	tr.Observe(el, ByProperty("missing"))

	got := tr.NodeCaptions()["Person"]
	if got != "name" {
		t.Errorf("expected last resolved field name, got %q", got)
	}
	if len(tr.EdgeCaptions()) != 0 {
		t.Error("edge captions should be untouched")
	}
}

func TestResolverUsesElementCaption(t *testing.T) {
	r := NewResolver()
	el := person()
	el.Caption = "gid"

	rec := r.Resolve(el)
	if rec.Text != "[ 42 ]" {
		t.Errorf("expected id caption, got %q", rec.Text)
	}
	nodes, edges := r.Tracker.Labels()
	if len(nodes) != 1 || nodes[0] != "Person" || len(edges) != 0 {
		t.Errorf("unexpected tracked labels %v / %v", nodes, edges)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Alexandria", 5); got != "Alex…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("Ann", 10); got != "Ann" {
		t.Errorf("short text should be unchanged, got %q", got)
	}
	if got := Truncate("Ann", 0); got != "" {
		t.Errorf("zero width should yield empty, got %q", got)
	}
}
