package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/transform"
)

func rendered(t *testing.T) *canvas.Engine {
	t.Helper()
	eng := canvas.New(canvas.Options{Width: 800, Height: 600})
	t.Cleanup(eng.Unmount)
	els := &graph.Elements{
		Nodes: []*graph.Element{
			{ID: "1", Label: "Person", Caption: "name", Size: 55, BackgroundColor: "#4C8EDA",
				Properties: graph.Properties{}.Set("name", "A & B")},
			{ID: "2", Label: "Person", Size: 55, BackgroundColor: "#4C8EDA"},
		},
		Edges: []*graph.Element{
			{ID: "10", Label: "KNOWS", Source: "1", Target: "2", Size: 1, BackgroundColor: "#A5ABB6"},
		},
	}
	if err := eng.Render(els, layout.Lookup("grid")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return eng
}

func TestSVG(t *testing.T) {
	eng := rendered(t)

	var buf bytes.Buffer
	legend := transform.Legend{
		NodeLegend: map[string]transform.LegendEntry{"Person": {Color: "#4C8EDA", Size: 55, Caption: "name"}},
		EdgeLegend: map[string]transform.LegendEntry{"KNOWS": {Color: "#A5ABB6", Size: 1, Caption: "gid"}},
	}
	if err := SVG(&buf, eng, Options{Width: 800, Height: 600, Title: "demo", Legend: legend}); err != nil {
		t.Fatalf("SVG failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatal("output is not a complete svg document")
	}
	// Two nodes plus one legend swatch.
	if got := strings.Count(out, "<circle"); got != 3 {
		t.Errorf("expected 3 circles, got %d", got)
	}
	if !strings.Contains(out, "A &amp; B") {
		t.Error("captions should be escaped")
	}
	if !strings.Contains(out, "#4C8EDA") {
		t.Error("node colour missing")
	}
}

func TestSVGMarksProvisionalEdges(t *testing.T) {
	eng := rendered(t)
	if _, err := eng.CompleteEdgeDraw("2", "1"); err != nil {
		t.Fatalf("CompleteEdgeDraw failed: %v", err)
	}

	var buf bytes.Buffer
	if err := SVG(&buf, eng, Options{Width: 800, Height: 600}); err != nil {
		t.Fatalf("SVG failed: %v", err)
	}
	if !strings.Contains(buf.String(), "stroke-dasharray") {
		t.Error("provisional edge should be dashed")
	}
}

func TestSVGInvalidSize(t *testing.T) {
	if err := SVG(&bytes.Buffer{}, rendered(t), Options{}); err == nil {
		t.Error("expected an error for a zero size")
	}
}

func TestSVGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	if err := SVGFile(path, rendered(t), Options{Width: 400, Height: 300}); err != nil {
		t.Fatalf("SVGFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("file does not hold an svg document")
	}
}

func TestSVGFileReportsRenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	if err := SVGFile(path, rendered(t), Options{}); err == nil {
		t.Error("expected the render error to surface")
	}
	if err := SVGFile(filepath.Join(t.TempDir(), "missing", "graph.svg"), rendered(t), Options{Width: 10, Height: 10}); err == nil {
		t.Error("expected an error for an unwritable path")
	}
}
