package cmd

import (
	"fmt"

	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/style"
	"github.com/msalah0e/agviewer/internal/ui"
	"github.com/msalah0e/agviewer/internal/viewer"
)

const tableCaptionCells = 28

// printGraph prints the element table and legend of v.
func printGraph(v *viewer.Viewer) {
	eng := v.Engine
	st := eng.Stats()
	fmt.Printf("  %s  %d nodes · %d edges · layout %s · zoom %.2f\n\n",
		ui.Brand.Sprint("graph"), st.NodeCount, st.EdgeCount, v.Layout().Name, eng.Zoom())
	if st.NodeCount == 0 && st.EdgeCount == 0 {
		fmt.Println("  No graph elements in the result.")
		return
	}

	var rows [][]string
	for _, el := range eng.Snapshot().Nodes {
		rows = append(rows, elementRow(v, el))
	}
	for _, el := range eng.Snapshot().Edges {
		rows = append(rows, elementRow(v, el))
	}
	ui.Table([]string{"", "ID", "KIND", "LABEL", "CAPTION", "WHERE"}, rows)
	fmt.Println()
	printLegend(v)
}

func elementRow(v *viewer.Viewer, el *graph.Element) []string {
	rec, _ := v.Engine.Style(el.ID)
	swatch, where := rec.BackgroundColor, ""
	if el.IsEdge() {
		swatch = rec.LineColor
		where = el.Source + " → " + el.Target
	} else if p, ok := v.Engine.Position(el.ID); ok {
		where = fmt.Sprintf("%.0f, %.0f", p.X, p.Y)
	}
	return []string{ui.Swatch(swatch), el.ID, el.Kind.String(), el.Label, style.Truncate(rec.Text, tableCaptionCells), where}
}

func printLegend(v *viewer.Viewer) {
	l := v.Legend.Legend()
	nodes, edges := l.Labels()
	var rows [][]string
	for _, label := range nodes {
		e := l.NodeLegend[label]
		rows = append(rows, []string{ui.Swatch(e.Color), "node", label, e.Caption})
	}
	for _, label := range edges {
		e := l.EdgeLegend[label]
		rows = append(rows, []string{ui.Swatch(e.Color), "edge", label, e.Caption})
	}
	ui.Table([]string{"", "KIND", "LABEL", "CAPTION"}, rows)
}
