// Package render draws a static SVG snapshot of a canvas.
package render

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/style"
	"github.com/msalah0e/agviewer/internal/transform"
)

// View is the part of the canvas a snapshot reads.
type View interface {
	Snapshot() *graph.Elements
	Positions() map[string]layout.Point
	Style(id string) (style.Record, bool)
	Zoom() float64
	Pan() layout.Point
}

// Options controls the output.
type Options struct {
	Width, Height int
	Title         string
	// Legend is drawn in the bottom right corner when it has entries.
	Legend transform.Legend
}

const (
	background = "#1e1e28"
	textColor  = "#e6e6f0"
	fontFamily = "font-family:system-ui,sans-serif"
)

// SVGFile writes the snapshot to path.
func SVGFile(path string, v View, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := SVG(f, v, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SVG writes the snapshot of v to w using the view's zoom and pan.
func SVG(w io.Writer, v View, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("render: invalid size %dx%d", opts.Width, opts.Height)
	}
	els := v.Snapshot()
	pos := v.Positions()
	zoom, pan := v.Zoom(), v.Pan()
	screen := func(p layout.Point) (float64, float64) {
		return p.X*zoom + pan.X, p.Y*zoom + pan.Y
	}

	c := svg.New(w)
	c.Start(opts.Width, opts.Height)
	c.Rect(0, 0, opts.Width, opts.Height, "fill:"+background)

	if opts.Title != "" {
		c.Text(20, 28, opts.Title, fmt.Sprintf("fill:%s;font-size:16px;%s;font-weight:600", textColor, fontFamily))
	}

	radius := make(map[string]float64, len(els.Nodes))
	for _, n := range els.Nodes {
		if r, ok := v.Style(n.ID); ok {
			radius[n.ID] = r.Width / 2 * zoom
		}
	}

	c.Gid("edges")
	for _, e := range els.Edges {
		from, ok1 := pos[e.Source]
		to, ok2 := pos[e.Target]
		rec, ok3 := v.Style(e.ID)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		x1, y1 := screen(from)
		x2, y2 := screen(to)
		drawEdge(c, x1, y1, x2, y2, radius[e.Target], rec, e.HasClass(canvas.ClassGhost))
	}
	c.Gend()

	c.Gid("nodes")
	for _, n := range els.Nodes {
		p, ok := pos[n.ID]
		rec, ok2 := v.Style(n.ID)
		if !ok || !ok2 {
			continue
		}
		x, y := screen(p)
		drawNode(c, x, y, radius[n.ID], rec, zoom)
	}
	c.Gend()

	drawLegend(c, opts.Width, opts.Height, opts.Legend)
	c.End()
	return nil
}

func drawNode(c *svg.SVG, x, y, r float64, rec style.Record, zoom float64) {
	ix, iy := int(math.Round(x)), int(math.Round(y))
	c.Circle(ix, iy, int(math.Max(1, math.Round(r))), fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f",
		rec.BackgroundColor, rec.BorderColor, rec.BorderWidth*zoom))
	if rec.Text == "" {
		return
	}
	// Roughly 0.6em per cell.
	cells := int(rec.TextMaxWidth / (rec.FontSize * 0.6))
	c.Text(ix, iy, style.Truncate(rec.Text, cells), fmt.Sprintf(
		"fill:%s;font-size:%.1fpx;%s;text-anchor:middle;dominant-baseline:middle",
		rec.FontColor, rec.FontSize*zoom, fontFamily))
}

func drawEdge(c *svg.SVG, x1, y1, x2, y2, targetRadius float64, rec style.Record, ghost bool) {
	dash := ""
	if ghost {
		dash = ";stroke-dasharray:6,4"
	}
	d := fmt.Sprintf("M %.1f %.1f L %.1f %.1f", x1, y1, x2, y2)
	c.Path(d, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f%s", rec.LineColor, math.Max(1, rec.Width), dash))

	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	dx /= dist
	dy /= dist
	ax, ay := x2-dx*targetRadius, y2-dy*targetRadius
	const arrowLen, arrowWidth = 10.0, 5.0
	px, py := -dy, dx
	c.Polygon(
		[]int{int(ax), int(ax - dx*arrowLen + px*arrowWidth), int(ax - dx*arrowLen - px*arrowWidth)},
		[]int{int(ay), int(ay - dy*arrowLen + py*arrowWidth), int(ay - dy*arrowLen - py*arrowWidth)},
		"fill:"+rec.ArrowColor,
	)

	if rec.Text != "" {
		c.Text(int((x1+x2)/2), int((y1+y2)/2)-4, rec.Text, fmt.Sprintf(
			"fill:%s;font-size:%.1fpx;%s;text-anchor:middle", textColor, rec.FontSize, fontFamily))
	}
}

func drawLegend(c *svg.SVG, width, height int, l transform.Legend) {
	nodes, edges := l.Labels()
	n := len(nodes) + len(edges)
	if n == 0 {
		return
	}
	boxW, boxH := 180, 20+n*22
	x, y := width-boxW-20, height-boxH-20
	c.Roundrect(x, y, boxW, boxH, 10, 10, "fill:#2a2a38;fill-opacity:0.88")

	iy := y + 22
	for _, label := range nodes {
		e := l.NodeLegend[label]
		c.Circle(x+20, iy-4, 8, "fill:"+e.Color)
		c.Text(x+36, iy, label, fmt.Sprintf("fill:%s;font-size:11px;%s", textColor, fontFamily))
		iy += 22
	}
	for _, label := range edges {
		e := l.EdgeLegend[label]
		c.Line(x+12, iy-4, x+28, iy-4, fmt.Sprintf("stroke:%s;stroke-width:2", e.Color))
		c.Text(x+36, iy, label, fmt.Sprintf("fill:%s;font-size:11px;%s", textColor, fontFamily))
		iy += 22
	}
}
