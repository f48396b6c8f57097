package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/style"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C990C0"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusStyle  = lipgloss.NewStyle().Reverse(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC454"))
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#57C7E3")).Padding(0, 1)
)

const captionCells = 24

// View renders the element list, the inspector and the status line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	list := m.list()
	side := m.inspector()
	if m.mode == modeMenu {
		side = lipgloss.JoinVertical(lipgloss.Left, m.menuView(), side)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", side))
	b.WriteString("\n\n")

	switch m.mode {
	case modeCommand, modeForm:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.mode == modeForm {
			for _, fe := range m.v.Workflow.Errors {
				b.WriteString(statusStyle.Render(fmt.Sprintf("  %s: %s", fe.Field, fe.Message)))
				b.WriteString("\n")
			}
		}
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) header() string {
	eng := m.v.Engine
	st := eng.Stats()
	info := fmt.Sprintf("%s · zoom %.2f · %d nodes · %d edges", m.v.Layout().Name, eng.Zoom(), st.NodeCount, st.EdgeCount)
	if from, ok := eng.Drawing(); ok {
		info += " · drawing from " + from
	}
	if n := eng.Pending(); n > 0 {
		info += fmt.Sprintf(" · %d expanding", n)
	}
	return titleStyle.Render("agv") + " " + subtleStyle.Render(info)
}

func (m *Model) list() string {
	if len(m.ids) == 0 {
		return subtleStyle.Render("no elements; press : to run a query")
	}
	rows := make([]string, 0, len(m.ids))
	for _, id := range m.ids {
		rows = append(rows, m.row(id))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) row(id string) string {
	eng := m.v.Engine
	el, ok := eng.Get(id)
	if !ok {
		return ""
	}
	rec, _ := eng.Style(id)

	mark := " "
	switch {
	case eng.IsSelected(id):
		mark = "●"
	case eng.IsHighlighted(id):
		mark = "○"
	}
	swatch := rec.BackgroundColor
	glyph := "■"
	if el.IsEdge() {
		swatch = rec.LineColor
		glyph = "─"
	}
	text := style.Truncate(rec.Text, captionCells)
	line := fmt.Sprintf("%s %s %-*s %s", mark,
		lipgloss.NewStyle().Foreground(lipgloss.Color(swatch)).Render(glyph),
		captionCells, text, subtleStyle.Render(":"+el.Label+" "+id))
	if p, ok := eng.Position(id); ok {
		line += subtleStyle.Render(fmt.Sprintf(" (%.0f, %.0f)", p.X, p.Y))
	}
	if id == m.focus {
		return focusStyle.Render(line)
	}
	return line
}

func (m *Model) inspector() string {
	s := m.v.Inspector.Last()
	var body string
	if el, ok := s.Element(); ok {
		body = describe(el)
	} else if st, ok := s.Stats(); ok {
		body = fmt.Sprintf("%d nodes\n%d edges", st.NodeCount, st.EdgeCount)
	} else {
		body = subtleStyle.Render("nothing hovered")
	}
	legend := m.legend()
	if legend != "" {
		body += "\n\n" + legend
	}
	return panelStyle.Render(body)
}

func describe(el *graph.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(":"+el.Label), el.ID)
	if el.IsEdge() {
		fmt.Fprintf(&b, "%s → %s\n", el.Source, el.Target)
	}
	for _, p := range el.Properties {
		fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render(p.Key+":"), graph.FormatValue(p.Value))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) legend() string {
	l := m.v.Legend.Legend()
	nodes, edges := l.Labels()
	var lines []string
	for _, label := range nodes {
		e := l.NodeLegend[label]
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")+" "+label)
	}
	for _, label := range edges {
		e := l.EdgeLegend[label]
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("─")+" "+label)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) menuView() string {
	lines := make([]string, len(m.menu))
	for i, c := range m.menu {
		line := fmt.Sprintf("%s  %s", c.ID, subtleStyle.Render(canvas.Icons[c.ID]))
		if i == m.menuIdx {
			line = focusStyle.Render(line)
		}
		lines[i] = line
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}
