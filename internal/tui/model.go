// Package tui is an interactive terminal front end for a viewer. Focus
// movement stands in for hovering, enter for clicking.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/creation"
	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/viewer"
)

type mode int

const (
	modeBrowse mode = iota
	modeCommand
	modeMenu
	modeDraw
	modeForm
)

const zoomStep = 1.25

// inboxMsg carries a completion that must run on the update goroutine.
type inboxMsg func()

type fetchedMsg struct {
	res *cypher.Result
	err error
}

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	v    *viewer.Viewer
	keys keyMap
	help help.Model

	input   textinput.Model
	mode    mode
	ids     []string
	focus   string
	menu    []canvas.Command
	menuIdx int
	status  string
	width   int
	height  int
}

// New creates a model for v. The engine is owned by the bubbletea update
// goroutine from here on.
func New(ctx context.Context, v *viewer.Viewer) *Model {
	in := textinput.New()
	in.CharLimit = 2000
	m := &Model{
		ctx:   ctx,
		v:     v,
		keys:  defaultKeys(),
		help:  help.New(),
		input: in,
	}
	m.refresh()
	return m
}

// Run starts the program in the alternate screen.
func Run(ctx context.Context, v *viewer.Viewer) error {
	_, err := tea.NewProgram(New(ctx, v), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init waits for the first background completion.
func (m *Model) Init() tea.Cmd {
	return m.waitInbox()
}

func (m *Model) waitInbox() tea.Cmd {
	inbox := m.v.Engine.Inbox()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case fn := <-inbox:
			return inboxMsg(fn)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) fetch(text string) tea.Cmd {
	ctx, v := m.ctx, m.v
	return func() tea.Msg {
		res, err := v.Fetch(ctx, text)
		return fetchedMsg{res: res, err: err}
	}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case inboxMsg:
		msg()
		cmd = m.waitInbox()
	case fetchedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if err := m.v.Load(msg.res); err != nil {
			m.status = err.Error()
		} else {
			st := m.v.Engine.Stats()
			m.status = fmt.Sprintf("%d nodes, %d edges", st.NodeCount, st.EdgeCount)
			m.focus = ""
		}
	case tea.KeyMsg:
		cmd = m.key(msg)
	}
	m.refresh()
	m.drainAlerts()
	return m, cmd
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeCommand:
		return m.commandKey(msg)
	case modeForm:
		return m.formKey(msg)
	case modeMenu:
		m.menuKey(msg)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.move(1)
	case key.Matches(msg, m.keys.Prev):
		m.move(-1)
	case key.Matches(msg, m.keys.Click):
		m.click()
	case key.Matches(msg, m.keys.Background):
		if m.mode == modeDraw {
			m.mode = modeBrowse
			m.status = "edge draw cancelled"
			return nil
		}
		m.report(m.v.Engine.BackgroundClick())
	case key.Matches(msg, m.keys.Menu):
		m.openMenu()
	case key.Matches(msg, m.keys.Expand):
		m.report(m.v.Expand(m.ctx, m.focus))
	case key.Matches(msg, m.keys.Hide):
		m.report(m.v.Engine.Hide(m.focus))
	case key.Matches(msg, m.keys.Reset):
		m.report(m.v.Engine.ResetPosition(m.focus))
	case key.Matches(msg, m.keys.Draw):
		m.beginDraw()
	case key.Matches(msg, m.keys.NewNode):
		m.v.Workflow.OpenNode()
		m.openForm()
	case key.Matches(msg, m.keys.Layout):
		m.nextLayout()
	case key.Matches(msg, m.keys.ZoomIn):
		m.v.Engine.SetZoom(m.v.Engine.Zoom() * zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.v.Engine.SetZoom(m.v.Engine.Zoom() / zoomStep)
	case key.Matches(msg, m.keys.Command):
		m.mode = modeCommand
		m.input.Prompt = ": "
		m.input.SetValue(m.v.Command.Command())
		return m.input.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// move shifts focus, which hovers the new element and unhovers the old one.
func (m *Model) move(delta int) {
	if len(m.ids) == 0 {
		return
	}
	i := indexOf(m.ids, m.focus)
	next := m.ids[(i+delta+len(m.ids))%len(m.ids)]
	if i < 0 {
		next = m.ids[0]
	}
	if m.focus != "" && m.v.Engine.Has(m.focus) {
		m.report(m.v.Engine.Unhover(m.focus))
	}
	m.focus = next
	m.report(m.v.Engine.Hover(next))
}

func (m *Model) click() {
	if m.focus == "" {
		return
	}
	if m.mode == modeDraw {
		from, _ := m.v.Engine.Drawing()
		m.mode = modeBrowse
		if _, err := m.v.Engine.CompleteEdgeDraw(from, m.focus); err != nil {
			m.report(err)
			return
		}
		if m.v.Workflow.Open() {
			m.openForm()
		}
		return
	}
	m.report(m.v.Engine.Click(m.focus))
}

func (m *Model) beginDraw() {
	if err := m.v.Engine.BeginEdgeDraw(m.focus); err != nil {
		m.report(err)
		return
	}
	m.mode = modeDraw
	m.status = "pick the target node and press enter"
}

func (m *Model) openMenu() {
	menu, err := m.v.Engine.ContextMenu()
	if err != nil {
		m.report(err)
		return
	}
	m.menu = menu.Available(m.focus)
	if len(m.menu) == 0 {
		m.status = "no commands for this element"
		return
	}
	m.menuIdx = 0
	m.mode = modeMenu
}

func (m *Model) menuKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.menuIdx = (m.menuIdx + 1) % len(m.menu)
	case key.Matches(msg, m.keys.Prev):
		m.menuIdx = (m.menuIdx - 1 + len(m.menu)) % len(m.menu)
	case key.Matches(msg, m.keys.Background):
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Click):
		m.mode = modeBrowse
		menu, err := m.v.Engine.ContextMenu()
		if err != nil {
			m.report(err)
			return
		}
		id := m.menu[m.menuIdx].ID
		if err := menu.Select(m.ctx, id, m.focus); err != nil {
			m.report(err)
			return
		}
		if id == canvas.CmdBeginEdgeDraw {
			m.mode = modeDraw
			m.status = "pick the target node and press enter"
		}
	}
}

func (m *Model) commandKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		m.v.Command.SetCommand(text)
		m.status = "running..."
		return m.fetch(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) openForm() {
	m.mode = modeForm
	m.input.Prompt = m.v.Workflow.Mode().String() + "> "
	m.input.Placeholder = "LABEL key=value ..."
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) formKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.v.Workflow.Cancel()
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "creation cancelled"
		return nil
	case tea.KeyEnter:
		fillForm(m.v.Workflow, m.input.Value())
		text, err := m.v.Workflow.Confirm()
		if err != nil {
			m.report(err)
			return nil
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "ready to run: " + text
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// fillForm parses "LABEL key=value ..." into the open form, replacing its
// label and properties.
func fillForm(w *creation.Workflow, line string) {
	fields := strings.Fields(line)
	for len(w.Properties()) > 0 {
		w.RemoveProperty(0)
	}
	w.SetLabel("")
	if len(fields) == 0 {
		return
	}
	w.SetLabel(fields[0])
	for _, f := range fields[1:] {
		k, v, _ := strings.Cut(f, "=")
		w.AddProperty(k, v)
	}
}

func (m *Model) nextLayout() {
	names := layout.Names()
	i := indexOf(names, m.v.Layout().Name)
	name := names[(i+1)%len(names)]
	if err := m.v.SetLayout(name); err != nil {
		m.report(err)
		return
	}
	m.status = "layout: " + name
}

// refresh rebuilds the focus order: nodes first, then edges, each by id.
func (m *Model) refresh() {
	els := m.v.Engine.Snapshot()
	var nodes, edges []string
	for _, n := range els.Nodes {
		nodes = append(nodes, n.ID)
	}
	for _, e := range els.Edges {
		if !e.HasClass(canvas.ClassGhost) {
			edges = append(edges, e.ID)
		}
	}
	sort.Strings(nodes)
	sort.Strings(edges)
	m.ids = append(nodes, edges...)
	if m.focus != "" && indexOf(m.ids, m.focus) < 0 {
		m.focus = ""
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) drainAlerts() {
	errs, notices := m.v.Alerts.Drain()
	if len(notices) > 0 {
		m.status = notices[len(notices)-1]
	}
	if len(errs) > 0 {
		m.status = errs[len(errs)-1].Error()
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
