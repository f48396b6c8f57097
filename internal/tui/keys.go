package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Click      key.Binding
	Background key.Binding
	Menu       key.Binding
	Expand     key.Binding
	Hide       key.Binding
	Reset      key.Binding
	Draw       key.Binding
	NewNode    key.Binding
	Layout     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Command    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("j", "down", "tab"), key.WithHelp("j/↓", "next")),
		Prev:       key.NewBinding(key.WithKeys("k", "up", "shift+tab"), key.WithHelp("k/↑", "prev")),
		Click:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click")),
		Background: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Menu:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Expand:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "expand")),
		Hide:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset position")),
		Draw:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "draw edge")),
		NewNode:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new node")),
		Layout:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next layout")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Command:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "query")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Click, k.Menu, k.Expand, k.Command, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Click, k.Background},
		{k.Menu, k.Expand, k.Hide, k.Reset},
		{k.Draw, k.NewNode, k.Layout, k.ZoomIn, k.ZoomOut},
		{k.Command, k.Help, k.Quit},
	}
}
