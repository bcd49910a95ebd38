package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the tree list key bindings. The defaults follow vim-style
// navigation: j/k to move, h/l to collapse-or-parent / expand-or-child.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Toggle       key.Binding
	ExpandAll    key.Binding
	CollapseAll  key.Binding
	Parent       key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Toggle:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
		ExpandAll:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Parent:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "parent")),
		Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ExpandAll, k.CollapseAll, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.ExpandAll, k.CollapseAll, k.Parent},
		{k.Top, k.Bottom, k.HalfPageUp, k.HalfPageDown},
		{k.Help, k.Quit},
	}
}
