package board

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	left        key.Binding
	right       key.Binding
	up          key.Binding
	down        key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	columnLeft  key.Binding
	columnRight key.Binding
	create      key.Binding
	rename      key.Binding
	edit        key.Binding
	toggle      key.Binding
	remove      key.Binding
	undo        key.Binding
	open        key.Binding
	copy        key.Binding
	refresh     key.Binding
	help        key.Binding
	quit        key.Binding

	submit key.Binding
	cancel key.Binding
	next   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		moveLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move card left"),
		),
		moveRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move card right"),
		),
		columnLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "column left"),
		),
		columnRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "column right"),
		),
		create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new card"),
		),
		rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit property"),
		),
		toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "toggle checkbox"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo delete"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next property"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.moveLeft, k.moveRight, k.create, k.remove, k.undo, k.open, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.up, k.down},
		{k.moveLeft, k.moveRight, k.columnLeft, k.columnRight},
		{k.create, k.rename, k.edit, k.toggle},
		{k.remove, k.undo, k.open, k.copy},
		{k.refresh, k.help, k.quit},
	}
}

// inputHelp is shown while an inline input is focused.
type inputHelp struct {
	keys    keyMap
	editing bool
}

func (h inputHelp) ShortHelp() []key.Binding {
	if h.editing {
		return []key.Binding{h.keys.submit, h.keys.next, h.keys.cancel}
	}
	return []key.Binding{h.keys.submit, h.keys.cancel}
}

func (h inputHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
