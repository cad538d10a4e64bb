package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	login    key.Binding
	refresh  key.Binding
	generate key.Binding
	prev     key.Binding
	next     key.Binding
	focus    key.Binding
	settings key.Binding
	logout   key.Binding
	submit   key.Binding
	back     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		login:    key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "connect spotify")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "weave story")),
		prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "genre")),
		next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "genre")),
		focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tracks/story")),
		settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		logout:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "logout")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.generate, k.refresh, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.focus},
		{k.prev, k.next, k.generate},
		{k.refresh, k.settings, k.logout, k.quit},
	}
}
