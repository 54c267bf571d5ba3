package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the widget shortcuts
type KeyMap struct {
	PlayPause key.Binding
	Record    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns the one-line help
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Record, k.Help, k.Quit}
}

// FullHelp returns the expanded help
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Record},
		{k.Help, k.Quit},
	}
}

var DefaultKeyMap = KeyMap{
	PlayPause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space/p", "play/pause"),
	),
	Record: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "record/stop"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
}
