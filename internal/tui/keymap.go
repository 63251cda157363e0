package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the reading view keybindings.
type keyMap struct {
	NextPage    key.Binding
	PrevPage    key.Binding
	NextWindow  key.Binding
	PrevWindow  key.Binding
	FirstWindow key.Binding
	LastWindow  key.Binding
	Goto        key.Binding
	TOC         key.Binding
	Help        key.Binding
	Dismiss     key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", " ", "pgdown", "n"),
			key.WithHelp("→/space", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup", "p"),
			key.WithHelp("←", "prev page"),
		),
		NextWindow: key.NewBinding(
			key.WithKeys("]", "J"),
			key.WithHelp("]", "next window"),
		),
		PrevWindow: key.NewBinding(
			key.WithKeys("[", "K"),
			key.WithHelp("[", "prev window"),
		),
		FirstWindow: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "start"),
		),
		LastWindow: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "end"),
		),
		Goto: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to"),
		),
		TOC: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "contents"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss notice"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Goto, k.TOC, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.NextWindow, k.PrevWindow},
		{k.FirstWindow, k.LastWindow, k.Goto, k.TOC},
		{k.Dismiss, k.Help, k.Quit},
	}
}
