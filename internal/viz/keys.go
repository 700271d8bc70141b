package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Pause  key.Binding
	Feed   key.Binding
	Record key.Binding
	Panel  key.Binding
	Theme  key.Binding
	Help   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Pause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause frames")),
		Feed:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause metrics")),
		Record: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
		Panel:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "toggle panel")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Record, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Feed, k.Record},
		{k.Panel, k.Theme, k.Help, k.Quit},
	}
}
