package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send             key.Binding
	Tab              key.Binding
	PrevModel        key.Binding
	NextModel        key.Binding
	Transport        key.Binding
	Connect          key.Binding
	Clear            key.Binding
	ToggleExecutions key.Binding
	PageUp           key.Binding
	PageDown         key.Binding
	Quit             key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send/connect"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "chat/endpoint"),
		),
		PrevModel: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("^p", "prev model"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("^n", "next model"),
		),
		Transport: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("^t", "transport"),
		),
		Connect: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^o", "connect"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^l", "clear chat"),
		),
		ToggleExecutions: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("^e", "tool executions"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Tab, k.NextModel, k.Transport, k.Connect, k.Clear, k.ToggleExecutions, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Tab, k.PageUp, k.PageDown},
		{k.PrevModel, k.NextModel, k.Transport, k.Connect},
		{k.Clear, k.ToggleExecutions, k.Quit},
	}
}
