package app

import "github.com/charmbracelet/bubbles/key"

// listKeys holds key bindings for the contact list.
type listKeys struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns the list bindings for the help bar.
func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Refresh, k.Quit}
}

// FullHelp returns the list bindings grouped for expanded help.
func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Add, k.Edit, k.Delete},
		{k.Refresh, k.Quit},
	}
}

// pendingKeys holds key bindings for a view waiting on, or failing, a fetch.
type pendingKeys struct {
	Retry key.Binding
	Back  key.Binding
}

// ShortHelp returns the pending-state bindings for the help bar.
func (k pendingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Back}
}

// FullHelp returns the pending-state bindings grouped for expanded help.
func (k pendingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Retry, k.Back}}
}

// ListKeyMap returns the key bindings for the contact list.
func ListKeyMap() listKeys {
	return listKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PendingKeyMap returns the key bindings for the edit view before its
// contact has loaded.
func PendingKeyMap() pendingKeys {
	return pendingKeys{
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to list"),
		),
	}
}
