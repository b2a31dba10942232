package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the control panel key bindings.
type KeyMap struct {
	AddHeart    key.Binding
	RemoveHeart key.Binding
	ToggleAudio key.Binding
	Reset       key.Binding
	History     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddHeart, k.RemoveHeart, k.ToggleAudio, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.AddHeart, k.RemoveHeart, k.ToggleAudio},
		{k.Reset, k.History},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings. Left adds and right removes,
// like tapping the pet's left and right ear.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		AddHeart: key.NewBinding(
			key.WithKeys("left", "a", "+"),
			key.WithHelp("←/a", "add heart"),
		),
		RemoveHeart: key.NewBinding(
			key.WithKeys("right", "d", "-"),
			key.WithHelp("→/d", "remove heart"),
		),
		ToggleAudio: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "earmuffs"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		History: key.NewBinding(
			key.WithKeys("h", "tab"),
			key.WithHelp("h", "history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
