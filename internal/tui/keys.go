package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Enter    key.Binding
	Back     key.Binding
	Library  key.Binding
	Search   key.Binding

	// Playback
	PlayPause   key.Binding
	Stop        key.Binding
	Next        key.Binding
	Previous    key.Binding
	SeekForward key.Binding
	SeekBack    key.Binding

	// Collection
	SaveTrack    key.Binding
	SaveAlbum    key.Binding
	SavePlaylist key.Binding
	Rescan       key.Binding
	RescanAll    key.Binding

	Help key.Binding
	Quit key.Binding

	// Text input
	Submit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play/open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "esc", "h"),
			key.WithHelp("h/esc", "back"),
		),
		Library: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "library"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),

		// Playback
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next track"),
		),
		Previous: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous track"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek +10s"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek -10s"),
		),

		// Collection
		SaveTrack: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save track"),
		),
		SaveAlbum: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "save album"),
		),
		SavePlaylist: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "save queue as playlist"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		RescanAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rescan all"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

// HelpBindings lists the bindings shown in the help overlay, in display order
func (k KeyMap) HelpBindings() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End, k.Enter, k.Back, k.Library, k.Search},
		{k.PlayPause, k.Stop, k.Next, k.Previous, k.SeekForward, k.SeekBack},
		{k.SaveTrack, k.SaveAlbum, k.SavePlaylist, k.Rescan, k.RescanAll, k.Help, k.Quit},
	}
}
