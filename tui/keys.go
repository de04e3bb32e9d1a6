package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Fields   key.Binding
	Commit   key.Binding
	Back     key.Binding
	Scheme   key.Binding
	MoreIter key.Binding
	LessIter key.Binding
	Preset   key.Binding
	Copy     key.Binding
	Snapshot key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var DefaultKeyMap = KeyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Fields: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "edit coordinates"),
	),
	Commit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "go"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "stop editing"),
	),
	Scheme: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "colours"),
	),
	MoreIter: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "more iterations"),
	),
	LessIter: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "fewer iterations"),
	),
	Preset: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "next preset"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy location"),
	),
	Snapshot: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save png"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fields, k.Scheme, k.Preset, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.ZoomIn, k.ZoomOut},
		{k.Fields, k.Commit, k.Back, k.Preset},
		{k.Scheme, k.MoreIter, k.LessIter},
		{k.Copy, k.Snapshot, k.Help, k.Quit},
	}
}
