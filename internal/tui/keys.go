package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Fit       key.Binding
	Pick      key.Binding
	Focus     key.Binding
	Inspector key.Binding
	Help      key.Binding
	Quit      key.Binding

	// toolbar bindings, filled in by the dashboard
	controls []key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "cursor up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "cursor down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "cursor left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cursor right")),
		PanUp:     key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "pan up")),
		PanDown:   key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "pan down")),
		PanLeft:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "pan left")),
		PanRight:  key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "pan right")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit to data")),
		Pick:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select under cursor")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "map/inspector focus")),
		Inspector: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "show/hide inspector")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	out := append([]key.Binding(nil), k.controls...)
	return append(out, k.Pick, k.Help, k.Quit)
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Pick},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.Fit},
		append(append([]key.Binding(nil), k.controls...), k.Focus, k.Inspector),
		{k.Help, k.Quit},
	}
}
