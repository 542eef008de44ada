package state

// Focus is the pane receiving navigation keys.
type Focus int

const (
	MapFocus Focus = iota
	InspectorFocus
)

// UIState holds cross-widget UI state for the dashboard shell.
type UIState struct {
	// Window
	Width  int
	Height int

	// Panes
	Focus          Focus
	ShowInspector  bool
	InspectorWidth int // default 36 at runtime if zero
	MinMapWidth    int // inspector is hidden below MinMapWidth+InspectorWidth
	ShowHelp       bool

	// Map cursor, in map surface cells
	CursorCol int
	CursorRow int

	// Notices and ephemeral messages
	Notice string
}

// Fixed rows around the map surface: toolbar, map border (2), status line, help line.
const ChromeRows = 5
