package state

const defaultInspectorWidth = 36

func inspectorWidth(s UIState) int {
	if s.InspectorWidth > 0 {
		return s.InspectorWidth
	}
	return defaultInspectorWidth
}

// ToggleInspector shows or hides the feature inspector pane.
func ToggleInspector(s UIState) UIState {
	s.ShowInspector = !s.ShowInspector
	if !s.ShowInspector && s.Focus == InspectorFocus {
		s.Focus = MapFocus
	}
	return fitPanes(s)
}

// ToggleHelp switches between the short and the full key help.
func ToggleHelp(s UIState) UIState {
	s.ShowHelp = !s.ShowHelp
	return s
}

// ToggleFocus moves focus between map and inspector and sets a brief notice.
func ToggleFocus(s UIState) UIState {
	if s.Focus == MapFocus && s.ShowInspector {
		s.Focus = InspectorFocus
		s.Notice = "[INSPECTOR]"
	} else {
		s.Focus = MapFocus
		s.Notice = "[MAP]"
	}
	return s
}

// Resize updates the window size, hides the inspector when the map would get
// narrower than MinMapWidth, and keeps the cursor on the surface.
func Resize(s UIState, width, height int) UIState {
	s.Width = width
	s.Height = height
	s = fitPanes(s)
	return ClampCursor(s)
}

func fitPanes(s UIState) UIState {
	if s.ShowInspector && s.Width > 0 && s.Width < s.MinMapWidth+inspectorWidth(s) {
		s.ShowInspector = false
		if s.Focus == InspectorFocus {
			s.Focus = MapFocus
		}
		s.Notice = "Narrow width: inspector hidden"
	}
	return s
}

// MapArea returns the map surface size in cells, inside its border. ok is false
// until the window has been measured or when nothing fits.
func MapArea(s UIState) (width, height int, ok bool) {
	width = s.Width - 2
	if s.ShowInspector {
		width -= inspectorWidth(s)
	}
	height = s.Height - ChromeRows
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// InspectorArea returns the inspector pane width.
func InspectorArea(s UIState) int {
	if !s.ShowInspector {
		return 0
	}
	return inspectorWidth(s)
}

// MoveCursor shifts the map cursor, clamped to the surface.
func MoveCursor(s UIState, dCol, dRow int) UIState {
	s.CursorCol += dCol
	s.CursorRow += dRow
	return ClampCursor(s)
}

// ClampCursor keeps the cursor inside the map surface.
func ClampCursor(s UIState) UIState {
	w, h, ok := MapArea(s)
	if !ok {
		s.CursorCol, s.CursorRow = 0, 0
		return s
	}
	if s.CursorCol < 0 {
		s.CursorCol = 0
	}
	if s.CursorRow < 0 {
		s.CursorRow = 0
	}
	if s.CursorCol >= w {
		s.CursorCol = w - 1
	}
	if s.CursorRow >= h {
		s.CursorRow = h - 1
	}
	return s
}

// CenterCursor puts the cursor in the middle of the surface.
func CenterCursor(s UIState) UIState {
	w, h, ok := MapArea(s)
	if !ok {
		return s
	}
	s.CursorCol, s.CursorRow = w/2, h/2
	return s
}
