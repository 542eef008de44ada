package statusbar

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mapdash/internal/theme"
	"mapdash/internal/tui/state"
)

// Info is the map data shown on the status line.
type Info struct {
	Layers     int
	Features   int
	Selected   int
	Resolution float64
	Frames     int
	Width      int // map surface, 0 until laid out
	Height     int
}

type StatusBar struct {
	snack Snackbar
}

func NewStatusBar() *StatusBar { return &StatusBar{} }

// Snack exposes the transient message slot.
func (b *StatusBar) Snack() *Snackbar { return &b.snack }

// View composes a concise status line reflecting map and UI state. An active
// snackbar message replaces the notice slot.
func (b *StatusBar) View(s state.UIState, info Info, th theme.Theme) string {
	focus := "[MAP]"
	if s.Focus == state.InspectorFocus {
		focus = "[INSPECTOR]"
	}
	layers := fmt.Sprintf("Layers: %d", info.Layers)
	feats := fmt.Sprintf("Features: %d", info.Features)
	sel := fmt.Sprintf("Selected: %d", info.Selected)
	pos := fmt.Sprintf("Cur:%d,%d", s.CursorCol, s.CursorRow)
	res := fmt.Sprintf("Res:%.4g", info.Resolution)
	size := "Size: -"
	if info.Width > 0 && info.Height > 0 {
		size = fmt.Sprintf("Size: %dx%d", info.Width, info.Height)
	}
	frames := fmt.Sprintf("F:%d", info.Frames)

	parts := []string{focus, layers, feats, sel, pos, res, size, frames}
	if msg, warn, ok := b.snack.Current(); ok {
		parts = append(parts, th.Notice(warn).Render(msg))
	} else if s.Notice != "" {
		parts = append(parts, th.Faint().Render(s.Notice))
	}
	return strings.Join(parts, "  ")
}

// DefaultTTL is how long a snackbar message stays up.
const DefaultTTL = 4 * time.Second

// Snackbar holds one transient message. A newer message replaces the older one;
// each message expires on its own tick.
type Snackbar struct {
	id   int
	msg  string
	warn bool
	up   bool
}

// ExpireMsg hides the message with the same id, if it is still showing.
type ExpireMsg struct{ ID int }

// Show displays msg and returns the command that expires it after ttl.
func (s *Snackbar) Show(msg string, warn bool, ttl time.Duration) tea.Cmd {
	s.id++
	s.msg, s.warn, s.up = msg, warn, true
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id := s.id
	return tea.Tick(ttl, func(time.Time) tea.Msg { return ExpireMsg{ID: id} })
}

// Update hides the message when its expiry arrives. Stale expiries are ignored.
func (s *Snackbar) Update(msg ExpireMsg) {
	if msg.ID == s.id {
		s.up = false
	}
}

func (s *Snackbar) Current() (msg string, warn, ok bool) {
	return s.msg, s.warn, s.up
}
