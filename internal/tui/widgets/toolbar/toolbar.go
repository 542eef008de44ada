// Package toolbar renders the map toolbar and routes key presses and clicks to
// its controls.
package toolbar

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mapdash/internal/mapvm"
	"mapdash/internal/theme"
)

const gap = " "

// Toolbar is a row of controls bound to the MapVM in scope.
type Toolbar struct {
	controls []Control
}

// New lays out controls left to right.
func New(controls ...Control) *Toolbar {
	return &Toolbar{controls: controls}
}

func (t *Toolbar) Controls() []Control { return append([]Control(nil), t.controls...) }

// Bindings lists the controls' key bindings, for help views.
func (t *Toolbar) Bindings() []key.Binding {
	out := make([]key.Binding, 0, len(t.controls))
	for _, c := range t.controls {
		out = append(out, c.Key())
	}
	return out
}

// ThemeOf returns the theme of the MapVM bound to ctx, or theme.Fallback when
// the MapVM has none yet.
func ThemeOf(ctx context.Context) theme.Theme {
	if th, ok := mapvm.Use(ctx).GetTheme(); ok {
		return th
	}
	return theme.Fallback()
}

func buttonText(c Control) string {
	keys := c.Key().Help().Key
	if keys == "" {
		return c.Label()
	}
	return keys + " " + c.Label()
}

// View renders one button per control on a single line.
func (t *Toolbar) View(ctx context.Context) string {
	th := ThemeOf(ctx)
	style := th.Button()
	parts := make([]string, 0, len(t.controls))
	for _, c := range t.controls {
		parts = append(parts, style.Render(buttonText(c)))
	}
	return strings.Join(parts, gap)
}

// HandleKey activates the control bound to msg. It reports whether a control matched.
func (t *Toolbar) HandleKey(ctx context.Context, msg tea.KeyMsg) (tea.Cmd, bool) {
	for _, c := range t.controls {
		if key.Matches(msg, c.Key()) {
			return c.Activate(ctx), true
		}
	}
	return nil, false
}

// HandleClick activates the button under column x of the toolbar line.
func (t *Toolbar) HandleClick(ctx context.Context, x int) (tea.Cmd, bool) {
	if c, ok := t.ControlAt(ctx, x); ok {
		return c.Activate(ctx), true
	}
	return nil, false
}

// ControlAt hit-tests column x against the rendered buttons.
func (t *Toolbar) ControlAt(ctx context.Context, x int) (Control, bool) {
	style := ThemeOf(ctx).Button()
	start := 0
	for _, c := range t.controls {
		w := lipgloss.Width(style.Render(buttonText(c)))
		if x >= start && x < start+w {
			return c, true
		}
		start += w + lipgloss.Width(gap)
	}
	return nil, false
}
