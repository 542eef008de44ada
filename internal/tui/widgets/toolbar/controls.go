package toolbar

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mapdash/internal/engine"
	"mapdash/internal/mapvm"
	"mapdash/internal/tui/widgets/featureview"
)

// Control turns one user activation into one MapVM operation. Controls keep no
// MapVM of their own: they look it up from ctx on every render and activation.
type Control interface {
	Label() string
	Key() key.Binding
	Activate(ctx context.Context) tea.Cmd
}

// ClearSelection empties the map selection.
type ClearSelection struct{}

func (ClearSelection) Label() string { return "Clear" }

func (ClearSelection) Key() key.Binding {
	return key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection"))
}

func (ClearSelection) Activate(ctx context.Context) tea.Cmd {
	mapvm.Use(ctx).GetSelectionLayer().ClearSelection()
	return nil
}

// RefreshMap reconciles the engine with its container, then asks the MapVM
// for a logical refresh. The order is fixed: redraw, reapply the reported size,
// re-measure, refresh. Data reloaded by the refresh then sees the right viewport.
type RefreshMap struct{}

func (RefreshMap) Label() string { return "Refresh" }

func (RefreshMap) Key() key.Binding {
	return key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh map"))
}

func (RefreshMap) Activate(ctx context.Context) tea.Cmd {
	vm := mapvm.Use(ctx)
	m := vm.GetMap()
	if m != nil {
		m.Render()
	}
	if m != nil {
		if size, ok := m.GetSize(); ok {
			m.SetSize(size)
		}
	}
	if m != nil {
		m.UpdateSize()
	}
	vm.RefreshMap()
	return nil
}

// Inspect shows the most recently selected feature in the feature viewer.
type Inspect struct {
	Viewer *featureview.Viewer
}

type featureSelection interface {
	Last() (*engine.Feature, bool)
}

func (Inspect) Label() string { return "Inspect" }

func (Inspect) Key() key.Binding {
	return key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inspect selection"))
}

func (c Inspect) Activate(ctx context.Context) tea.Cmd {
	sel, ok := mapvm.Use(ctx).GetSelectionLayer().(featureSelection)
	if !ok {
		c.Viewer.Inspect(nil)
		return nil
	}
	if f, ok := sel.Last(); ok {
		c.Viewer.Inspect(f)
	} else {
		c.Viewer.Inspect(nil)
	}
	return nil
}

// CopyFeature hands the inspected feature's projection to the host's copy
// action. Copy receives nil when nothing is inspected.
type CopyFeature struct {
	Viewer *featureview.Viewer
	Copy   func(props map[string]any) tea.Cmd
}

func (CopyFeature) Label() string { return "Copy" }

func (CopyFeature) Key() key.Binding {
	return key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy properties"))
}

func (c CopyFeature) Activate(ctx context.Context) tea.Cmd {
	mapvm.Use(ctx) // only valid inside a map view
	if c.Copy == nil {
		return nil
	}
	return c.Copy(c.Viewer.Current())
}

// Logout ends the session through the host's hook.
type Logout struct {
	OnLogout func() tea.Cmd
}

func (Logout) Label() string { return "Logout" }

func (Logout) Key() key.Binding {
	return key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out"))
}

func (c Logout) Activate(ctx context.Context) tea.Cmd {
	mapvm.Use(ctx)
	if c.OnLogout == nil {
		return tea.Quit
	}
	return c.OnLogout()
}
