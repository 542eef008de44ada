// Package featureview shows the attributes of an inspected map feature.
//
// It is a debugging aid: properties are displayed as they come, with no schema
// assumed, and the geometry is always left out.
package featureview

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"mapdash/internal/engine"
)

// GeometryKey is the reserved property key excluded from the projection.
const GeometryKey = engine.GeometryKey

// PropertyBag is anything exposing its full attribute map.
type PropertyBag interface {
	Properties() map[string]any
}

// Display receives the projected properties. kvtable.Model implements it.
type Display interface {
	SetRows(props map[string]any)
	View() string
}

// Project copies f's properties without the geometry. Values are not touched.
func Project(f PropertyBag) map[string]any {
	if f == nil {
		return nil
	}
	props := f.Properties()
	out := make(map[string]any, len(props))
	for k, v := range props {
		if k == GeometryKey {
			continue
		}
		out[k] = v
	}
	return out
}

type identified interface {
	Key() string
}

// Viewer projects the inspected feature into a Display on every Inspect call.
type Viewer struct {
	display Display

	key     string
	current map[string]any
	// previous projection of the same feature, kept to show what a refresh changed
	previous map[string]any
}

// New returns a Viewer writing into d.
func New(d Display) *Viewer { return &Viewer{display: d} }

// Inspect shows f. A nil f clears the display.
func (v *Viewer) Inspect(f PropertyBag) {
	if f == nil {
		v.key, v.current, v.previous = "", nil, nil
		v.display.SetRows(nil)
		return
	}
	key := ""
	if id, ok := f.(identified); ok {
		key = id.Key()
	}
	proj := Project(f)
	if key != "" && key == v.key {
		v.previous = v.current
	} else {
		v.previous = nil
	}
	v.key, v.current = key, proj
	v.display.SetRows(proj)
}

// Current returns the projection on display.
func (v *Viewer) Current() map[string]any { return v.current }

// Key returns the identity of the inspected feature, empty when unknown.
func (v *Viewer) Key() string { return v.key }

// Changes renders what changed between the last two inspections of the same feature.
func (v *Viewer) Changes() string {
	if v.previous == nil || v.current == nil {
		return ""
	}
	return renderDiff(v.previous, v.current)
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func (v *Viewer) View(width int) string {
	title := "Feature"
	if v.key != "" {
		title = fmt.Sprintf("Feature %s", v.key)
	}
	out := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), v.display.View())
	if ch := v.Changes(); ch != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, "", titleStyle.Render("Changed since last refresh"), ch)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(out)
}
