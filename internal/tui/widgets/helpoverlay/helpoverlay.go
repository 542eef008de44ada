package helpoverlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"mapdash/internal/tui/state"
)

// Section groups related bindings under a title.
type Section struct {
	Title    string
	Bindings []key.Binding
}

type HelpOverlay struct {
	sections []Section
}

func NewHelpOverlay(sections ...Section) HelpOverlay { return HelpOverlay{sections: sections} }

// View returns grouped keys help with the focused pane indicated. Disabled
// bindings are left out.
func (h HelpOverlay) View(s state.UIState) string {
	focus := "Map"
	if s.Focus == state.InspectorFocus {
		focus = "Inspector"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Help (Focus: %s)\n", focus)
	for _, sec := range h.sections {
		fmt.Fprintf(&b, "\n%s:\n", sec.Title)
		for _, k := range sec.Bindings {
			if !k.Enabled() {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s\n", k.Help().Key, k.Help().Desc)
		}
	}
	return b.String()
}
