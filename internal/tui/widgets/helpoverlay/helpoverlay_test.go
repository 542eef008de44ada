package helpoverlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"

	"mapdash/internal/tui/state"
)

func TestViewListsSections(t *testing.T) {
	zoom := key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "zoom in"))
	off := key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy"), key.WithDisabled())
	h := NewHelpOverlay(Section{Title: "Map", Bindings: []key.Binding{zoom, off}})
	out := h.View(state.UIState{Focus: state.InspectorFocus})
	if !strings.Contains(out, "Focus: Inspector") { t.Fatalf("missing focus: %q", out) }
	if !strings.Contains(out, "Map:") || !strings.Contains(out, "+: zoom in") { t.Fatalf("missing binding: %q", out) }
	if strings.Contains(out, "copy") { t.Fatalf("disabled binding shown: %q", out) }
}
