package statusbar

import (
	"strings"
	"testing"

	"mapdash/internal/theme"
	"mapdash/internal/tui/state"
)

func TestViewShowsCounts(t *testing.T) {
	b := NewStatusBar()
	out := b.View(state.UIState{Notice: "hello"}, Info{Layers: 2, Features: 7, Selected: 1, Resolution: 0.5, Frames: 3, Width: 40, Height: 10}, theme.Fallback())
	for _, want := range []string{"[MAP]", "Layers: 2", "Features: 7", "Selected: 1", "Size: 40x10", "F:3", "hello"} {
		if !strings.Contains(out, want) { t.Fatalf("missing %q in %q", want, out) }
	}
}

func TestSnackbarReplacesNoticeUntilExpired(t *testing.T) {
	b := NewStatusBar()
	s := state.UIState{Notice: "notice"}
	cmd := b.Snack().Show("load failed", true, 0)
	if cmd == nil { t.Fatalf("expected expiry command") }
	out := b.View(s, Info{}, theme.Fallback())
	if !strings.Contains(out, "load failed") || strings.Contains(out, "notice") {
		t.Fatalf("snackbar should replace notice: %q", out)
	}
	b.Snack().Update(ExpireMsg{ID: 1})
	if _, _, ok := b.Snack().Current(); ok { t.Fatalf("expected message to expire") }
}

func TestSnackbarIgnoresStaleExpiry(t *testing.T) {
	var s Snackbar
	s.Show("first", false, 0)
	s.Show("second", false, 0)
	s.Update(ExpireMsg{ID: 1})
	msg, _, ok := s.Current()
	if !ok || msg != "second" { t.Fatalf("stale expiry hid newer message: %q %v", msg, ok) }
}
