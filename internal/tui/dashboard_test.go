package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapdash/internal/clip"
	"mapdash/internal/engine"
	"mapdash/internal/mapvm"
	"mapdash/internal/tui/state"
	"mapdash/internal/tui/widgets/statusbar"
)

// versionedSource returns a fresh collection on every load, with a status
// property that changes from one load to the next.
type versionedSource struct {
	loads *int
	fail  bool
}

func (s versionedSource) Load(ctx context.Context) (*geojson.FeatureCollection, error) {
	*s.loads++
	if s.fail {
		return nil, errors.New("connection refused")
	}
	fc := geojson.NewFeatureCollection()
	for i, p := range []orb.Point{{0, 0}, {10, 0}, {10, 10}} {
		f := geojson.NewFeature(p)
		f.ID = []string{"a", "b", "c"}[i]
		f.Properties["name"] = fmt.Sprintf("Well-%d", i)
		f.Properties["status"] = fmt.Sprintf("v%d", *s.loads)
		fc.Append(f)
	}
	return fc, nil
}

func (s versionedSource) String() string { return "versioned" }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func exec(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case m := <-ch:
		return m, true
	case <-time.After(200 * time.Millisecond):
		// timers such as snackbar expiry
		return nil, false
	}
}

// pump runs cmd and feeds every resulting message back into d until nothing is left.
func pump(t *testing.T, d *Dashboard, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := exec(c)
		if !ok {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case tea.QuitMsg, statusbar.ExpireMsg:
		default:
			_, next := d.Update(m)
			queue = append(queue, next)
		}
	}
}

func send(t *testing.T, d *Dashboard, msg tea.Msg) {
	t.Helper()
	_, cmd := d.Update(msg)
	pump(t, d, cmd)
}

func newDashboard(t *testing.T, opts Options) (*Dashboard, *int) {
	t.Helper()
	loads := 0
	if opts.Layers == nil {
		opts.Layers = []*engine.VectorLayer{engine.NewVectorLayer("wells", versionedSource{loads: &loads})}
	}
	opts.ShowInspector = true
	opts.InspectorWidth = 30
	opts.MinMapWidth = 20
	d, err := New(opts)
	require.NoError(t, err)
	send(t, d, tea.WindowSizeMsg{Width: 80, Height: 24})
	pump(t, d, d.Init())
	return d, &loads
}

func TestMountLoadsAndSizesMap(t *testing.T) {
	d, loads := newDashboard(t, Options{})
	assert.Equal(t, 1, *loads)

	size, ok := d.Map().GetSize()
	require.True(t, ok)
	assert.Equal(t, engine.Size{Width: 80 - 2 - 30, Height: 24 - state.ChromeRows}, size)

	l, _ := d.Map().Layer("wells")
	assert.Equal(t, 3, l.Len())

	vm := mapvm.Use(d.Scope())
	assert.Same(t, d.VM(), vm)
	assert.Equal(t, 1, vm.Refreshes())
}

func TestToolbarClickClearsSelection(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	l, _ := d.Map().Layer("wells")
	d.Map().Selection().Select(l.Features()...)
	require.Equal(t, 3, d.Map().Selection().Len())

	send(t, d, click(0, toolbarRow))
	assert.Equal(t, 0, d.Map().Selection().Len())

	send(t, d, click(0, toolbarRow))
	send(t, d, runes("c"))
	assert.Equal(t, 0, d.Map().Selection().Len())
}

func TestRefreshKeyRedrawsAndReloads(t *testing.T) {
	d, loads := newDashboard(t, Options{})
	frames := d.Map().Frames()

	send(t, d, runes("r"))
	assert.Equal(t, frames+1, d.Map().Frames())
	assert.Equal(t, 2, d.VM().Refreshes())
	assert.Equal(t, 2, *loads)
}

func clickFeature(t *testing.T, d *Dashboard, p orb.Point) {
	t.Helper()
	c, ok := d.Map().CellOf(p)
	require.True(t, ok, "feature must be on screen")
	send(t, d, click(c.Col+surfaceCol, c.Row+surfaceRow))
}

func TestClickSelectsAndInspects(t *testing.T) {
	d, _ := newDashboard(t, Options{})

	clickFeature(t, d, orb.Point{10, 0})
	assert.Equal(t, 1, d.Map().Selection().Len())
	assert.Equal(t, "wells/b", d.Viewer().Key())
	assert.Equal(t, map[string]any{"name": "Well-1", "status": "v1"}, d.Viewer().Current())
	assert.Contains(t, d.View(), "Feature wells/b")

	// second click deselects and clears the inspector
	clickFeature(t, d, orb.Point{10, 0})
	assert.Equal(t, 0, d.Map().Selection().Len())
	assert.Equal(t, "", d.Viewer().Key())
}

func TestReloadShowsChanges(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	clickFeature(t, d, orb.Point{0, 0})
	require.Equal(t, "wells/a", d.Viewer().Key())

	send(t, d, runes("r"))
	assert.Equal(t, "v2", d.Viewer().Current()["status"])
	assert.Contains(t, d.Viewer().Changes(), "status")
	assert.Equal(t, 1, d.Map().Selection().Len(), "selection survives the reload")
}

func TestCursorPick(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	c, ok := d.Map().CellOf(orb.Point{10, 10})
	require.True(t, ok)
	cur := d.UI()
	send(t, d, runes("k"))
	assert.Equal(t, cur.CursorRow-1, d.UI().CursorRow)

	d.ui.CursorCol, d.ui.CursorRow = c.Col, c.Row
	send(t, d, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "wells/c", d.Viewer().Key())
}

func TestLoadFailureKeepsRunning(t *testing.T) {
	loads := 0
	d, _ := newDashboard(t, Options{Layers: []*engine.VectorLayer{
		engine.NewVectorLayer("pipes", versionedSource{loads: &loads, fail: true}),
	}})
	assert.Equal(t, 1, loads)
	assert.Contains(t, d.View(), "Load failed: pipes")
	assert.NotPanics(t, func() { send(t, d, runes("r")) })
}

func TestCopyUsesClipboard(t *testing.T) {
	var got string
	cb := clip.NewWithWriter(true, func(s string) error { got = s; return nil })
	d, _ := newDashboard(t, Options{Clipboard: cb})
	clickFeature(t, d, orb.Point{0, 0})

	send(t, d, runes("y"))
	assert.Equal(t, "name: Well-0\nstatus: v1\n", got)
	assert.Contains(t, d.View(), "Copied 2 properties")
}

func TestCopyWithoutClipboard(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	clickFeature(t, d, orb.Point{0, 0})
	send(t, d, runes("y"))
	assert.Contains(t, d.View(), "Clipboard unavailable")
}

func TestWatcherChangeRefreshes(t *testing.T) {
	d, loads := newDashboard(t, Options{})
	send(t, d, LayerChangedMsg{Path: "/data/wells.geojson"})
	assert.Equal(t, 2, d.VM().Refreshes())
	assert.Equal(t, 2, *loads)
}

func TestNarrowWindowHidesInspector(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	send(t, d, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.False(t, d.UI().ShowInspector)
	size, _ := d.Map().GetSize()
	assert.Equal(t, 38, size.Width)
}

func TestQuitUnmounts(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	_, cmd := d.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, d.VM().Closed())
	assert.Equal(t, "", d.View())

	// a late watcher event is ignored once unmounted
	send(t, d, LayerChangedMsg{Path: "x"})
	assert.Equal(t, 1, d.VM().Refreshes())
}

func TestLogoutHook(t *testing.T) {
	called := false
	d, _ := newDashboard(t, Options{OnLogout: func() tea.Cmd { called = true; return nil }})
	send(t, d, runes("L"))
	assert.True(t, called)
	assert.False(t, d.VM().Closed())
}

func TestHelpOverlayToggle(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	send(t, d, runes("?"))
	assert.Contains(t, d.View(), "Help (Focus: Map)")
	send(t, d, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, d.View(), "Help (Focus: Map)")
}

func TestInspectorFocusCyclesSelection(t *testing.T) {
	d, _ := newDashboard(t, Options{})
	clickFeature(t, d, orb.Point{0, 0})
	clickFeature(t, d, orb.Point{10, 0})
	require.Equal(t, "wells/b", d.Viewer().Key())

	send(t, d, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, state.InspectorFocus, d.UI().Focus)
	send(t, d, runes("j"))
	assert.Equal(t, "wells/a", d.Viewer().Key())
	send(t, d, runes("j"))
	assert.Equal(t, "wells/b", d.Viewer().Key())
}
