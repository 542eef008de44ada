// Package tui hosts the map dashboard: a bubbletea program that mounts the map
// engine, provides its MapVM to the widgets and routes input to them.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mapdash/internal/clip"
	"mapdash/internal/engine"
	"mapdash/internal/logging"
	"mapdash/internal/mapvm"
	"mapdash/internal/theme"
	"mapdash/internal/tui/state"
	"mapdash/internal/tui/widgets/featureview"
	"mapdash/internal/tui/widgets/helpoverlay"
	"mapdash/internal/tui/widgets/kvtable"
	"mapdash/internal/tui/widgets/statusbar"
	"mapdash/internal/tui/widgets/toolbar"
)

const (
	toolbarRow = 0
	// the map surface starts below the toolbar and the top border, after the left border
	surfaceRow = 2
	surfaceCol = 1

	panStep = 5
)

// Options configures a Dashboard.
type Options struct {
	Layers         []*engine.VectorLayer
	Theme          string // dark | light | none; an unknown name leaves the map without a theme
	NoColor        bool
	Clipboard      *clip.Clipboard
	Logger         logging.Logger
	ShowInspector  bool
	InspectorWidth int
	MinMapWidth    int
	// OnLogout replaces the default logout, which ends the program.
	OnLogout func() tea.Cmd
}

// Dashboard is the map view. It owns the engine map and the MapVM wrapping
// it for as long as the program runs.
type Dashboard struct {
	scope context.Context
	vm    *mapvm.MapVM
	m     *engine.Map

	ui      state.UIState
	keys    keyMap
	help    help.Model
	overlay helpoverlay.HelpOverlay
	toolbar *toolbar.Toolbar
	kv      *kvtable.Model
	viewer  *featureview.Viewer
	status  *statusbar.StatusBar

	clip     *clip.Clipboard
	log      logging.Logger
	th       theme.Theme
	hasTheme bool
	onLogout func() tea.Cmd

	pending    []tea.Cmd
	viewMoved  bool
	inspectIdx int
	quitting   bool
}

func New(opts Options) (*Dashboard, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	d := &Dashboard{
		keys:     defaultKeyMap(),
		help:     help.New(),
		status:   statusbar.NewStatusBar(),
		clip:     opts.Clipboard,
		log:      log.Named("dashboard"),
		onLogout: opts.OnLogout,
		ui: state.UIState{
			ShowInspector:  opts.ShowInspector,
			InspectorWidth: opts.InspectorWidth,
			MinMapWidth:    opts.MinMapWidth,
		},
	}
	name := opts.Theme
	if theme.NoColor(opts.NoColor) {
		name = "none"
	}
	d.th, d.hasTheme = theme.ByName(name)
	if !d.hasTheme {
		d.log.Warn("unknown theme, widgets fall back to terminal colors", logging.String("theme", opts.Theme))
	}

	d.m = engine.New(engine.WithLayers(opts.Layers...), engine.WithMeasure(d.measure))
	vm, err := mapvm.New(d.m, d.m.Selection(),
		mapvm.WithTheme(d.currentTheme),
		mapvm.WithRefresher(d.refresh),
		mapvm.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("mount map view: %w", err)
	}
	d.vm = vm
	d.scope = mapvm.Provide(context.Background(), vm)

	d.kv = kvtable.New(state.InspectorArea(state.UIState{ShowInspector: true, InspectorWidth: opts.InspectorWidth})-2, 8)
	d.viewer = featureview.New(d.kv)
	d.toolbar = toolbar.New(
		toolbar.ClearSelection{},
		toolbar.RefreshMap{},
		toolbar.Inspect{Viewer: d.viewer},
		toolbar.CopyFeature{Viewer: d.viewer, Copy: d.copyProps},
		toolbar.Logout{OnLogout: d.logout},
	)
	d.keys.controls = d.toolbar.Bindings()
	d.overlay = helpoverlay.NewHelpOverlay(
		helpoverlay.Section{Title: "Cursor", Bindings: []key.Binding{d.keys.Up, d.keys.Down, d.keys.Left, d.keys.Right, d.keys.Pick}},
		helpoverlay.Section{Title: "View", Bindings: []key.Binding{d.keys.PanUp, d.keys.PanDown, d.keys.PanLeft, d.keys.PanRight, d.keys.ZoomIn, d.keys.ZoomOut, d.keys.Fit}},
		helpoverlay.Section{Title: "Toolbar", Bindings: d.toolbar.Bindings()},
		helpoverlay.Section{Title: "Inspector", Bindings: []key.Binding{d.keys.Focus, d.keys.Inspector}},
	)
	if !d.clip.Available() {
		d.log.Warn("clipboard unavailable")
	}
	d.log.Info("map view mounted", logging.String("vm", vm.ID()), logging.Int("layers", len(opts.Layers)))
	return d, nil
}

// NewProgram runs d full screen with mouse support.
func NewProgram(d *Dashboard, opts ...tea.ProgramOption) *tea.Program {
	base := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	return tea.NewProgram(d, append(base, opts...)...)
}

func (d *Dashboard) VM() *mapvm.MapVM            { return d.vm }
func (d *Dashboard) Map() *engine.Map            { return d.m }
func (d *Dashboard) Scope() context.Context      { return d.scope }
func (d *Dashboard) Viewer() *featureview.Viewer { return d.viewer }
func (d *Dashboard) UI() state.UIState           { return d.ui }

func (d *Dashboard) measure() (engine.Size, bool) {
	w, h, ok := state.MapArea(d.ui)
	return engine.Size{Width: w, Height: h}, ok
}

func (d *Dashboard) currentTheme() (theme.Theme, bool) { return d.th, d.hasTheme }

// Init loads every layer once.
func (d *Dashboard) Init() tea.Cmd {
	d.vm.RefreshMap()
	return tea.Batch(d.drain()...)
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := d.ui.Width == 0
		d.ui = state.Resize(d.ui, msg.Width, msg.Height)
		d.m.UpdateSize()
		d.layoutInspector()
		if first {
			d.ui = state.CenterCursor(d.ui)
		}
	case tea.KeyMsg:
		cmds = append(cmds, d.handleKey(msg))
	case tea.MouseMsg:
		cmds = append(cmds, d.handleMouse(msg))
	case layerLoadedMsg:
		cmds = append(cmds, d.applyLoad(msg))
	case LayerChangedMsg:
		d.log.Info("source changed", logging.String("path", msg.Path))
		d.vm.RefreshMap()
		cmds = append(cmds, d.status.Snack().Show("Reloading "+filepath.Base(msg.Path), false, 0))
	case copiedMsg:
		if msg.err != nil {
			d.log.Warn("copy failed", logging.Err(msg.err))
			cmds = append(cmds, d.status.Snack().Show("Clipboard unavailable", true, 0))
		} else {
			cmds = append(cmds, d.status.Snack().Show(fmt.Sprintf("Copied %d properties", msg.n), false, 0))
		}
	case statusbar.ExpireMsg:
		d.status.Snack().Update(msg)
	}
	cmds = append(cmds, d.drain()...)
	return d, tea.Batch(cmds...)
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	d.ui.Notice = ""
	switch {
	case key.Matches(msg, d.keys.Quit):
		d.unmount()
		return tea.Quit
	case key.Matches(msg, d.keys.Help):
		d.ui = state.ToggleHelp(d.ui)
		return nil
	case msg.Type == tea.KeyEsc && d.ui.ShowHelp:
		d.ui = state.ToggleHelp(d.ui)
		return nil
	case key.Matches(msg, d.keys.Focus):
		d.ui = state.ToggleFocus(d.ui)
		return nil
	case key.Matches(msg, d.keys.Inspector):
		d.ui = state.ClampCursor(state.ToggleInspector(d.ui))
		d.m.UpdateSize()
		d.layoutInspector()
		return nil
	}
	if cmd, ok := d.toolbar.HandleKey(d.scope, msg); ok {
		return cmd
	}
	if d.ui.Focus == state.InspectorFocus {
		return d.inspectorKey(msg)
	}
	return d.mapKey(msg)
}

func (d *Dashboard) mapKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, d.keys.Up):
		d.ui = state.MoveCursor(d.ui, 0, -1)
	case key.Matches(msg, d.keys.Down):
		d.ui = state.MoveCursor(d.ui, 0, 1)
	case key.Matches(msg, d.keys.Left):
		d.ui = state.MoveCursor(d.ui, -1, 0)
	case key.Matches(msg, d.keys.Right):
		d.ui = state.MoveCursor(d.ui, 1, 0)
	case key.Matches(msg, d.keys.PanUp):
		d.pan(0, -panStep)
	case key.Matches(msg, d.keys.PanDown):
		d.pan(0, panStep)
	case key.Matches(msg, d.keys.PanLeft):
		d.pan(-panStep, 0)
	case key.Matches(msg, d.keys.PanRight):
		d.pan(panStep, 0)
	case key.Matches(msg, d.keys.ZoomIn):
		d.m.Zoom(2)
		d.viewMoved = true
	case key.Matches(msg, d.keys.ZoomOut):
		d.m.Zoom(0.5)
		d.viewMoved = true
	case key.Matches(msg, d.keys.Fit):
		d.m.Fit()
		d.viewMoved = false
	case key.Matches(msg, d.keys.Pick):
		return d.pickAt(engine.Cell{Col: d.ui.CursorCol, Row: d.ui.CursorRow})
	}
	return nil
}

// inspectorKey cycles the inspector through the selection.
func (d *Dashboard) inspectorKey(msg tea.KeyMsg) tea.Cmd {
	feats := d.m.Selection().Features()
	n := len(feats)
	if n == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, d.keys.Up):
		d.inspectIdx--
	case key.Matches(msg, d.keys.Down):
		d.inspectIdx++
	default:
		return nil
	}
	d.inspectIdx = (d.inspectIdx%n + n) % n
	d.viewer.Inspect(feats[d.inspectIdx])
	return nil
}

func (d *Dashboard) pan(dCol, dRow int) {
	d.m.Pan(dCol, dRow)
	d.viewMoved = true
}

func (d *Dashboard) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		d.m.Zoom(1.25)
		d.viewMoved = true
		return nil
	case tea.MouseButtonWheelDown:
		d.m.Zoom(0.8)
		d.viewMoved = true
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}
	if msg.Y == toolbarRow {
		cmd, _ := d.toolbar.HandleClick(d.scope, msg.X)
		return cmd
	}
	c := engine.Cell{Col: msg.X - surfaceCol, Row: msg.Y - surfaceRow}
	w, h, ok := state.MapArea(d.ui)
	if !ok || c.Col < 0 || c.Row < 0 || c.Col >= w || c.Row >= h {
		return nil
	}
	d.ui.CursorCol, d.ui.CursorRow = c.Col, c.Row
	return d.pickAt(c)
}

// pickAt toggles the topmost feature under c and inspects it.
func (d *Dashboard) pickAt(c engine.Cell) tea.Cmd {
	feats := d.m.FeaturesAt(c)
	if len(feats) == 0 {
		d.ui.Notice = "Nothing here"
		return nil
	}
	f := feats[0]
	sel := d.m.Selection()
	if sel.Toggle(f) {
		d.viewer.Inspect(f)
		d.inspectIdx = sel.Len() - 1
		d.ui.Notice = "Selected " + f.Key()
		return nil
	}
	d.ui.Notice = "Deselected " + f.Key()
	if last, ok := sel.Last(); ok {
		d.viewer.Inspect(last)
		d.inspectIdx = sel.Len() - 1
	} else if d.viewer.Key() == f.Key() {
		d.viewer.Inspect(nil)
	}
	return nil
}

// reinspect refreshes the inspector after l was reloaded, so the viewer can
// show what changed. A feature that disappeared is cleared.
func (d *Dashboard) reinspect(l *engine.VectorLayer) {
	k := d.viewer.Key()
	prefix := l.Name() + "/"
	if !strings.HasPrefix(k, prefix) {
		return
	}
	if f, ok := l.Feature(strings.TrimPrefix(k, prefix)); ok {
		d.viewer.Inspect(f)
		return
	}
	d.viewer.Inspect(nil)
}

// copyProps writes props to the clipboard off the UI loop.
func (d *Dashboard) copyProps(props map[string]any) tea.Cmd {
	if props == nil {
		return d.status.Snack().Show("Nothing to copy", true, 0)
	}
	text := kvtable.Plain(props)
	cb := d.clip
	n := len(props)
	return func() tea.Msg {
		return copiedMsg{n: n, err: cb.Copy(text)}
	}
}

func (d *Dashboard) logout() tea.Cmd {
	d.log.Info("session ended", logging.Int("selected", d.m.Selection().Len()))
	if d.onLogout != nil {
		return d.onLogout()
	}
	d.unmount()
	return tea.Quit
}

// unmount releases the MapVM. The dashboard renders nothing afterwards.
func (d *Dashboard) unmount() {
	d.quitting = true
	d.vm.Close()
}

func (d *Dashboard) layoutInspector() {
	iw := state.InspectorArea(d.ui)
	if iw <= 2 {
		return
	}
	h := d.ui.Height - state.ChromeRows - 4
	if h < 3 {
		h = 3
	}
	d.kv.SetSize(iw-2, h)
}

func (d *Dashboard) info() statusbar.Info {
	layers := d.m.Layers()
	n := 0
	for _, l := range layers {
		n += l.Len()
	}
	size, _ := d.m.GetSize()
	return statusbar.Info{
		Layers:     len(layers),
		Features:   n,
		Selected:   d.m.Selection().Len(),
		Resolution: d.m.Resolution(),
		Frames:     d.m.Frames(),
		Width:      size.Width,
		Height:     size.Height,
	}
}

func (d *Dashboard) View() string {
	if d.quitting {
		return ""
	}
	w, h, ok := state.MapArea(d.ui)
	if !ok {
		return "Waiting for terminal size..."
	}
	th := toolbar.ThemeOf(d.scope)
	bar := d.toolbar.View(d.scope)

	var surface string
	if d.ui.ShowHelp {
		surface = d.overlay.View(d.ui)
	} else {
		cursor := engine.Cell{Col: d.ui.CursorCol, Row: d.ui.CursorRow}
		surface = d.m.View(th, &cursor)
	}
	frame := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(th.Muted)
	body := frame.Width(w).Height(h).MaxHeight(h + 2).Render(surface)
	if iw := state.InspectorArea(d.ui); iw > 2 {
		pane := frame.Width(iw - 2).Height(h).MaxHeight(h + 2).Render(d.viewer.View(iw - 2))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
	}
	status := d.status.View(d.ui, d.info(), th)
	return lipgloss.JoinVertical(lipgloss.Left, bar, body, status, d.help.View(d.keys))
}
