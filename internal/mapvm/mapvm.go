// Package mapvm is the view-model between UI widgets and the map engine.
//
// Widgets never hold engine objects directly. They look up the MapVM bound to
// their context with Use and call its operations: selection, theme, refresh and,
// for primitives the MapVM does not wrap, the raw map through GetMap.
//
// A MapVM is owned by the map view that created it: one instance per mounted
// view, closed when the view unmounts. Like the engine it wraps, it is driven
// from the UI loop only and takes no locks.
package mapvm

import (
	"errors"

	"github.com/google/uuid"

	"mapdash/internal/engine"
	"mapdash/internal/logging"
	"mapdash/internal/theme"
)

// Map is the subset of the engine map the MapVM and its widgets rely on.
type Map interface {
	Render()
	GetSize() (engine.Size, bool)
	SetSize(engine.Size)
	UpdateSize()
}

// SelectionLayer is the subset of the engine selection the MapVM exposes.
type SelectionLayer interface {
	ClearSelection()
}

// ThemeSource reports the host's current theme; false while none is available.
type ThemeSource func() (theme.Theme, bool)

// ErrNoSelectionLayer is returned by New when the selection layer is missing.
var ErrNoSelectionLayer = errors.New("mapvm: selection layer is required")

// Option configures a MapVM.
type Option func(*MapVM)

// WithTheme sets where GetTheme reads the palette from.
func WithTheme(src ThemeSource) Option {
	return func(vm *MapVM) { vm.theme = src }
}

// WithStaticTheme serves a fixed palette.
func WithStaticTheme(th theme.Theme) Option {
	return WithTheme(func() (theme.Theme, bool) { return th, true })
}

// WithRefresher sets the host action behind RefreshMap. The refresher must not
// block: it schedules its work and returns.
func WithRefresher(fn func()) Option {
	return func(vm *MapVM) { vm.refresh = fn }
}

// WithLogger routes lifecycle logs to l.
func WithLogger(l logging.Logger) Option {
	return func(vm *MapVM) { vm.log = l }
}

// MapVM is the view model a map view shares with its controls: the map handle,
// its selection layer and the host theme.
type MapVM struct {
	id      string
	m       Map
	sel     SelectionLayer
	theme   ThemeSource
	refresh func()
	log     logging.Logger

	refreshes int
	closed    bool
}

// New wraps m and sel. m may be nil when the host has no map handle yet; sel
// is required.
func New(m Map, sel SelectionLayer, opts ...Option) (*MapVM, error) {
	if sel == nil {
		return nil, ErrNoSelectionLayer
	}
	if es, ok := sel.(*engine.SelectionLayer); ok && es == nil {
		return nil, ErrNoSelectionLayer
	}
	if em, ok := m.(*engine.Map); ok && em == nil {
		m = nil
	}
	vm := &MapVM{id: uuid.NewString(), m: m, sel: sel}
	for _, o := range opts {
		o(vm)
	}
	if vm.log == nil {
		vm.log = logging.NewNop()
	}
	vm.log = vm.log.Named("mapvm").With(logging.String("vm", vm.id))
	return vm, nil
}

func (vm *MapVM) ID() string { return vm.id }

// GetMap returns the raw map for primitives the MapVM does not wrap, such as
// forcing a redraw or recomputing the size. It may be nil.
func (vm *MapVM) GetMap() Map { return vm.m }

// GetSelectionLayer never returns nil.
func (vm *MapVM) GetSelectionLayer() SelectionLayer { return vm.sel }

// GetTheme returns the current palette snapshot, or false when the host has none.
func (vm *MapVM) GetTheme() (theme.Theme, bool) {
	if vm.theme == nil {
		return theme.Theme{}, false
	}
	return vm.theme()
}

// RefreshMap triggers the host's logical refresh (reloading layer data).
// It does not wait for the refresh to finish and is a no-op once the MapVM is closed.
func (vm *MapVM) RefreshMap() {
	if vm.closed {
		vm.log.Debug("refresh after close ignored")
		return
	}
	vm.refreshes++
	vm.log.Debug("refresh requested", logging.Int("n", vm.refreshes))
	if vm.refresh != nil {
		vm.refresh()
	}
}

// Refreshes counts accepted RefreshMap calls.
func (vm *MapVM) Refreshes() int { return vm.refreshes }

// Close marks the MapVM as unmounted.
func (vm *MapVM) Close() {
	if vm.closed {
		return
	}
	vm.closed = true
	vm.log.Info("map view unmounted", logging.Int("refreshes", vm.refreshes))
}

func (vm *MapVM) Closed() bool { return vm.closed }
