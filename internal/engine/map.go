// Package engine is the map engine behind the dashboard: a sized map surface with
// vector layers, a selection sub-layer and a character raster renderer.
//
// The engine is not safe for concurrent use. The dashboard drives it from the
// bubbletea update loop only.
package engine

import (
	"math"

	"github.com/paulmach/orb"
)

// Size is the map surface size in terminal cells.
type Size struct {
	Width  int
	Height int
}

func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Cell addresses a raster cell, column first.
type Cell struct {
	Col int
	Row int
}

// Option configures a Map.
type Option func(*Map)

// WithMeasure sets how UpdateSize measures the hosting container.
func WithMeasure(fn func() (Size, bool)) Option {
	return func(m *Map) { m.measure = fn }
}

// WithLayers adds layers in drawing order.
func WithLayers(ls ...*VectorLayer) Option {
	return func(m *Map) { m.layers = append(m.layers, ls...) }
}

type Map struct {
	size    Size
	sized   bool
	measure func() (Size, bool)

	layers    []*VectorLayer
	selection *SelectionLayer

	center     orb.Point
	resolution float64 // map units per cell
	fitPending bool

	frames int
	raster *raster
}

func New(opts ...Option) *Map {
	m := &Map{selection: NewSelectionLayer(), resolution: 1}
	for _, o := range opts {
		o(m)
	}
	return m
}

// GetSize reports the current surface size; false until the map has been laid out.
func (m *Map) GetSize() (Size, bool) { return m.size, m.sized }

// SetSize applies s. Invalid sizes are ignored.
func (m *Map) SetSize(s Size) {
	if !s.Valid() {
		return
	}
	m.size, m.sized = s, true
	if m.fitPending {
		m.Fit()
	}
}

// UpdateSize re-measures the hosting container. The size is left untouched when
// the container reports nothing.
func (m *Map) UpdateSize() {
	if m.measure == nil {
		return
	}
	if s, ok := m.measure(); ok {
		m.SetSize(s)
	}
}

// Render forces a redraw of the raster.
func (m *Map) Render() {
	m.frames++
	m.raster = m.rasterize()
}

// Frames counts forced redraws.
func (m *Map) Frames() int { return m.frames }

func (m *Map) Selection() *SelectionLayer { return m.selection }

func (m *Map) AddLayer(l *VectorLayer) { m.layers = append(m.layers, l) }

func (m *Map) Layers() []*VectorLayer { return append([]*VectorLayer(nil), m.layers...) }

func (m *Map) Layer(name string) (*VectorLayer, bool) {
	for _, l := range m.layers {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// Bound is the union of the visible layers' bounds.
func (m *Map) Bound() (orb.Bound, bool) {
	var out orb.Bound
	has := false
	for _, l := range m.layers {
		if !l.Visible() {
			continue
		}
		b, ok := l.Bound()
		if !ok {
			continue
		}
		if has {
			out = out.Union(b)
		} else {
			out, has = b, true
		}
	}
	return out, has
}

// Fit centers the view on the visible content. Without a size the fit is
// deferred until the map is laid out.
func (m *Map) Fit() {
	b, ok := m.Bound()
	if !ok {
		return
	}
	if !m.sized {
		m.fitPending = true
		return
	}
	m.fitPending = false
	m.center = b.Center()
	w := b.Max.X() - b.Min.X()
	h := b.Max.Y() - b.Min.Y()
	res := math.Max(w/float64(m.size.Width), h/float64(m.size.Height)) * 1.1
	if res <= 0 || math.IsNaN(res) {
		res = 1
	}
	m.resolution = res
}

// Pan moves the view by whole cells.
func (m *Map) Pan(dCol, dRow int) {
	m.center = orb.Point{
		m.center.X() + float64(dCol)*m.resolution,
		m.center.Y() - float64(dRow)*m.resolution,
	}
}

// Zoom divides the resolution by factor; factor > 1 zooms in. Zooming in
// stops at minResolution.
func (m *Map) Zoom(factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	m.resolution = math.Max(m.resolution/factor, m.minResolution())
}

// maxZoomCells is how many cells the visible content may span at most.
const maxZoomCells = 1 << 20

// cellLimit bounds projected cells outside the surface so that far-away
// coordinates still convert to int safely.
const cellLimit = 1 << 24

func (m *Map) minResolution() float64 {
	floor := 1e-9
	if b, ok := m.Bound(); ok {
		extent := math.Max(b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y())
		floor = math.Max(floor, extent/maxZoomCells)
	}
	return floor
}

func (m *Map) Center() orb.Point   { return m.center }
func (m *Map) Resolution() float64 { return m.resolution }

func (m *Map) origin() (left, top float64) {
	left = m.center.X() - m.resolution*float64(m.size.Width)/2
	top = m.center.Y() + m.resolution*float64(m.size.Height)/2
	return left, top
}

// CoordinateAt returns the map coordinate at the center of cell c.
func (m *Map) CoordinateAt(c Cell) (orb.Point, bool) {
	if !m.sized || c.Col < 0 || c.Row < 0 || c.Col >= m.size.Width || c.Row >= m.size.Height {
		return orb.Point{}, false
	}
	left, top := m.origin()
	return orb.Point{
		left + (float64(c.Col)+0.5)*m.resolution,
		top - (float64(c.Row)+0.5)*m.resolution,
	}, true
}

// CellOf projects p onto the surface. The cell may lie outside the surface;
// ok reports whether it is inside.
func (m *Map) CellOf(p orb.Point) (Cell, bool) {
	if !m.sized {
		return Cell{}, false
	}
	left, top := m.origin()
	c := Cell{
		Col: clampCell((p.X()-left)/m.resolution, m.size.Width),
		Row: clampCell((top-p.Y())/m.resolution, m.size.Height),
	}
	return c, c.Col >= 0 && c.Row >= 0 && c.Col < m.size.Width && c.Row < m.size.Height
}

func clampCell(v float64, size int) int {
	if math.IsNaN(v) {
		return -1
	}
	lim := float64(size + cellLimit)
	return int(math.Floor(math.Max(-lim, math.Min(v, lim))))
}

// FeaturesAt returns the visible features under cell c, topmost layer first.
func (m *Map) FeaturesAt(c Cell) []*Feature {
	p, ok := m.CoordinateAt(c)
	if !ok {
		return nil
	}
	var out []*Feature
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if !l.Visible() {
			continue
		}
		out = append(out, l.FeaturesAt(p, m.resolution*0.75)...)
	}
	return out
}
