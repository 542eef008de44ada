package engine

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapdash/internal/theme"
)

func wells() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range []orb.Point{{0, 0}, {10, 10}, {20, 0}} {
		f := geojson.NewFeature(p)
		f.ID = []string{"w1", "w2", "w3"}[i]
		f.Properties["name"] = "Well-" + f.ID.(string)
		fc.Append(f)
	}
	road := geojson.NewFeature(orb.LineString{{0, 0}, {20, 0}})
	road.Properties["id"] = "r1"
	fc.Append(road)
	return fc
}

func loadedMap(t *testing.T) (*Map, *VectorLayer) {
	t.Helper()
	l := NewVectorLayer("wells", StaticSource{FC: wells()})
	l.SetFeatures(wells())
	m := New(WithLayers(l), WithMeasure(func() (Size, bool) { return Size{Width: 40, Height: 20}, true }))
	return m, l
}

func TestFeatureIDsAndProperties(t *testing.T) {
	_, l := loadedMap(t)
	require.Equal(t, 4, l.Len())

	f, ok := l.Feature("w2")
	require.True(t, ok)
	assert.Equal(t, "wells/w2", f.Key())

	props := f.Properties()
	assert.Equal(t, "Well-w2", props["name"])
	assert.Equal(t, orb.Point{10, 10}, props[GeometryKey])

	// the bag is a copy
	props["name"] = "changed"
	v, _ := f.Get("name")
	assert.Equal(t, "Well-w2", v)

	_, ok = l.Feature("r1")
	assert.True(t, ok, "id property is used when the id member is absent")
}

func TestSizeLifecycle(t *testing.T) {
	m := New()
	_, ok := m.GetSize()
	assert.False(t, ok, "unsized until laid out")

	m.UpdateSize() // no measure: no-op
	_, ok = m.GetSize()
	assert.False(t, ok)

	m.SetSize(Size{Width: 0, Height: 5})
	_, ok = m.GetSize()
	assert.False(t, ok, "invalid sizes are ignored")

	m.SetSize(Size{Width: 10, Height: 5})
	s, ok := m.GetSize()
	require.True(t, ok)
	assert.Equal(t, Size{Width: 10, Height: 5}, s)
}

func TestUpdateSizeKeepsSizeWhenContainerUnmeasurable(t *testing.T) {
	measurable := true
	m := New(WithMeasure(func() (Size, bool) { return Size{Width: 8, Height: 4}, measurable }))
	m.UpdateSize()
	measurable = false
	m.UpdateSize()
	s, ok := m.GetSize()
	require.True(t, ok)
	assert.Equal(t, 8, s.Width)
}

func TestFitDeferredUntilSized(t *testing.T) {
	m, _ := loadedMap(t)
	m.Fit()
	assert.Equal(t, orb.Point{}, m.Center())

	m.UpdateSize()
	assert.Equal(t, orb.Point{10, 5}, m.Center())
	assert.Greater(t, m.Resolution(), 0.0)
}

func TestPickingAtCell(t *testing.T) {
	m, _ := loadedMap(t)
	m.UpdateSize()
	m.Fit()

	c, ok := m.CellOf(orb.Point{10, 10})
	require.True(t, ok)
	hits := m.FeaturesAt(c)
	require.NotEmpty(t, hits)
	assert.Equal(t, "w2", hits[0].ID())

	_, ok = m.CoordinateAt(Cell{Col: -1})
	assert.False(t, ok)
}

func TestSelectionClearIsIdempotent(t *testing.T) {
	_, l := loadedMap(t)
	sel := NewSelectionLayer()
	sel.Select(l.Features()[:3]...)
	sel.Select(l.Features()[0]) // duplicates are ignored
	require.Equal(t, 3, sel.Len())

	for i := 0; i < 3; i++ {
		sel.ClearSelection()
		assert.Equal(t, 0, sel.Len())
		assert.Empty(t, sel.Features())
	}
}

func TestSelectionToggleAndRebind(t *testing.T) {
	_, l := loadedMap(t)
	sel := NewSelectionLayer()
	w1, _ := l.Feature("w1")
	w3, _ := l.Feature("w3")
	assert.True(t, sel.Toggle(w1))
	sel.Select(w3)
	last, _ := sel.Last()
	assert.Equal(t, "w3", last.ID())

	// reload without w1
	fc := wells()
	fc.Features = fc.Features[1:]
	l.SetFeatures(fc)
	sel.Rebind(l)
	require.Equal(t, 1, sel.Len())
	nw3, _ := l.Feature("w3")
	assert.Same(t, nw3, sel.Features()[0])
	assert.False(t, sel.Toggle(nw3))
	assert.Equal(t, 0, sel.Len())
}

func TestApplyLoadDropsStaleGenerations(t *testing.T) {
	l := NewVectorLayer("wells", nil)
	g1 := l.BeginLoad()
	g2 := l.BeginLoad()
	assert.True(t, l.ApplyLoad(g2, wells()))
	assert.False(t, l.ApplyLoad(g1, geojson.NewFeatureCollection()))
	assert.Equal(t, 4, l.Len())
}

func TestRenderAndView(t *testing.T) {
	m, l := loadedMap(t)
	assert.Equal(t, "", m.View(theme.Fallback(), nil), "unsized map draws nothing")

	m.UpdateSize()
	m.Fit()
	m.Render()
	m.Render()
	assert.Equal(t, 2, m.Frames())

	w2, _ := l.Feature("w2")
	m.Selection().Select(w2)
	out := m.View(theme.Fallback(), &Cell{Col: 0, Row: 0})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 20)
	assert.Contains(t, out, string(glyphPoint))
	assert.Contains(t, out, string(glyphLine))
	assert.Contains(t, out, string(glyphCursor))
}

func TestDeepZoomOnLongSegmentStillRenders(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {1e7, 0}}))
	l := NewVectorLayer("pipe", StaticSource{FC: fc})
	l.SetFeatures(fc)
	m := New(WithLayers(l))
	m.SetSize(Size{Width: 40, Height: 10})
	m.Fit()
	for i := 0; i < 40; i++ {
		m.Zoom(2)
	}
	assert.GreaterOrEqual(t, m.Resolution(), 1e7/maxZoomCells)

	start, _ := m.CellOf(orb.Point{0, 0})
	m.Pan(start.Col, 0)
	start, ok := m.CellOf(orb.Point{0, 0})
	require.True(t, ok)
	assert.Equal(t, 0, start.Col)

	far, _ := m.CellOf(orb.Point{1e7, 0})
	assert.Greater(t, far.Col, 0)
	assert.LessOrEqual(t, far.Col, 40+cellLimit)
	far, _ = m.CellOf(orb.Point{-1e300, 1e300})
	assert.Equal(t, -(40 + cellLimit), far.Col)
	assert.Equal(t, -(10 + cellLimit), far.Row)

	done := make(chan string)
	go func() {
		m.Render()
		done <- m.View(theme.Fallback(), nil)
	}()
	select {
	case out := <-done:
		assert.Contains(t, out, string(glyphLine))
	case <-time.After(5 * time.Second):
		t.Fatal("render did not return")
	}
}

func TestZoomIgnoresInvalidFactors(t *testing.T) {
	m, _ := loadedMap(t)
	m.UpdateSize()
	m.Fit()
	res := m.Resolution()
	m.Zoom(0)
	m.Zoom(-2)
	m.Zoom(math.NaN())
	m.Zoom(math.Inf(1))
	assert.Equal(t, res, m.Resolution())
	m.Zoom(0.5)
	assert.InDelta(t, res*2, m.Resolution(), 1e-9)
}

func TestFileSourceAndDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wells.geojson")
	data, err := wells().MarshalJSON()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fc, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)

	single := []byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"x"}}`)
	fc, err = Decode(single)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = FileSource{Path: filepath.Join(dir, "missing.geojson")}.Load(context.Background())
	assert.Error(t, err)
}
