package engine

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"mapdash/internal/theme"
)

const (
	glyphEmpty   = ' '
	glyphPolygon = '▪'
	glyphLine    = '·'
	glyphPoint   = '●'
	glyphCursor  = '+'
)

// priority decides which glyph wins when features share a cell.
func priority(g rune) int {
	switch g {
	case glyphPoint:
		return 3
	case glyphLine:
		return 2
	case glyphPolygon:
		return 1
	}
	return 0
}

type rasterCell struct {
	glyph rune
	key   string // feature key, empty for blank cells
}

type stamp struct {
	size       Size
	center     orb.Point
	resolution float64
	revisions  uint64
}

type raster struct {
	stamp stamp
	grid  [][]rasterCell
}

func (m *Map) currentStamp() stamp {
	var rev uint64
	for _, l := range m.layers {
		rev += l.revision
	}
	return stamp{size: m.size, center: m.center, resolution: m.resolution, revisions: rev}
}

func (m *Map) rasterize() *raster {
	r := &raster{stamp: m.currentStamp()}
	if !m.sized {
		return r
	}
	r.grid = make([][]rasterCell, m.size.Height)
	for i := range r.grid {
		r.grid[i] = make([]rasterCell, m.size.Width)
	}
	for _, l := range m.layers {
		if !l.Visible() {
			continue
		}
		for _, f := range l.features {
			m.drawGeometry(r, f.Geometry(), f.Key())
		}
	}
	return r
}

func (r *raster) plot(c Cell, g rune, key string) {
	if c.Row < 0 || c.Row >= len(r.grid) || c.Col < 0 || c.Col >= len(r.grid[c.Row]) {
		return
	}
	cur := &r.grid[c.Row][c.Col]
	if priority(g) >= priority(cur.glyph) {
		cur.glyph, cur.key = g, key
	}
}

func (m *Map) drawGeometry(r *raster, g orb.Geometry, key string) {
	switch v := g.(type) {
	case orb.Point:
		c, _ := m.CellOf(v)
		r.plot(c, glyphPoint, key)
	case orb.MultiPoint:
		for _, p := range v {
			m.drawGeometry(r, p, key)
		}
	case orb.LineString:
		m.drawPath(r, v, glyphLine, key)
	case orb.MultiLineString:
		for _, ls := range v {
			m.drawPath(r, ls, glyphLine, key)
		}
	case orb.Ring:
		m.drawPath(r, v, glyphPolygon, key)
	case orb.Polygon:
		for _, ring := range v {
			m.drawPath(r, ring, glyphPolygon, key)
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			m.drawGeometry(r, poly, key)
		}
	case orb.Collection:
		for _, sub := range v {
			m.drawGeometry(r, sub, key)
		}
	case orb.Bound:
		m.drawGeometry(r, v.ToRing(), key)
	}
}

func (m *Map) drawPath(r *raster, pts []orb.Point, g rune, key string) {
	for i, p := range pts {
		c, _ := m.CellOf(p)
		if i == 0 {
			r.plot(c, g, key)
			continue
		}
		prev, _ := m.CellOf(pts[i-1])
		drawLine(r, prev, c, g, key)
	}
}

// drawLine plots the cells between a and b (Bresenham).
func drawLine(r *raster, a, b Cell, g rune, key string) {
	dx := abs(b.Col - a.Col)
	dy := -abs(b.Row - a.Row)
	sx, sy := 1, 1
	if a.Col > b.Col {
		sx = -1
	}
	if a.Row > b.Row {
		sy = -1
	}
	// Segments much longer than the surface only matter at their ends when zoomed in.
	if limit := 4*(len(r.grid)+rowWidth(r)) + 64; dx < 0 || dy > 0 || dx > limit || -dy > limit {
		r.plot(a, g, key)
		r.plot(b, g, key)
		return
	}
	e := dx + dy
	c := a
	for {
		r.plot(c, g, key)
		if c == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			c.Col += sx
		}
		if e2 <= dx {
			e += dx
			c.Row += sy
		}
	}
}

func rowWidth(r *raster) int {
	if len(r.grid) == 0 {
		return 0
	}
	return len(r.grid[0])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// View draws the surface. Selected features use th.Highlight, everything else
// th.Faint; cursor, when non-nil, is drawn on top.
func (m *Map) View(th theme.Theme, cursor *Cell) string {
	if !m.sized {
		return ""
	}
	if m.raster == nil || m.raster.stamp != m.currentStamp() {
		m.raster = m.rasterize()
	}
	hl := th.Highlight()
	faint := th.Faint()
	cur := lipgloss.NewStyle().Bold(true).Foreground(th.Primary)

	var b strings.Builder
	for row, cells := range m.raster.grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runStyle := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			switch runStyle {
			case 1:
				b.WriteString(faint.Render(run.String()))
			case 2:
				b.WriteString(hl.Render(run.String()))
			default:
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col, cell := range cells {
			if cursor != nil && cursor.Row == row && cursor.Col == col {
				flush()
				b.WriteString(cur.Render(string(glyphCursor)))
				runStyle = -1
				continue
			}
			style, glyph := 0, cell.glyph
			switch {
			case cell.key == "":
				glyph = glyphEmpty
			case m.selection.isSelectedKey(cell.key):
				style = 2
			default:
				style = 1
			}
			if style != runStyle {
				flush()
				runStyle = style
			}
			run.WriteRune(glyph)
		}
		flush()
	}
	return b.String()
}
