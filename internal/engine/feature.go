package engine

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeometryKey is the reserved property-bag key holding a feature's geometry.
const GeometryKey = "geometry"

// minExtent keeps degenerate bounds (points, axis-aligned lines) valid for the R-tree.
const minExtent = 1e-9

// Feature is a single map feature owned by a VectorLayer.
type Feature struct {
	id    string
	layer string
	gf    *geojson.Feature
}

func newFeature(layer string, idx int, gf *geojson.Feature) *Feature {
	return &Feature{id: featureID(gf, layer, idx), layer: layer, gf: gf}
}

// featureID prefers the GeoJSON id member, then an "id" property, then the
// position inside the collection.
func featureID(gf *geojson.Feature, layer string, idx int) string {
	if gf.ID != nil {
		if s := fmt.Sprint(gf.ID); s != "" {
			return s
		}
	}
	if v, ok := gf.Properties["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s#%d", layer, idx)
}

func (f *Feature) ID() string    { return f.id }
func (f *Feature) Layer() string { return f.layer }

// Key identifies the feature across layers.
func (f *Feature) Key() string { return f.layer + "/" + f.id }

func (f *Feature) Geometry() orb.Geometry { return f.gf.Geometry }

// Properties returns a fresh copy of the feature's property bag. Like the
// engine's native bag it carries the geometry under GeometryKey.
func (f *Feature) Properties() map[string]any {
	out := make(map[string]any, len(f.gf.Properties)+1)
	for k, v := range f.gf.Properties {
		out[k] = v
	}
	if f.gf.Geometry != nil {
		out[GeometryKey] = f.gf.Geometry
	}
	return out
}

func (f *Feature) Get(key string) (any, bool) {
	if key == GeometryKey {
		return f.gf.Geometry, f.gf.Geometry != nil
	}
	v, ok := f.gf.Properties[key]
	return v, ok
}

// Bounds implements rtreego.Spatial.
func (f *Feature) Bounds() rtreego.Rect {
	return boundRect(f.gf.Geometry.Bound())
}

func boundRect(b orb.Bound) rtreego.Rect {
	w := math.Max(b.Max.X()-b.Min.X(), minExtent)
	h := math.Max(b.Max.Y()-b.Min.Y(), minExtent)
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min.X(), b.Min.Y()}, []float64{w, h})
	return rect
}
