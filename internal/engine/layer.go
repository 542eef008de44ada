package engine

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// VectorLayer holds the features loaded from one Source, indexed for picking.
type VectorLayer struct {
	name    string
	source  Source
	visible bool

	features []*Feature
	byID     map[string]*Feature
	tree     *rtreego.Rtree
	bound    orb.Bound
	hasBound bool

	revision uint64 // bumped on every content or visibility change
	loadGen  uint64 // last load handed out by BeginLoad
}

func NewVectorLayer(name string, src Source) *VectorLayer {
	return &VectorLayer{
		name:    name,
		source:  src,
		visible: true,
		byID:    map[string]*Feature{},
		tree:    rtreego.NewTree(2, 25, 50),
	}
}

func (l *VectorLayer) Name() string   { return l.name }
func (l *VectorLayer) Source() Source { return l.source }
func (l *VectorLayer) Visible() bool  { return l.visible }
func (l *VectorLayer) Len() int       { return len(l.features) }

func (l *VectorLayer) SetVisible(v bool) {
	if l.visible != v {
		l.visible = v
		l.revision++
	}
}

// Features returns the loaded features in collection order.
func (l *VectorLayer) Features() []*Feature {
	return append([]*Feature(nil), l.features...)
}

func (l *VectorLayer) Feature(id string) (*Feature, bool) {
	f, ok := l.byID[id]
	return f, ok
}

// Bound is the union of all feature bounds; false while the layer is empty.
func (l *VectorLayer) Bound() (orb.Bound, bool) { return l.bound, l.hasBound }

// BeginLoad starts a load and returns its generation. Only the result of the
// newest generation is accepted by ApplyLoad.
func (l *VectorLayer) BeginLoad() uint64 {
	l.loadGen++
	return l.loadGen
}

// ApplyLoad replaces the layer content when gen is still the newest load.
// It reports whether the content was applied.
func (l *VectorLayer) ApplyLoad(gen uint64, fc *geojson.FeatureCollection) bool {
	if gen != l.loadGen {
		return false
	}
	l.SetFeatures(fc)
	return true
}

// SetFeatures replaces the layer content and rebuilds the spatial index.
// Features without geometry are skipped.
func (l *VectorLayer) SetFeatures(fc *geojson.FeatureCollection) {
	l.features = l.features[:0]
	l.byID = map[string]*Feature{}
	l.hasBound = false
	l.bound = orb.Bound{}

	var objs []rtreego.Spatial
	if fc != nil {
		for i, gf := range fc.Features {
			if gf == nil || gf.Geometry == nil {
				continue
			}
			f := newFeature(l.name, i, gf)
			if _, dup := l.byID[f.id]; dup {
				continue
			}
			l.features = append(l.features, f)
			l.byID[f.id] = f
			objs = append(objs, f)
			b := gf.Geometry.Bound()
			if l.hasBound {
				l.bound = l.bound.Union(b)
			} else {
				l.bound, l.hasBound = b, true
			}
		}
	}
	l.tree = rtreego.NewTree(2, 25, 50, objs...)
	l.revision++
}

// FeaturesAt returns the features whose bounds lie within tol of pt.
func (l *VectorLayer) FeaturesAt(pt orb.Point, tol float64) []*Feature {
	if len(l.features) == 0 {
		return nil
	}
	if tol < minExtent {
		tol = minExtent
	}
	q := rtreego.Point{pt.X(), pt.Y()}.ToRect(tol)
	hits := l.tree.SearchIntersect(q)
	out := make([]*Feature, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*Feature))
	}
	return out
}
