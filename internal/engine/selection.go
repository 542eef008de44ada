package engine

// SelectionLayer is the sub-layer of the map holding the selected features,
// in selection order.
type SelectionLayer struct {
	items []*Feature
	keys  map[string]bool
}

func NewSelectionLayer() *SelectionLayer {
	return &SelectionLayer{keys: map[string]bool{}}
}

func (s *SelectionLayer) Len() int { return len(s.items) }

// Features returns a copy of the selection.
func (s *SelectionLayer) Features() []*Feature {
	return append([]*Feature(nil), s.items...)
}

// Last returns the most recently selected feature.
func (s *SelectionLayer) Last() (*Feature, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

func (s *SelectionLayer) IsSelected(f *Feature) bool { return f != nil && s.keys[f.Key()] }

func (s *SelectionLayer) isSelectedKey(key string) bool { return s.keys[key] }

func (s *SelectionLayer) Select(fs ...*Feature) {
	for _, f := range fs {
		if f == nil || s.keys[f.Key()] {
			continue
		}
		s.keys[f.Key()] = true
		s.items = append(s.items, f)
	}
}

func (s *SelectionLayer) Deselect(f *Feature) {
	if !s.IsSelected(f) {
		return
	}
	delete(s.keys, f.Key())
	for i, it := range s.items {
		if it.Key() == f.Key() {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
}

// Toggle flips f's membership and reports whether f is now selected.
func (s *SelectionLayer) Toggle(f *Feature) bool {
	if s.IsSelected(f) {
		s.Deselect(f)
		return false
	}
	s.Select(f)
	return s.IsSelected(f)
}

// ClearSelection empties the selection. Calling it on an empty selection is a no-op.
func (s *SelectionLayer) ClearSelection() {
	s.items = nil
	s.keys = map[string]bool{}
}

// Rebind swaps selected features for their reloaded counterparts in layer and
// drops the ones that disappeared.
func (s *SelectionLayer) Rebind(layer *VectorLayer) {
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Layer() != layer.Name() {
			kept = append(kept, it)
			continue
		}
		if nf, ok := layer.Feature(it.ID()); ok {
			kept = append(kept, nf)
			continue
		}
		delete(s.keys, it.Key())
	}
	s.items = kept
}
