package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/geojson"

	"mapdash/internal/engine"
	"mapdash/internal/logging"
)

// LoadTimeout bounds a single layer load.
var LoadTimeout = 30 * time.Second

// layerLoadedMsg carries a finished load back to the UI loop.
type layerLoadedMsg struct {
	layer string
	gen   uint64
	fc    *geojson.FeatureCollection
	err   error
	took  time.Duration
}

// LayerChangedMsg tells the dashboard a file-backed source changed on disk.
// The watcher delivers it with Program.Send.
type LayerChangedMsg struct {
	Path string
}

type copiedMsg struct {
	n   int
	err error
}

// loadLayer starts a new load generation for l and returns the command that
// performs it. Only the source is touched off the UI loop.
func loadLayer(l *engine.VectorLayer) tea.Cmd {
	src := l.Source()
	if src == nil {
		return nil
	}
	gen := l.BeginLoad()
	name := l.Name()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
		defer cancel()
		start := time.Now()
		fc, err := src.Load(ctx)
		return layerLoadedMsg{layer: name, gen: gen, fc: fc, err: err, took: time.Since(start)}
	}
}

// refresh is the MapVM refresher: it queues one load per layer. The queued
// commands are handed to bubbletea when the current Update returns.
func (d *Dashboard) refresh() {
	for _, l := range d.m.Layers() {
		if cmd := loadLayer(l); cmd != nil {
			d.pending = append(d.pending, cmd)
		}
	}
}

func (d *Dashboard) drain() []tea.Cmd {
	cmds := d.pending
	d.pending = nil
	return cmds
}

func (d *Dashboard) applyLoad(msg layerLoadedMsg) tea.Cmd {
	log := d.log.With(logging.String("layer", msg.layer))
	if msg.err != nil {
		log.Warn("layer load failed", logging.Err(msg.err))
		return d.status.Snack().Show("Load failed: "+msg.layer, true, 0)
	}
	l, ok := d.m.Layer(msg.layer)
	if !ok {
		return nil
	}
	if !l.ApplyLoad(msg.gen, msg.fc) {
		log.Debug("stale load dropped")
		return nil
	}
	d.m.Selection().Rebind(l)
	if !d.viewMoved {
		d.m.Fit()
	}
	d.reinspect(l)
	log.Info("layer loaded", logging.Int("features", l.Len()), logging.Duration("took", msg.took))
	return nil
}
