// Copyright
// SPDX-License-Identifier: MIT
// mapdash: terminal map dashboard for GeoJSON layers with a feature inspector
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"mapdash/internal/config"
	"mapdash/internal/engine"
	"mapdash/internal/httpx"
)

const Version = "0.3.0"

const defaultConfig = "mapdash.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
	layers     []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mapdash:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mapdash",
		Short: "Terminal map dashboard for GeoJSON layers",
		Long: `mapdash shows GeoJSON layers on a character map. Click or press enter to
select features, inspect their properties, copy them, and refresh the layers
from disk or HTTP. File layers are reloaded when they change.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./"+defaultConfig+" when present)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringArrayVarP(&opts.layers, "source", "s", nil, "extra layer: PATH, URL or NAME=PATH|URL (repeatable)")

	root.AddCommand(
		newViewCmd(opts),
		newInspectCmd(opts),
		newLayersCmd(opts),
		newInitCmd(),
		newDoctorCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the config file, adds the --source layers and validates the result.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfig); err == nil {
			path = defaultConfig
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for i, raw := range opts.layers {
		l, err := parseLayerFlag(raw, len(c.Layers)+i)
		if err != nil {
			return nil, err
		}
		c.Layers = append(c.Layers, l)
	}
	if opts.logLevel != "" {
		c.Log.Level = opts.logLevel
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// parseLayerFlag accepts PATH, URL or NAME=PATH|URL.
func parseLayerFlag(raw string, i int) (config.Layer, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return config.Layer{}, fmt.Errorf("--source: empty value")
	}
	name, src := "", raw
	if k := strings.Index(raw, "="); k > 0 && !isURL(raw[:k]) {
		name, src = raw[:k], raw[k+1:]
	}
	if src == "" {
		return config.Layer{}, fmt.Errorf("--source %q: missing path or url", raw)
	}
	if name == "" {
		name = nameFromPath(src, i)
	}
	if isURL(src) {
		return config.Layer{Name: name, URL: src}, nil
	}
	return config.Layer{Name: name, Path: src}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func nameFromPath(p string, i int) string {
	base := filepath.Base(p)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, ".geo")
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("layer%d", i+1)
	}
	// keep simple characters
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	return base
}

func shortPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	cwd, err := os.Getwd()
	if err == nil {
		if rel, err := filepath.Rel(cwd, abs); err == nil {
			return rel
		}
	}
	return abs
}

// buildLayers turns the configured layers into engine layers. Nothing is loaded yet.
func buildLayers(c *config.Config) []*engine.VectorLayer {
	client := &http.Client{Timeout: httpx.DefaultTimeout}
	out := make([]*engine.VectorLayer, 0, len(c.Layers))
	for _, l := range c.Layers {
		var src engine.Source
		if l.URL != "" {
			src = engine.HTTPSource{URL: l.URL, Client: client}
		} else {
			src = engine.FileSource{Path: l.Path}
		}
		vl := engine.NewVectorLayer(l.Name, src)
		if l.Hidden {
			vl.SetVisible(false)
		}
		out = append(out, vl)
	}
	return out
}

// loadNow loads l synchronously, for the non-interactive commands.
func loadNow(ctx context.Context, l *engine.VectorLayer) error {
	fc, err := l.Source().Load(ctx)
	if err != nil {
		return err
	}
	l.SetFeatures(fc)
	return nil
}
