// Package config loads the dashboard configuration from a YAML file with
// MAPDASH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mapdash/internal/logging"
	"mapdash/internal/theme"
)

const envPrefix = "MAPDASH"

type Config struct {
	Layers    []Layer           `mapstructure:"layers" yaml:"layers"`
	Watch     Watch             `mapstructure:"watch" yaml:"watch"`
	Theme     string            `mapstructure:"theme" yaml:"theme"` // dark | light | none
	NoColor   bool              `mapstructure:"no_color" yaml:"no_color"`
	Clipboard bool              `mapstructure:"clipboard" yaml:"clipboard"`
	Map       MapConfig         `mapstructure:"map" yaml:"map"`
	Log       logging.LogConfig `mapstructure:"log" yaml:"log"`
}

// Layer is one vector layer. Exactly one of Path and URL is set.
type Layer struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Path   string `mapstructure:"path" yaml:"path,omitempty"`
	URL    string `mapstructure:"url" yaml:"url,omitempty"`
	Hidden bool   `mapstructure:"hidden" yaml:"hidden,omitempty"`
}

type Watch struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type MapConfig struct {
	InspectorWidth int  `mapstructure:"inspector_width" yaml:"inspector_width"`
	MinMapWidth    int  `mapstructure:"min_map_width" yaml:"min_map_width"`
	ShowInspector  bool `mapstructure:"show_inspector" yaml:"show_inspector"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Watch:     Watch{Enabled: true, Debounce: 500 * time.Millisecond},
		Theme:     "dark",
		Clipboard: true,
		Map:       MapConfig{InspectorWidth: 36, MinMapWidth: 30, ShowInspector: true},
		Log:       logging.DefaultLogConfig(),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	d := Default()
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("no_color", d.NoColor)
	v.SetDefault("clipboard", d.Clipboard)
	v.SetDefault("map.inspector_width", d.Map.InspectorWidth)
	v.SetDefault("map.min_map_width", d.Map.MinMapWidth)
	v.SetDefault("map.show_inspector", d.Map.ShowInspector)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
	return v
}

// Load reads the YAML file at path, or only defaults and environment when path
// is empty, then validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	for i := range c.Layers {
		l := &c.Layers[i]
		if l.Name == "" {
			l.Name = defaultLayerName(*l, i)
		}
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
	if c.Map.InspectorWidth <= 0 {
		c.Map.InspectorWidth = d.Map.InspectorWidth
	}
	if c.Map.MinMapWidth <= 0 {
		c.Map.MinMapWidth = d.Map.MinMapWidth
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.OutputPaths == nil {
		c.Log.OutputPaths = d.Log.OutputPaths
	}
}

func defaultLayerName(l Layer, i int) string {
	base := l.Path
	if base == "" {
		base = l.URL
	}
	if j := strings.LastIndexAny(base, `/\`); j >= 0 {
		base = base[j+1:]
	}
	if k := strings.Index(base, "."); k > 0 {
		base = base[:k]
	}
	if base == "" {
		return fmt.Sprintf("layer%d", i+1)
	}
	return base
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, l := range c.Layers {
		switch {
		case l.Path == "" && l.URL == "":
			errs = append(errs, fmt.Errorf("layers[%d] %q: path or url is required", i, l.Name))
		case l.Path != "" && l.URL != "":
			errs = append(errs, fmt.Errorf("layers[%d] %q: path and url are exclusive", i, l.Name))
		}
		if seen[l.Name] {
			errs = append(errs, fmt.Errorf("layers[%d]: duplicate name %q", i, l.Name))
		}
		seen[l.Name] = true
	}
	if _, ok := theme.ByName(c.Theme); !ok {
		errs = append(errs, fmt.Errorf("theme %q: want dark, light or none", c.Theme))
	}
	return errors.Join(errs...)
}

// LayerNames returns the configured layer names, sorted.
func LayerNames(c *Config) []string {
	names := make([]string, 0, len(c.Layers))
	for _, l := range c.Layers {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// WatchedPaths lists the file-backed layers for the watcher.
func (c *Config) WatchedPaths() []string {
	var out []string
	for _, l := range c.Layers {
		if l.Path != "" {
			out = append(out, l.Path)
		}
	}
	return out
}
