package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mapdash/internal/clip"
	"mapdash/internal/config"
	"mapdash/internal/engine"
	"mapdash/internal/logging"
	"mapdash/internal/tui"
	"mapdash/internal/tui/widgets/featureview"
	"mapdash/internal/tui/widgets/kvtable"
	"mapdash/internal/watcher"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	var (
		themeName   string
		noColor     bool
		noWatch     bool
		noClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the interactive map dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("theme") {
				c.Theme = themeName
			}
			if noColor {
				c.NoColor = true
			}
			if noWatch {
				c.Watch.Enabled = false
			}
			if noClipboard {
				c.Clipboard = false
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if len(c.Layers) == 0 {
				return errors.New("no layers: add some to " + defaultConfig + " or pass --source")
			}
			return runView(cmd.Context(), c)
		},
	}
	f := cmd.Flags()
	f.StringVar(&themeName, "theme", "dark", "color theme: dark, light or none")
	f.BoolVar(&noColor, "no-color", false, "disable colors (also honors NO_COLOR)")
	f.BoolVar(&noWatch, "no-watch", false, "do not reload file layers when they change")
	f.BoolVar(&noClipboard, "no-clipboard", false, "disable copying properties to the clipboard")
	return cmd
}

func runView(ctx context.Context, c *config.Config) error {
	log, err := logging.NewLogger(c.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync()

	d, err := tui.New(tui.Options{
		Layers:         buildLayers(c),
		Theme:          c.Theme,
		NoColor:        c.NoColor,
		Clipboard:      clip.New(c.Clipboard),
		Logger:         log,
		ShowInspector:  c.Map.ShowInspector,
		InspectorWidth: c.Map.InspectorWidth,
		MinMapWidth:    c.Map.MinMapWidth,
	})
	if err != nil {
		return err
	}
	p := tui.NewProgram(d, tea.WithContext(ctx))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if paths := c.WatchedPaths(); c.Watch.Enabled && len(paths) > 0 {
		w := watcher.New(paths, func(path string) {
			p.Send(tui.LayerChangedMsg{Path: path})
		}).WithDebounce(c.Watch.Debounce).WithLogger(log)
		if _, err := w.Start(ctx); err != nil {
			log.Warn("layer watch disabled", logging.Err(err))
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var (
		layer string
		ids   []string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print feature properties without opening the dashboard",
		Example: `  mapdash inspect --layer wells --id w12
  mapdash inspect -s data/wells.geojson --layer wells --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if layer == "" {
				return errors.New("--layer is required")
			}
			if !all && len(ids) == 0 {
				return errors.New("pass --id or --all")
			}
			c, err := loadConfig(opts)
			if err != nil {
				return err
			}
			var target *engine.VectorLayer
			for _, l := range buildLayers(c) {
				if l.Name() == layer {
					target = l
				}
			}
			if target == nil {
				return fmt.Errorf("unknown layer %q (have %v)", layer, config.LayerNames(c))
			}
			if err := loadNow(cmd.Context(), target); err != nil {
				return fmt.Errorf("load %s: %w", layer, err)
			}
			feats := target.Features()
			if !all {
				feats = feats[:0]
				for _, id := range ids {
					f, ok := target.Feature(id)
					if !ok {
						return fmt.Errorf("layer %s has no feature %q", layer, id)
					}
					feats = append(feats, f)
				}
			}
			printFeatures(cmd.OutOrStdout(), feats)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&layer, "layer", "", "layer to read")
	f.StringSliceVar(&ids, "id", nil, "feature id (repeatable)")
	f.BoolVar(&all, "all", false, "print every feature of the layer")
	return cmd
}

func printFeatures(w io.Writer, feats []*engine.Feature) {
	for i, f := range feats {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "# %s\n", f.Key())
		fmt.Fprint(w, kvtable.Plain(featureview.Project(f)))
	}
}

func newLayersCmd(opts *rootOptions) *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List configured layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, l := range buildLayers(c) {
				src := c.Layers[i].URL
				if src == "" {
					src = shortPath(c.Layers[i].Path)
				}
				line := fmt.Sprintf("%-16s %s", l.Name(), src)
				if !l.Visible() {
					line += "  (hidden)"
				}
				if count {
					if err := loadNow(cmd.Context(), l); err != nil {
						line += "  error: " + err.Error()
					} else {
						line += fmt.Sprintf("  %d features", l.Len())
					}
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&count, "count", false, "load each layer and count its features")
	return cmd
}

const sampleConfig = `# mapdash configuration
layers:
  - name: wells
    path: data/wells.geojson
  # - name: pipes
  #   url: https://example.org/pipes.geojson
watch:
  enabled: true
  debounce: 500ms
theme: dark
clipboard: true
map:
  show_inspector: true
  inspector_width: 36
  min_map_width: 30
log:
  level: info
  format: json
  output_paths: [mapdash.log]
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample " + defaultConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, err := os.Stat(defaultConfig); !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, defaultConfig, "already exists; not overwriting")
				return nil
			}
			if err := os.WriteFile(defaultConfig, []byte(sampleConfig), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", defaultConfig, err)
			}
			fmt.Fprintln(out, "Wrote", defaultConfig)
			return nil
		},
	}
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that every layer loads and the clipboard works",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ok := true
			fmt.Fprintln(out, "Layer checks:")
			for _, l := range buildLayers(c) {
				if err := loadNow(cmd.Context(), l); err != nil {
					fmt.Fprintf(out, "  ✗ %s: %v\n", l.Name(), err)
					ok = false
					continue
				}
				fmt.Fprintf(out, "  ✓ %s (%d features)\n", l.Name(), l.Len())
			}
			if clip.New(c.Clipboard).Available() {
				fmt.Fprintln(out, "  ✓ clipboard")
			} else {
				fmt.Fprintln(out, "  ✗ clipboard unavailable")
			}
			if !ok {
				return errors.New("some layers failed to load")
			}
			fmt.Fprintln(out, "All layers load.")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mapdash", Version)
		},
	}
}
