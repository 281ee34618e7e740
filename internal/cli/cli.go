package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/buildinfo"
	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/config"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "genetrack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is the loaded config file, or the defaults before the root
	// command has run.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Genetrack lays out and renders genome annotation tracks",
		Long: `Genetrack packs genes, annotations and alignment segments into rows the
way a genome browser track does, and renders the result as SVG, PNG, PDF,
JSON or a Graphviz row graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/genetrack/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.rowgraphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default location when the flag
// is unset. Only an explicitly named file has to exist.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache picks Redis when a URL is configured, the file cache otherwise.
// A cache directory that cannot be determined disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, Prefix: appName + ":"})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/genetrack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// basePath strips the input extension (and a trailing .gz) to derive output
// names, or strips a known format extension from an explicit output.
func basePath(output, input string) string {
	if output == "" {
		input = strings.TrimSuffix(input, ".gz")
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionsFromConfig maps the config file onto pipeline options.
func optionsFromConfig(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		MaxRows:        pipeline.Int(cfg.Track.MaxRows),
		LabelCharWidth: pipeline.Float(cfg.Track.LabelCharWidth),
		Style:          cfg.Render.Style,
		RowHeight:      cfg.Render.RowHeight,
		RowPadding:     pipeline.Float(cfg.Render.RowPadding),
		HiddenPixels:   cfg.Render.HiddenPixels,
		Titles:         cfg.Render.Titles,
		SegmentColors:  cfg.Render.SegmentColors,
	}
}

// trackFlags are the layout and render flags shared by the track commands.
// Flags the user did not set leave the config file values in place.
type trackFlags struct {
	region         string
	width          float64
	maxRows        int
	labelCharWidth float64
	style          string
	rowHeight      float64
	rowPadding     float64
	hiddenPixels   float64
	titles         bool
	refresh        bool
	noCache        bool
}

func (f *trackFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.region, "region", "r", "", "view region chrom:start-end (default: extent of the first chromosome)")
	fs.Float64VarP(&f.width, "width", "w", pipeline.DefaultWidth, "viewport width in pixels")
	fs.IntVar(&f.maxRows, "max-rows", layout.DefaultMaxRows, "rows before features move to the overflow row")
	fs.Float64Var(&f.labelCharWidth, "label-char-width", layout.DefaultLabelCharWidth, "estimated label width per character (0 disables labels)")
	fs.StringVar(&f.style, "style", pipeline.DefaultStyle, "visual style: simple")
	fs.Float64Var(&f.rowHeight, "row-height", 0, "row height in pixels")
	fs.Float64Var(&f.rowPadding, "row-padding", 0, "gap between rows in pixels")
	fs.Float64Var(&f.hiddenPixels, "hidden-pixels", 0, "skip glyphs narrower than this many pixels")
	fs.BoolVar(&f.titles, "titles", false, "add hover titles with feature details")
	fs.BoolVar(&f.refresh, "refresh", false, "reload features even if cached")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options builds pipeline options from the config file and the flags set
// on cmd.
func (c *CLI) options(cmd *cobra.Command, input string, f *trackFlags) (pipeline.Options, error) {
	opts := optionsFromConfig(c.Config)
	opts.Input = input
	opts.Width = f.width
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	changed := cmd.Flags().Changed
	if changed("max-rows") {
		opts.MaxRows = pipeline.Int(f.maxRows)
	}
	if changed("label-char-width") {
		opts.LabelCharWidth = pipeline.Float(f.labelCharWidth)
	}
	if changed("style") {
		opts.Style = f.style
	}
	if changed("row-height") {
		opts.RowHeight = f.rowHeight
	}
	if changed("row-padding") {
		opts.RowPadding = pipeline.Float(f.rowPadding)
	}
	if changed("hidden-pixels") {
		opts.HiddenPixels = f.hiddenPixels
	}
	if changed("titles") {
		opts.Titles = f.titles
	}

	if f.region != "" {
		region, err := genome.ParseRegion(f.region)
		if err != nil {
			return opts, err
		}
		opts.Region = region
	}
	return opts, nil
}

// loadTrack loads the features for opts and, when no region was given,
// sets the region to the extent of the first chromosome in the track.
func loadTrack(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options) ([]genome.Feature, bool, error) {
	features, cached, err := runner.LoadWithCacheInfo(ctx, *opts)
	if err != nil {
		return nil, false, err
	}
	if opts.Region.Chrom == "" && opts.Region.Empty() {
		extent, ok := featureExtent(features)
		if !ok {
			return nil, false, fmt.Errorf("%s: no valid features to derive a region from", opts.Input)
		}
		opts.Region = extent
		loggerFromContext(ctx).Debug("using track extent", "region", extent)
	}
	return features, cached, nil
}

// featureExtent returns the span of the valid features on the chromosome of
// the first valid feature.
func featureExtent(features []genome.Feature) (genome.Region, bool) {
	var (
		r     genome.Region
		found bool
	)
	for _, f := range features {
		switch {
		case !f.Valid():
		case !found:
			r, found = genome.Region{Chrom: f.Chrom, Start: f.Start, End: f.End}, true
		case f.Chrom == r.Chrom:
			r.Start = min(r.Start, f.Start)
			r.End = max(r.End, f.End)
		}
	}
	return r, found
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
