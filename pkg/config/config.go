// Package config loads genetrack settings from a TOML file.
//
// Every field has a default, so an empty or missing file is valid. CLI flags
// override whatever the file sets.
//
//	[track]
//	max_rows = 6
//	label_char_width = 8
//
//	[drag]
//	min_distance = 20
//
//	[render]
//	style = "simple"
//	row_height = 15
//	row_padding = 5
//	hidden_pixels = 1
//
//	[render.segment_colors]
//	deletion = "black"
//	insertion = "#ff69b4"
//	mismatch = "orange"
//
//	[cache]
//	dir = "~/.cache/genetrack"
//	redis_url = "redis://localhost:6379/0"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "genetrack"
//	collection = "features"
//
//	[server]
//	addr = ":8080"
//	data_dir = "./tracks"
//	read_timeout = "10s"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/drag"
	"github.com/matzehuels/genetrack/pkg/track/layout"
	"github.com/matzehuels/genetrack/pkg/track/sink"
	"github.com/matzehuels/genetrack/pkg/track/styles"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Config is the parsed configuration file.
type Config struct {
	Track  Track  `toml:"track"`
	Drag   Drag   `toml:"drag"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Mongo  Mongo  `toml:"mongo"`
	Server Server `toml:"server"`
}

// Track configures row packing.
type Track struct {
	MaxRows        int     `toml:"max_rows"`
	LabelCharWidth float64 `toml:"label_char_width"`
}

// Drag configures the drag-to-pan gesture.
type Drag struct {
	MinDistance float64 `toml:"min_distance"`
}

// Render configures the SVG sink.
type Render struct {
	Style         string            `toml:"style"`
	RowHeight     float64           `toml:"row_height"`
	RowPadding    float64           `toml:"row_padding"`
	HiddenPixels  float64           `toml:"hidden_pixels"`
	Titles        bool              `toml:"titles"`
	SegmentColors map[string]string `toml:"segment_colors"`
}

// Cache selects the cache backend. RedisURL wins over Dir when set.
type Cache struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Disabled bool   `toml:"disabled"`
}

// Mongo configures the feature store.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr"`
	DataDir      string   `toml:"data_dir"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	colors := make(map[string]string, len(styles.DefaultSegmentColors))
	for k, v := range styles.DefaultSegmentColors {
		colors[string(k)] = v
	}
	return Config{
		Track: Track{
			MaxRows:        layout.DefaultMaxRows,
			LabelCharWidth: layout.DefaultLabelCharWidth,
		},
		Drag: Drag{MinDistance: drag.DefaultMinDistance},
		Render: Render{
			Style:         "simple",
			RowHeight:     sink.DefaultRowHeight,
			RowPadding:    sink.DefaultRowPadding,
			SegmentColors: colors,
		},
		Mongo: Mongo{
			Database:   "genetrack",
			Collection: "features",
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
	}
}

// Load reads path on top of [Default]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, keeping fields the data does not set,
// and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg.Validate()
}

// Validate checks ranges and colour values.
func (c Config) Validate() error {
	switch {
	case c.Track.MaxRows < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "track.max_rows cannot be negative")
	case c.Track.LabelCharWidth < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "track.label_char_width cannot be negative")
	case c.Drag.MinDistance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "drag.min_distance cannot be negative")
	case c.Render.RowHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render.row_height must be positive")
	case c.Render.RowPadding < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render.row_padding cannot be negative")
	case c.Render.HiddenPixels < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render.hidden_pixels cannot be negative")
	}
	if c.Render.Style != "" && c.Render.Style != "simple" {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown style %q", c.Render.Style)
	}
	for class, color := range c.Render.SegmentColors {
		if !knownSegmentClass(class) {
			return errors.New(errors.ErrCodeInvalidConfig, "render.segment_colors: unknown class %q", class)
		}
		if err := errors.ValidateColor(color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.segment_colors.%s", class)
		}
	}
	return nil
}

func knownSegmentClass(class string) bool {
	_, ok := styles.DefaultSegmentColors[genome.SegmentClass(class)]
	return ok
}

// SegmentColorMap converts the configured colours for the SVG style.
func (r Render) SegmentColorMap() map[genome.SegmentClass]string {
	if len(r.SegmentColors) == 0 {
		return nil
	}
	out := make(map[genome.SegmentClass]string, len(r.SegmentColors))
	for k, v := range r.SegmentColors {
		out[genome.SegmentClass(k)] = v
	}
	return out
}

// DefaultPath returns $XDG_CONFIG_HOME/genetrack/config.toml, falling back
// to the OS user config directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "genetrack", FileName)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "genetrack", FileName)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
