// Package pipeline provides the load → layout → render pipeline for genetrack.
//
// The CLI and the HTTP server both go through this package so that default
// values, validation and caching behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read features from a [Source] (a BED/JSON file or MongoDB)
//  2. Layout: filter to the view region and pack features into rows
//  3. Render: produce SVG, PNG, PDF, JSON or DOT output
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "genes.bed",
//	    Region:  genome.Region{Chrom: "chr1", Start: 11000, End: 30000},
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	features, err := runner.Load(ctx, opts)
//	l, err := runner.ComputeLayout(ctx, features, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
	"github.com/matzehuels/genetrack/pkg/track/sink"
)

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1000.0

	// DefaultStyle is the default visual style.
	DefaultStyle = StyleSimple

	// StyleSimple is the flat genome browser style.
	StyleSimple = "simple"
)

// Limits on caller-supplied geometry. The packer allocates one extent per
// row and renderers emit output proportional to the width, so requests
// beyond these are rejected rather than served.
const (
	MaxRowsLimit = 1000
	MaxWidth     = 100_000.0
	MaxRowHeight = 1000.0
	MaxScale     = 10.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple: true,
}

// Options contains all configuration for a pipeline run.
// Zero values mean "use the default"; MaxRows, LabelCharWidth and RowPadding
// are pointers because zero is a meaningful setting for them.
type Options struct {
	// Load options
	Input   string        `json:"input,omitempty"`
	Region  genome.Region `json:"region"`
	Refresh bool          `json:"refresh,omitempty"`

	// Layout options
	Width          float64  `json:"width,omitempty"`
	MaxRows        *int     `json:"max_rows,omitempty"`
	LabelCharWidth *float64 `json:"label_char_width,omitempty"`

	// Render options
	Formats       []string          `json:"formats,omitempty"`
	Style         string            `json:"style,omitempty"`
	RowHeight     float64           `json:"row_height,omitempty"`
	RowPadding    *float64          `json:"row_padding,omitempty"`
	HiddenPixels  float64           `json:"hidden_pixels,omitempty"`
	Titles        bool              `json:"titles,omitempty"`
	SegmentColors map[string]string `json:"segment_colors,omitempty"`
	Scale         float64           `json:"scale,omitempty"` // PNG only

	// Runtime options (not serialized)
	Source Source      `json:"-"` // overrides Input
	Logger *log.Logger `json:"-"`

	validated bool
}

// Int returns a pointer to n, for the optional integer options.
func Int(n int) *int { return &n }

// Float returns a pointer to v, for the optional float options.
func Float(v float64) *float64 { return &v }

// Result contains the outputs of a pipeline run.
type Result struct {
	// Features is the loaded feature set.
	Features []genome.Feature

	// FeaturesHash is the content hash of Features.
	FeaturesHash string

	// LayoutID identifies this run in logs and API responses.
	LayoutID string

	// Layout is the computed row assignment.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FeatureCount int
	Visible      int
	Hidden       int
	Malformed    int
	RowsUsed     int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be: simple)", style)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a feature source is configured.
func (o *Options) ValidateForLoad() error {
	if o.Source == nil {
		if o.Input == "" {
			return errors.New(errors.ErrCodeInvalidInput, "input file or feature source is required")
		}
		o.Source = FileSource{Path: o.Input}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.MaxRows == nil {
		o.MaxRows = Int(layout.DefaultMaxRows)
	}
	if o.LabelCharWidth == nil {
		o.LabelCharWidth = Float(layout.DefaultLabelCharWidth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and checks the region and width.
// A negative MaxRows is accepted; the packer treats it as zero.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateRegion(o.Region); err != nil {
		return err
	}
	if err := checkRange("width", o.Width, MaxWidth); err != nil {
		return err
	}
	if err := checkRange("label_char_width", *o.LabelCharWidth, MaxWidth); err != nil {
		return err
	}
	if *o.MaxRows > MaxRowsLimit {
		return errors.New(errors.ErrCodeInvalidInput, "max_rows cannot exceed %d", MaxRowsLimit)
	}
	return nil
}

// checkRange rejects non-finite values and values outside [0, limit].
func checkRange(name string, v, limit float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s cannot be negative", name)
	}
	if v > limit {
		return errors.New(errors.ErrCodeInvalidInput, "%s cannot exceed %g", name, limit)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.RowHeight == 0 {
		o.RowHeight = sink.DefaultRowHeight
	}
	if o.RowPadding == nil {
		o.RowPadding = Float(sink.DefaultRowPadding)
	}
	if o.Scale == 0 {
		o.Scale = 2
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and checks formats, style and
// segment colours.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	for _, c := range []struct {
		name     string
		v, limit float64
	}{
		{"row_height", o.RowHeight, MaxRowHeight},
		{"row_padding", *o.RowPadding, MaxRowHeight},
		{"hidden_pixels", o.HiddenPixels, MaxWidth},
		{"scale", o.Scale, MaxScale},
	} {
		if err := checkRange(c.name, c.v, c.limit); err != nil {
			return err
		}
	}
	for class, color := range o.SegmentColors {
		if err := errors.ValidateColor(color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStyle, err, "segment colour for %s", class)
		}
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Region:         o.Region,
		Width:          o.Width,
		MaxRows:        *o.MaxRows,
		LabelCharWidth: *o.LabelCharWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:        format,
		Style:         o.Style,
		RowHeight:     o.RowHeight,
		RowPadding:    *o.RowPadding,
		HiddenPixels:  o.HiddenPixels,
		Titles:        o.Titles,
		SegmentColors: o.SegmentColors,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
