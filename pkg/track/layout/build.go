package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// Option configures [Build].
type Option func(*config)

type config struct {
	maxRows  int
	measurer LabelMeasurer
	width    float64
	logger   *log.Logger
}

// WithMaxRows sets the row budget. Negative values behave like 0.
func WithMaxRows(n int) Option { return func(c *config) { c.maxRows = n } }

// WithLabelCharWidth sets the per-character label width in pixels.
func WithLabelCharWidth(w float64) Option {
	return func(c *config) { c.measurer = CharWidth(w) }
}

// WithMeasurer replaces the label width heuristic.
func WithMeasurer(m LabelMeasurer) Option { return func(c *config) { c.measurer = m } }

// WithWidth records the viewport width on the resulting Layout. When the
// projector is a [LinearScale] its width is used by default.
func WithWidth(w float64) Option { return func(c *config) { c.width = w } }

// WithLogger enables debug logging of dropped features.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// Build runs a full layout pass: filter and sort features against region,
// pack them into rows, and emit the Layout.
//
// Build never fails. Malformed features are counted in Layout.Malformed and
// logged at debug level.
func Build(features []genome.Feature, region genome.Region, project Projector, opts ...Option) Layout {
	c := config{
		maxRows:  DefaultMaxRows,
		measurer: CharWidth(DefaultLabelCharWidth),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	if s, ok := project.(LinearScale); ok {
		c.width = s.Width
	}
	for _, opt := range opts {
		opt(&c)
	}

	malformed := 0
	for i := range features {
		if !features[i].Valid() {
			malformed++
			c.logger.Debug("skipping malformed feature", "feature", features[i].String())
		}
	}

	visible := FilterAndSort(features, region)
	placements, hidden := Pack(visible, c.maxRows, project, c.measurer)

	l := Emit(region, c.width, c.maxRows, placements, hidden)
	l.Malformed = malformed
	return l
}
