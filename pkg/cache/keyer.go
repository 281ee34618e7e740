package cache

import (
	"maps"
	"slices"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// Keyer builds cache keys for each pipeline stage. An error means the
// inputs have no stable encoding and must not be cached.
type Keyer interface {
	// FeaturesKey identifies the features a source returned for a region.
	FeaturesKey(source string, region genome.Region) (string, error)
	// LayoutKey identifies a layout of a feature set.
	LayoutKey(featuresHash string, opts LayoutKeyOpts) (string, error)
	// ArtifactKey identifies one rendered format of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) (string, error)
}

// LayoutKeyOpts are the layout inputs that change the result.
type LayoutKeyOpts struct {
	Region         genome.Region `json:"region"`
	Width          float64       `json:"width"`
	MaxRows        int           `json:"max_rows"`
	LabelCharWidth float64       `json:"label_char_width"`
}

// ArtifactKeyOpts are the render inputs that change the output bytes.
type ArtifactKeyOpts struct {
	Format        string            `json:"format"`
	Style         string            `json:"style"`
	RowHeight     float64           `json:"row_height"`
	RowPadding    float64           `json:"row_padding"`
	HiddenPixels  float64           `json:"hidden_pixels"`
	Titles        bool              `json:"titles"`
	SegmentColors map[string]string `json:"segment_colors,omitempty"`
	Scale         float64           `json:"scale,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) FeaturesKey(source string, region genome.Region) (string, error) {
	return hashKey("features", source, region)
}

func (DefaultKeyer) LayoutKey(featuresHash string, opts LayoutKeyOpts) (string, error) {
	return hashKey("layout", featuresHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) (string, error) {
	// Map iteration order is random; encode colours as sorted pairs.
	colors := make([]string, 0, 2*len(opts.SegmentColors))
	for _, k := range slices.Sorted(maps.Keys(opts.SegmentColors)) {
		colors = append(colors, k, opts.SegmentColors[k])
	}
	opts.SegmentColors = nil
	return hashKey("artifact", layoutHash, opts, colors)
}
