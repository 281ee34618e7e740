package pipeline

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// GenerateLayout packs features into rows for opts.Region using a linear
// scale of opts.Width pixels. Options must have layout defaults applied.
func GenerateLayout(features []genome.Feature, opts Options) layout.Layout {
	scale := layout.LinearScale{Region: opts.Region, Width: opts.Width}
	return layout.Build(features, opts.Region, scale,
		layout.WithMaxRows(*opts.MaxRows),
		layout.WithLabelCharWidth(*opts.LabelCharWidth),
		layout.WithLogger(opts.Logger),
	)
}

// layoutRecord is the serialized form of a layout. Placements carry a copy
// of their feature so a cached layout can be rendered without the source.
type layoutRecord struct {
	Region     genome.Region     `json:"region"`
	Width      float64           `json:"width"`
	MaxRows    int               `json:"max_rows"`
	Hidden     int               `json:"hidden"`
	Malformed  int               `json:"malformed"`
	Placements []placementRecord `json:"placements"`
}

type placementRecord struct {
	Feature    genome.Feature `json:"feature"`
	Row        int            `json:"row"`
	Labeled    bool           `json:"labeled"`
	XStart     *float64       `json:"x_start,omitempty"`
	XEnd       *float64       `json:"x_end,omitempty"`
	LabelWidth float64        `json:"label_width"`
}

// MarshalLayout serializes l for caching. Non-finite coordinates, which
// JSON cannot represent, are stored as absent and restored as NaN.
func MarshalLayout(l layout.Layout) ([]byte, error) {
	rec := layoutRecord{
		Region:     l.Region,
		Width:      l.Width,
		MaxRows:    l.MaxRows,
		Hidden:     l.Hidden,
		Malformed:  l.Malformed,
		Placements: make([]placementRecord, len(l.Placements)),
	}
	for i, p := range l.Placements {
		rec.Placements[i] = placementRecord{
			Feature:    *p.Feature,
			Row:        p.Row,
			Labeled:    p.Labeled,
			XStart:     finitePtr(p.XStart),
			XEnd:       finitePtr(p.XEnd),
			LabelWidth: p.LabelWidth,
		}
	}
	return json.Marshal(rec)
}

// UnmarshalLayout restores a layout written by [MarshalLayout]. The
// returned placements point into a freshly allocated feature slice.
func UnmarshalLayout(data []byte) (layout.Layout, error) {
	var rec layoutRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return layout.Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	features := make([]genome.Feature, len(rec.Placements))
	placements := make([]layout.Placement, len(rec.Placements))
	for i, p := range rec.Placements {
		features[i] = p.Feature
		placements[i] = layout.Placement{
			Feature:    &features[i],
			Row:        p.Row,
			Labeled:    p.Labeled,
			XStart:     fromPtr(p.XStart),
			XEnd:       fromPtr(p.XEnd),
			LabelWidth: p.LabelWidth,
		}
	}

	l := layout.Emit(rec.Region, rec.Width, rec.MaxRows, placements, rec.Hidden)
	l.Malformed = rec.Malformed
	return l, nil
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromPtr(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
