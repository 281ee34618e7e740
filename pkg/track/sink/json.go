package sink

import (
	"encoding/json"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	id         string
	style      string
	rowHeight  float64
	rowPadding float64
}

// WithJSONID records a layout identifier, such as a pipeline result ID.
func WithJSONID(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

// WithJSONStyle records the style name used for the SVG rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONRows records the row geometry so clients can place rows the same
// way the SVG sink does.
func WithJSONRows(height, padding float64) JSONOption {
	return func(r *jsonRenderer) { r.rowHeight, r.rowPadding = height, padding }
}

type jsonOutput struct {
	ID         string          `json:"id,omitempty"`
	Region     genome.Region   `json:"region"`
	Width      float64         `json:"width"`
	MaxRows    int             `json:"max_rows"`
	RowHeight  float64         `json:"row_height,omitempty"`
	RowPadding float64         `json:"row_padding,omitempty"`
	Style      string          `json:"style,omitempty"`
	Hidden     int             `json:"hidden"`
	Malformed  int             `json:"malformed,omitempty"`
	Overflow   *jsonOverflow   `json:"overflow,omitempty"`
	Placements []jsonPlacement `json:"placements"`
}

type jsonOverflow struct {
	Text string `json:"text"`
	Row  int    `json:"row"`
}

type jsonPlacement struct {
	Name       string        `json:"name"`
	Chrom      string        `json:"chrom,omitempty"`
	Start      int64         `json:"start"`
	End        int64         `json:"end"`
	Strand     genome.Strand `json:"strand,omitempty"`
	Kind       genome.Kind   `json:"kind,omitempty"`
	Row        int           `json:"row"`
	Labeled    bool          `json:"labeled"`
	XStart     *float64      `json:"x_start,omitempty"`
	XEnd       *float64      `json:"x_end,omitempty"`
	LabelWidth float64       `json:"label_width,omitempty"`
}

// RenderJSON exports the layout as a pretty-printed JSON document. Pixel
// coordinates that are not finite (unprojectable features in the overflow
// row) are omitted.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		ID:         r.id,
		Region:     l.Region,
		Width:      l.Width,
		MaxRows:    l.MaxRows,
		RowHeight:  r.rowHeight,
		RowPadding: r.rowPadding,
		Style:      r.style,
		Hidden:     l.Hidden,
		Malformed:  l.Malformed,
		Placements: make([]jsonPlacement, 0, len(l.Placements)),
	}
	if m, ok := l.Overflow(); ok {
		out.Overflow = &jsonOverflow{Text: m.Text, Row: m.Row}
	}

	for _, p := range l.Placements {
		f := p.Feature
		jp := jsonPlacement{
			Name:       f.Name,
			Chrom:      f.Chrom,
			Start:      f.Start,
			End:        f.End,
			Strand:     f.Strand,
			Kind:       f.Kind,
			Row:        p.Row,
			Labeled:    p.Labeled,
			XStart:     finitePtr(p.XStart),
			XEnd:       finitePtr(p.XEnd),
			LabelWidth: p.LabelWidth,
		}
		out.Placements = append(out.Placements, jp)
	}

	return json.MarshalIndent(out, "", "  ")
}

func finitePtr(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return &v
}
