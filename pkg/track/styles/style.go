// Package styles defines how individual track elements are drawn to SVG.
//
// A [Style] receives fully positioned [Glyph] and [Marker] values from the
// SVG sink and writes their markup. [Simple] is the default style: genes as
// exon boxes on an intron line with strand chevrons, annotations as plain
// bars, pairwise segments coloured by class, and thin "minimal" bars for
// features in the overflow row.
package styles

import (
	"bytes"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// Style draws track elements.
type Style interface {
	// RenderDefs writes SVG <defs> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderGlyph writes the shape of one feature.
	RenderGlyph(buf *bytes.Buffer, g Glyph)
	// RenderLabel writes the label drawn left of a feature.
	RenderLabel(buf *bytes.Buffer, g Glyph)
	// RenderOverflow writes the "n genes unlabeled" note.
	RenderOverflow(buf *bytes.Buffer, m Marker)
}

// Glyph is a feature positioned in pixel space.
type Glyph struct {
	ID     string
	Label  string
	Title  string // hover text
	Kind   genome.Kind
	Strand genome.Strand
	Class  genome.SegmentClass

	X, Y, W, H float64

	// Exons are the exon boxes in pixel space, for gene models.
	Exons []Span

	// Minimal glyphs are drawn as thin unlabeled bars.
	Minimal bool
	Labeled bool

	// Clip is the visible pixel range. Shapes are cut to it, so a feature
	// spanning a whole chromosome costs no more than one spanning the
	// view. A zero Clip draws everything.
	Clip Span
}

// Span is a horizontal pixel interval.
type Span struct{ X, W float64 }

// CenterY returns the vertical midline of the glyph.
func (g Glyph) CenterY() float64 { return g.Y + g.H/2 }

// clip intersects [x, x+w) with the glyph's clip range and reports whether
// anything is left.
func (g Glyph) clip(x, w float64) (float64, float64, bool) {
	if g.Clip.W <= 0 {
		return x, w, true
	}
	lo := max(x, g.Clip.X)
	hi := min(x+w, g.Clip.X+g.Clip.W)
	return lo, hi - lo, hi > lo
}

// Marker is the overflow note. X and Y are the top-left of the text.
type Marker struct {
	Text string
	X, Y float64
}
