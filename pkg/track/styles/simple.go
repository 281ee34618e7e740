package styles

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// DefaultSegmentColors are the fills used for pairwise alignment segments.
var DefaultSegmentColors = map[genome.SegmentClass]string{
	genome.SegmentDeletion:  "black",
	genome.SegmentInsertion: "pink",
	genome.SegmentMismatch:  "orange",
}

const (
	geneColor       = "#1f4e8c"
	annotationColor = "#4a7ab5"
	minimalColor    = "#999"
	segmentFallback = "gray"
	chevronSpacing  = 20.0
	chevronSize     = 3.0
	minimalHeight   = 2.0
)

// Simple is a flat, colour-coded style.
type Simple struct {
	// SegmentColors overrides DefaultSegmentColors per class.
	SegmentColors map[genome.SegmentClass]string
}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (s Simple) RenderGlyph(buf *bytes.Buffer, g Glyph) {
	switch {
	case g.Minimal:
		s.renderMinimal(buf, g)
	case g.Kind == genome.KindSegment:
		s.renderSegment(buf, g)
	case g.Kind == genome.KindGene || len(g.Exons) > 0:
		s.renderGene(buf, g)
	default:
		renderBar(buf, g, annotationColor)
	}
}

func (s Simple) RenderLabel(buf *bytes.Buffer, g Glyph) {
	if !g.Labeled || g.Minimal || g.Label == "" {
		return
	}
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" text-anchor="end" dominant-baseline="central" font-family="sans-serif" font-size="%.1f" fill="#333">%s</text>`+"\n",
		g.X-labelGap, g.CenterY(), LabelFontSize(g.H), EscapeXML(g.Label))
}

func (Simple) RenderOverflow(buf *bytes.Buffer, m Marker) {
	fmt.Fprintf(buf, `  <text class="overflow" x="%.2f" y="%.2f" dominant-baseline="hanging" font-family="sans-serif" font-size="11" font-style="italic" fill="#666">%s</text>`+"\n",
		m.X, m.Y, EscapeXML(m.Text))
}

func (s Simple) segmentColor(c genome.SegmentClass) string {
	if col, ok := s.SegmentColors[c]; ok {
		return col
	}
	if col, ok := DefaultSegmentColors[c]; ok {
		return col
	}
	return segmentFallback
}

func (s Simple) renderSegment(buf *bytes.Buffer, g Glyph) {
	renderBar(buf, g, s.segmentColor(g.Class))
}

func (Simple) renderMinimal(buf *bytes.Buffer, g Glyph) {
	x, w, ok := g.clip(g.X, g.W)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `  <rect id="%s" class="glyph minimal" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		EscapeXML(g.ID), x, g.CenterY()-minimalHeight/2, w, minimalHeight, minimalColor)
}

func (Simple) renderGene(buf *bytes.Buffer, g Glyph) {
	cy := g.CenterY()
	fmt.Fprintf(buf, `  <g id="%s" class="glyph gene">`+"\n", EscapeXML(g.ID))
	if x, w, ok := g.clip(g.X, g.W); ok {
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			x, cy, x+w, cy, geneColor)
	}
	renderChevrons(buf, g)

	exons := g.Exons
	if len(exons) == 0 {
		exons = []Span{{X: g.X, W: g.W}}
	}
	for _, e := range exons {
		x, w, ok := g.clip(e.X, max(e.W, 1))
		if !ok {
			continue
		}
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			x, g.Y, w, g.H, geneColor)
	}
	buf.WriteString("  </g>\n")
}

// renderChevrons draws strand direction marks along the intron line.
func renderChevrons(buf *bytes.Buffer, g Glyph) {
	var dir float64
	switch g.Strand {
	case genome.StrandForward:
		dir = 1
	case genome.StrandReverse:
		dir = -1
	default:
		return
	}
	lo, w, ok := g.clip(g.X, g.W)
	if !ok {
		return
	}
	// Keep the marks on the glyph's own grid when its start is cut off.
	first := g.X + chevronSpacing/2
	if lo > first {
		first += math.Ceil((lo-first)/chevronSpacing) * chevronSpacing
	}
	cy := g.CenterY()
	for x := first; x < lo+w; x += chevronSpacing {
		fmt.Fprintf(buf, `    <polyline points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
			x-dir*chevronSize, cy-chevronSize, x, cy, x-dir*chevronSize, cy+chevronSize, geneColor)
	}
}

func renderBar(buf *bytes.Buffer, g Glyph, fill string) {
	class := "glyph " + string(g.Kind)
	if g.Kind == "" {
		class = "glyph"
	}
	x, w, ok := g.clip(g.X, max(g.W, 1))
	if !ok {
		return
	}
	fmt.Fprintf(buf, `  <rect id="%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		EscapeXML(g.ID), class, x, g.Y, w, g.H, fill)
}
