package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
	"github.com/matzehuels/genetrack/pkg/track/styles"
)

const (
	DefaultRowHeight  = 15.0
	DefaultRowPadding = 5.0

	overflowMarkerX = 10.0
	overflowMarkerY = 5.0
)

const trackInteractionCSS = `
    .glyph { cursor: default; }
    .glyph:hover { opacity: 0.75; }
    .label { pointer-events: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style        styles.Style
	rowHeight    float64
	rowPadding   float64
	hiddenPixels float64
	offset       float64
	titles       bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithRowHeight(h float64) SVGOption  { return func(r *svgRenderer) { r.rowHeight = h } }
func WithRowPadding(p float64) SVGOption { return func(r *svgRenderer) { r.rowPadding = p } }

// WithHiddenPixels skips drawing glyphs narrower than px pixels. Their
// placements are still part of the layout.
func WithHiddenPixels(px float64) SVGOption { return func(r *svgRenderer) { r.hiddenPixels = px } }

// WithOffset translates the whole track horizontally, as during a drag.
func WithOffset(dx float64) SVGOption { return func(r *svgRenderer) { r.offset = dx } }

// WithTitles adds a hover <title> to each feature.
func WithTitles() SVGOption { return func(r *svgRenderer) { r.titles = true } }

// RenderSVG draws the layout as a standalone SVG document.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	width := l.Width
	if width <= 0 {
		width = r.extent(l)
	}
	height := r.height(l)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	r.style.RenderDefs(&buf)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", trackInteractionCSS)

	if r.offset != 0 {
		fmt.Fprintf(&buf, `  <g transform="translate(%.2f,0)">`+"\n", r.offset)
	}

	glyphs := r.buildGlyphs(l, styles.Span{X: -r.offset, W: width})
	for _, g := range glyphs {
		styles.WithTitle(&buf, g.Title, func() { r.style.RenderGlyph(&buf, g) })
	}
	for _, g := range glyphs {
		r.style.RenderLabel(&buf, g)
	}
	if m, ok := l.Overflow(); ok {
		r.style.RenderOverflow(&buf, styles.Marker{
			Text: m.Text,
			X:    overflowMarkerX,
			Y:    r.rowTop(m.Row) + overflowMarkerY,
		})
	}

	if r.offset != 0 {
		buf.WriteString("  </g>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		style:      styles.Simple{},
		rowHeight:  DefaultRowHeight,
		rowPadding: DefaultRowPadding,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r svgRenderer) rowTop(row int) float64 {
	return float64(row) * (r.rowHeight + r.rowPadding)
}

// height covers every real row, the overflow row and the marker below it.
func (r svgRenderer) height(l layout.Layout) float64 {
	return r.rowTop(l.MaxRows+1) + r.rowHeight
}

// extent is the rightmost drawn pixel, used when the layout has no width.
func (r svgRenderer) extent(l layout.Layout) float64 {
	w := 0.0
	for _, p := range l.Placements {
		if finite(p.XEnd) {
			w = max(w, p.XEnd)
		}
	}
	return w
}

// buildGlyphs positions the placements; clip is the visible range in
// layout coordinates.
func (r svgRenderer) buildGlyphs(l layout.Layout, clip styles.Span) []styles.Glyph {
	glyphs := make([]styles.Glyph, 0, len(l.Placements))
	for i, p := range l.Placements {
		if !finite(p.XStart) || !finite(p.XEnd) {
			continue
		}
		if p.Width() < r.hiddenPixels {
			continue
		}
		f := p.Feature
		g := styles.Glyph{
			ID:      fmt.Sprintf("feature-%d", i),
			Label:   f.Name,
			Kind:    f.Kind,
			Strand:  f.Strand,
			Class:   f.Class,
			X:       p.XStart,
			Y:       r.rowTop(p.Row),
			W:       p.Width(),
			H:       r.rowHeight,
			Exons:   exonSpans(p),
			Minimal: !p.Labeled,
			Labeled: p.Labeled,
			Clip:    clip,
		}
		if f.IsGene() && g.Kind == "" {
			g.Kind = genome.KindGene
		}
		if r.titles {
			g.Title = Title(*f)
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

// exonSpans maps exons into the placement's pixel range.
func exonSpans(p layout.Placement) []styles.Span {
	f := p.Feature
	if len(f.Exons) == 0 || f.Len() <= 0 {
		return nil
	}
	scale := p.Width() / float64(f.Len())
	spans := make([]styles.Span, 0, len(f.Exons))
	for _, e := range f.Exons {
		s, end := max(e.Start, f.Start), min(e.End, f.End)
		if end <= s {
			continue
		}
		spans = append(spans, styles.Span{
			X: p.XStart + float64(s-f.Start)*scale,
			W: float64(end-s) * scale,
		})
	}
	return spans
}

// Title formats the hover text for a feature.
func Title(f genome.Feature) string {
	loc := genome.Region{Chrom: f.Chrom, Start: f.Start, End: f.End}.String()
	s := f.Name + " " + loc
	if f.Strand == genome.StrandForward || f.Strand == genome.StrandReverse {
		s += " (" + string(f.Strand) + ")"
	}
	if f.Class != "" {
		s += " " + string(f.Class)
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
