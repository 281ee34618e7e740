package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/genetrack/pkg/genome"
)

func TestSimpleRenderDefs(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderDefs(&buf)
	if buf.Len() != 0 {
		t.Errorf("RenderDefs() wrote %d bytes, want 0", buf.Len())
	}
}

func TestSimpleRenderGlyph(t *testing.T) {
	tests := []struct {
		name     string
		style    Simple
		glyph    Glyph
		contains []string
		absent   []string
	}{
		{
			name:  "annotation bar",
			glyph: Glyph{ID: "f0", Kind: genome.KindAnnotation, X: 10, Y: 20, W: 100, H: 15},
			contains: []string{
				`<rect id="f0"`,
				`class="glyph annotation"`,
				`x="10.00"`,
				`y="20.00"`,
				`width="100.00"`,
				`height="15.00"`,
			},
		},
		{
			name: "gene with exons",
			glyph: Glyph{
				ID: "f1", Kind: genome.KindGene, X: 0, Y: 0, W: 100, H: 10,
				Exons: []Span{{X: 0, W: 10}, {X: 90, W: 10}},
			},
			contains: []string{
				`class="glyph gene"`,
				`<line x1="0.00" y1="5.00" x2="100.00" y2="5.00"`,
				`<rect x="90.00" y="0.00" width="10.00"`,
			},
			absent: []string{`<polyline`},
		},
		{
			name:     "forward strand chevrons",
			glyph:    Glyph{ID: "f2", Kind: genome.KindGene, Strand: genome.StrandForward, X: 0, Y: 0, W: 45, H: 10},
			contains: []string{`<polyline points="7.00,2.00 10.00,5.00 7.00,8.00"`, `<polyline points="27.00,2.00 30.00,5.00 27.00,8.00"`},
		},
		{
			name:     "reverse strand chevrons",
			glyph:    Glyph{ID: "f3", Kind: genome.KindGene, Strand: genome.StrandReverse, X: 0, Y: 0, W: 20, H: 10},
			contains: []string{`<polyline points="13.00,2.00 10.00,5.00 13.00,8.00"`},
		},
		{
			name:     "deletion segment",
			glyph:    Glyph{ID: "s0", Kind: genome.KindSegment, Class: genome.SegmentDeletion, W: 5, H: 10},
			contains: []string{`fill="black"`, `class="glyph segment"`},
		},
		{
			name:     "insertion segment",
			glyph:    Glyph{ID: "s1", Kind: genome.KindSegment, Class: genome.SegmentInsertion, W: 5, H: 10},
			contains: []string{`fill="pink"`},
		},
		{
			name:     "mismatch segment",
			glyph:    Glyph{ID: "s2", Kind: genome.KindSegment, Class: genome.SegmentMismatch, W: 5, H: 10},
			contains: []string{`fill="orange"`},
		},
		{
			name:     "segment colour override",
			style:    Simple{SegmentColors: map[genome.SegmentClass]string{genome.SegmentMismatch: "#ff0000"}},
			glyph:    Glyph{ID: "s3", Kind: genome.KindSegment, Class: genome.SegmentMismatch, W: 5, H: 10},
			contains: []string{`fill="#ff0000"`},
		},
		{
			name:     "minimal glyph",
			glyph:    Glyph{ID: "m0", Kind: genome.KindGene, Minimal: true, X: 5, Y: 80, W: 30, H: 15},
			contains: []string{`class="glyph minimal"`, `y="86.50"`, `height="2.00"`},
			absent:   []string{`<line`},
		},
		{
			name:     "sub-pixel bar keeps one pixel",
			glyph:    Glyph{ID: "t", X: 5, W: 0.2, H: 10},
			contains: []string{`width="1.00"`, `class="glyph"`},
		},
		{
			name: "bar clipped to view",
			glyph: Glyph{
				ID: "c0", Kind: genome.KindAnnotation, X: -500, W: 1e9, H: 10,
				Clip: Span{X: 0, W: 800},
			},
			contains: []string{`x="0.00"`, `width="800.00"`},
		},
		{
			name: "gene clipped to view",
			glyph: Glyph{
				ID: "c1", Kind: genome.KindGene, Strand: genome.StrandForward, X: -1000, W: 2e6, H: 10,
				Exons: []Span{{X: -1000, W: 500}, {X: 50, W: 5000}},
				Clip:  Span{X: 0, W: 100},
			},
			contains: []string{
				`<line x1="0.00" y1="5.00" x2="100.00" y2="5.00"`,
				`<polyline points="7.00,2.00 10.00,5.00 7.00,8.00"`,
				`<rect x="50.00" y="0.00" width="50.00"`,
			},
			absent: []string{`<rect x="-1000.00"`, `110.00,5.00`},
		},
		{
			name:     "escaped id",
			glyph:    Glyph{ID: "a<b", W: 10, H: 10},
			contains: []string{`id="a&lt;b"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.style.RenderGlyph(&buf, tt.glyph)
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("RenderGlyph() output missing %q\nGot: %s", want, out)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(out, bad) {
					t.Errorf("RenderGlyph() output should not contain %q\nGot: %s", bad, out)
				}
			}
		})
	}
}

func TestSimpleChevronsBoundedByClip(t *testing.T) {
	g := Glyph{ID: "g", Kind: genome.KindGene, Strand: genome.StrandForward, X: 0, W: 2e6, H: 10, Clip: Span{X: 0, W: 800}}
	var buf bytes.Buffer
	Simple{}.RenderGlyph(&buf, g)
	if n := strings.Count(buf.String(), "<polyline"); n != 40 {
		t.Errorf("got %d chevrons, want 40 for an 800px view", n)
	}
}

func TestSimpleRenderLabel(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderLabel(&buf, Glyph{Label: "BRCA2 & co", Labeled: true, X: 100, Y: 20, H: 15})
	out := buf.String()
	for _, want := range []string{`x="97.00"`, `y="27.50"`, `text-anchor="end"`, `BRCA2 &amp; co`} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderLabel() output missing %q\nGot: %s", want, out)
		}
	}

	buf.Reset()
	Simple{}.RenderLabel(&buf, Glyph{Label: "hidden", Labeled: false})
	if buf.Len() != 0 {
		t.Errorf("unlabeled glyph wrote %q", buf.String())
	}
}

func TestSimpleRenderOverflow(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderOverflow(&buf, Marker{Text: "3 genes unlabeled", X: 10, Y: 85})
	out := buf.String()
	for _, want := range []string{`x="10.00"`, `y="85.00"`, `font-style="italic"`, `3 genes unlabeled`} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderOverflow() output missing %q\nGot: %s", want, out)
		}
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct{ h, want float64 }{
		{h: 5, want: labelFontMin},
		{h: 15, want: 12},
		{h: 100, want: labelFontMax},
	}
	for _, tt := range tests {
		if got := LabelFontSize(tt.h); got != tt.want {
			t.Errorf("LabelFontSize(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestWithTitle(t *testing.T) {
	var buf bytes.Buffer
	WithTitle(&buf, "A <chr1>", func() { buf.WriteString("X") })
	if got := buf.String(); !strings.Contains(got, "<title>A &lt;chr1&gt;</title>") || !strings.Contains(got, "X") {
		t.Errorf("WithTitle() = %q", got)
	}

	buf.Reset()
	WithTitle(&buf, "", func() { buf.WriteString("X") })
	if buf.String() != "X" {
		t.Errorf("WithTitle(\"\") = %q, want %q", buf.String(), "X")
	}
}
