package sink

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

func buildLayout(t *testing.T, features []genome.Feature, maxRows int) layout.Layout {
	t.Helper()
	view := genome.Region{Chrom: "chr1", Start: 0, End: 1000}
	return layout.Build(features, view, layout.LinearScale{Region: view, Width: 1000},
		layout.WithMaxRows(maxRows),
		layout.WithLabelCharWidth(0),
	)
}

func TestRenderSVGRows(t *testing.T) {
	features := []genome.Feature{
		{Name: "A", Chrom: "chr1", Start: 0, End: 100, Kind: genome.KindAnnotation},
		{Name: "B", Chrom: "chr1", Start: 50, End: 150, Kind: genome.KindAnnotation},
	}
	l := buildLayout(t, features, 4)
	svg := string(RenderSVG(l))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`width="1000"`,
		`height="115"`, // 5 rows of 20 plus a final row height
		`id="feature-0" class="glyph annotation" x="0.00" y="0.00"`,
		`id="feature-1" class="glyph annotation" x="50.00" y="20.00"`,
		`>A</text>`,
		`>B</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q\nGot: %s", want, svg)
		}
	}
	if strings.Contains(svg, "unlabeled") {
		t.Error("no overflow note expected when every feature is labeled")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG should be closed")
	}
}

func TestRenderSVGClipsWideFeatures(t *testing.T) {
	view := genome.Region{Chrom: "chr1", Start: 1000, End: 2000}
	features := []genome.Feature{
		{Name: "long", Chrom: "chr1", Start: 1000, End: 2_001_000, Kind: genome.KindGene, Strand: genome.StrandForward},
		{Name: "chrom", Chrom: "chr1", Start: 0, End: 248_956_422, Kind: genome.KindAnnotation},
	}
	l := layout.Build(features, view, layout.LinearScale{Region: view, Width: 800},
		layout.WithLabelCharWidth(0))

	svg := string(RenderSVG(l))
	if len(svg) > 10_000 {
		t.Errorf("SVG is %d bytes for an 800px view", len(svg))
	}
	if n := strings.Count(svg, "<polyline"); n != 40 {
		t.Errorf("got %d chevrons, want 40", n)
	}
	if !strings.Contains(svg, `<line x1="0.00" y1="7.50" x2="800.00"`) {
		t.Errorf("intron line not clipped to the view\nGot: %s", svg)
	}
	if !strings.Contains(svg, `class="glyph minimal" x="0.00"`) || !strings.Contains(svg, `width="800.00" height="2.00"`) {
		t.Errorf("overflow glyph not clipped to the view\nGot: %s", svg)
	}
}

func TestRenderSVGOverflow(t *testing.T) {
	features := []genome.Feature{
		{Name: "A", Start: 0, End: 100},
		{Name: "B", Start: 10, End: 110},
		{Name: "C", Start: 20, End: 120},
	}
	l := buildLayout(t, features, 1)
	svg := string(RenderSVG(l))

	// Row 1 is the overflow row: top at 20, note 5 below.
	for _, want := range []string{
		`class="overflow" x="10.00" y="25.00"`,
		`font-style="italic"`,
		`2 genes unlabeled`,
		`class="glyph minimal"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q\nGot: %s", want, svg)
		}
	}
	if strings.Contains(svg, ">B</text>") || strings.Contains(svg, ">C</text>") {
		t.Error("overflow features must not be labeled")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	features := []genome.Feature{
		{Name: "wide", Chrom: "chr1", Start: 0, End: 500, Strand: genome.StrandForward, Kind: genome.KindGene,
			Exons: []genome.Exon{{Start: 0, End: 100}, {Start: 400, End: 500}}},
		{Name: "tiny", Chrom: "chr1", Start: 600, End: 601},
	}
	l := buildLayout(t, features, 4)

	t.Run("hidden pixels", func(t *testing.T) {
		svg := string(RenderSVG(l, WithHiddenPixels(2)))
		if strings.Contains(svg, ">tiny<") {
			t.Error("glyph narrower than hiddenPixels should not be drawn")
		}
		if !strings.Contains(svg, ">wide<") {
			t.Error("wide glyph should be drawn")
		}
	})

	t.Run("offset", func(t *testing.T) {
		svg := string(RenderSVG(l, WithOffset(-30)))
		if !strings.Contains(svg, `<g transform="translate(-30.00,0)">`) {
			t.Errorf("missing translate group\nGot: %s", svg)
		}
	})

	t.Run("titles", func(t *testing.T) {
		svg := string(RenderSVG(l, WithTitles()))
		if !strings.Contains(svg, "<title>wide chr1:0-500 (+)</title>") {
			t.Errorf("missing title\nGot: %s", svg)
		}
	})

	t.Run("exons", func(t *testing.T) {
		svg := string(RenderSVG(l))
		if !strings.Contains(svg, `<rect x="400.00" y="0.00" width="100.00"`) {
			t.Errorf("second exon not positioned\nGot: %s", svg)
		}
	})

	t.Run("row geometry", func(t *testing.T) {
		svg := string(RenderSVG(l, WithRowHeight(10), WithRowPadding(0)))
		if !strings.Contains(svg, `height="60"`) {
			t.Errorf("expected height 60 for 6 rows of 10\nGot: %s", svg)
		}
	})
}

func TestRenderSVGSkipsNaN(t *testing.T) {
	features := []genome.Feature{{Name: "A", Start: 0, End: 10}}
	view := genome.Region{Start: 0, End: 100}
	nan := layout.ProjectorFunc(func(int64) float64 { return math.NaN() })
	l := layout.Build(features, view, nan, layout.WithWidth(100))

	svg := string(RenderSVG(l))
	if strings.Contains(svg, "NaN") {
		t.Errorf("SVG must not contain NaN coordinates\nGot: %s", svg)
	}
	if !strings.Contains(svg, "1 gene unlabeled") {
		t.Error("NaN feature should still be counted")
	}
}

func TestExonSpansClamped(t *testing.T) {
	f := genome.Feature{Start: 100, End: 200, Exons: []genome.Exon{{Start: 50, End: 120}, {Start: 300, End: 400}}}
	spans := exonSpans(layout.Placement{Feature: &f, XStart: 0, XEnd: 50})
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].X != 0 || spans[0].W != 10 {
		t.Errorf("span = %+v, want {0 10}", spans[0])
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		f    genome.Feature
		want string
	}{
		{genome.Feature{Name: "A", Start: 1, End: 2}, "A 1-2"},
		{genome.Feature{Name: "B", Chrom: "chrX", Start: 1, End: 2, Strand: genome.StrandReverse}, "B chrX:1-2 (-)"},
		{genome.Feature{Name: "S", Start: 5, End: 9, Class: genome.SegmentInsertion}, "S 5-9 insertion"},
	}
	for _, tt := range tests {
		if got := Title(tt.f); got != tt.want {
			t.Errorf("Title() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	features := []genome.Feature{
		{Name: "A", Chrom: "chr1", Start: 0, End: 100},
		{Name: "B", Chrom: "chr1", Start: 10, End: 110},
	}
	l := buildLayout(t, features, 1)

	data, err := RenderJSON(l, WithJSONID("abc"), WithJSONStyle("simple"), WithJSONRows(15, 5))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.ID != "abc" || out.Style != "simple" {
		t.Errorf("ID/Style = %q/%q", out.ID, out.Style)
	}
	if out.RowHeight != 15 || out.RowPadding != 5 {
		t.Errorf("row geometry = %v/%v", out.RowHeight, out.RowPadding)
	}
	if out.Hidden != 1 {
		t.Errorf("Hidden = %d, want 1", out.Hidden)
	}
	if out.Overflow == nil || out.Overflow.Text != "1 gene unlabeled" || out.Overflow.Row != 1 {
		t.Errorf("Overflow = %+v", out.Overflow)
	}
	if len(out.Placements) != 2 {
		t.Fatalf("Placements = %d, want 2", len(out.Placements))
	}
	if p := out.Placements[1]; p.Name != "B" || p.Row != 1 || p.Labeled {
		t.Errorf("second placement = %+v", p)
	}
	if out.Placements[0].XStart == nil || *out.Placements[0].XStart != 0 {
		t.Error("x_start should be exported for finite coordinates")
	}
}

func TestRenderJSONNaN(t *testing.T) {
	features := []genome.Feature{{Name: "A", Start: 0, End: 10}}
	nan := layout.ProjectorFunc(func(int64) float64 { return math.NaN() })
	l := layout.Build(features, genome.Region{Start: 0, End: 100}, nan)

	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if strings.Contains(string(data), "x_start") {
		t.Errorf("non-finite coordinates should be omitted\nGot: %s", data)
	}
}

func TestToDOT(t *testing.T) {
	features := []genome.Feature{
		{Name: "A", Start: 0, End: 100},
		{Name: "B", Start: 200, End: 300},
		{Name: "C", Start: 10, End: 110},
		{Name: "D", Start: 20, End: 120},
	}
	l := buildLayout(t, features, 2)
	dot := ToDOT(l, DOTOptions{})

	for _, want := range []string{
		"digraph rows {",
		"subgraph cluster_row0 {",
		`label="row 0";`,
		"f0 -> f3;",
		"subgraph cluster_row2 {",
		`label="1 gene unlabeled";`,
		"style=dashed;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\nGot: %s", want, dot)
		}
	}

	detailed := ToDOT(l, DOTOptions{Detailed: true})
	if !strings.Contains(detailed, `label="A\n0-100\nx: 0.0-100.0"`) {
		t.Errorf("detailed label missing\nGot: %s", detailed)
	}
}
