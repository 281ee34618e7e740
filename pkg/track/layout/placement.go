package layout

import (
	"fmt"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// DefaultMaxRows is the row budget used when none is configured.
const DefaultMaxRows = 4

// Placement is the layout decision for a single feature.
type Placement struct {
	// Feature points into the caller's feature slice. It is read-only.
	Feature *genome.Feature

	// Row is the 0-based display row. Row == MaxRows is the overflow bucket.
	Row int

	// Labeled is false for features in the overflow bucket.
	Labeled bool

	// XStart and XEnd are the projected pixel bounds of the glyph.
	XStart, XEnd float64

	// LabelWidth is the estimated label width, drawn left of XStart.
	LabelWidth float64
}

// Width returns the glyph width in pixels.
func (p Placement) Width() float64 { return p.XEnd - p.XStart }

// Left returns the leftmost pixel occupied by the placement, including its
// label when labeled.
func (p Placement) Left() float64 {
	if p.Labeled {
		return p.XStart - p.LabelWidth
	}
	return p.XStart
}

// Layout is the result of one layout pass.
type Layout struct {
	Region     genome.Region
	Width      float64
	MaxRows    int
	Placements []Placement
	Hidden     int

	// Malformed counts input features dropped because end <= start.
	Malformed int
}

// OverflowMarker is the "n genes unlabeled" note drawn below the last row.
type OverflowMarker struct {
	Text string
	Row  int
}

// Overflow returns the overflow marker, or false when every visible
// feature is labeled.
func (l Layout) Overflow() (OverflowMarker, bool) {
	if l.Hidden <= 0 {
		return OverflowMarker{}, false
	}
	return OverflowMarker{Text: OverflowText(l.Hidden), Row: l.MaxRows}, true
}

// RowsUsed returns the number of real rows holding at least one feature.
func (l Layout) RowsUsed() int {
	used := 0
	for _, p := range l.Placements {
		if p.Labeled && p.Row+1 > used {
			used = p.Row + 1
		}
	}
	return used
}

// Row returns the placements assigned to row r, in scan order.
func (l Layout) Row(r int) []Placement {
	var out []Placement
	for _, p := range l.Placements {
		if p.Row == r {
			out = append(out, p)
		}
	}
	return out
}

// OverflowText formats the hidden feature count.
func OverflowText(n int) string {
	if n == 1 {
		return "1 gene unlabeled"
	}
	return fmt.Sprintf("%d genes unlabeled", n)
}

// Emit wraps packed placements into a Layout. maxRows is normalised the same
// way [Pack] does it, so the overflow marker sits in the bucket row.
func Emit(region genome.Region, width float64, maxRows int, placements []Placement, hidden int) Layout {
	return Layout{
		Region:     region,
		Width:      width,
		MaxRows:    max(maxRows, 0),
		Placements: placements,
		Hidden:     hidden,
	}
}
