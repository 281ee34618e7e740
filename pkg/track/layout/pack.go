package layout

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// DefaultLabelCharWidth is the approximate pixel width of one label character.
const DefaultLabelCharWidth = 10.0

// LabelMeasurer estimates the pixel width of a feature label.
type LabelMeasurer interface {
	Measure(label string) float64
}

// CharWidth measures labels as rune count times a fixed per-character width.
type CharWidth float64

// Measure returns the label width in pixels.
func (w CharWidth) Measure(label string) float64 {
	return float64(utf8.RuneCountInString(label)) * float64(w)
}

// RowExtents holds, per row, the rightmost pixel occupied so far.
// An empty row has extent -Inf.
type RowExtents []float64

// NewRowExtents returns n empty rows. A negative n yields no rows.
func NewRowExtents(n int) RowExtents {
	rows := make(RowExtents, max(n, 0))
	for i := range rows {
		rows[i] = math.Inf(-1)
	}
	return rows
}

// FirstFit returns the lowest row whose extent is strictly less than x,
// or -1 if every row is occupied at x.
func (r RowExtents) FirstFit(x float64) int {
	for i, rightmost := range r {
		if rightmost < x {
			return i
		}
	}
	return -1
}

// Pack assigns each feature of sorted to a row, scanning left to right.
//
// sorted must be in non-decreasing start order (see [FilterAndSort]); the
// greedy guarantee depends on it. A feature is labeled and placed in the
// first row that is free at its label start. It goes to the overflow bucket
// (row == maxRows) unlabeled when its label would start left of pixel 0,
// when its projection is NaN, or when no row is free. Overflow features never
// update a row extent, so they do not block later features.
//
// Pack returns one placement per input feature, in input order, and the
// number of unlabeled features. A nil measurer uses [DefaultLabelCharWidth].
func Pack(sorted []*genome.Feature, maxRows int, project Projector, measurer LabelMeasurer) ([]Placement, int) {
	if maxRows < 0 {
		maxRows = 0
	}
	if measurer == nil {
		measurer = CharWidth(DefaultLabelCharWidth)
	}

	rows := NewRowExtents(maxRows)
	placements := make([]Placement, 0, len(sorted))
	hidden := 0

	for _, f := range sorted {
		xStart, xEnd := project.BaseToX(f.Start), project.BaseToX(f.End)
		labelWidth := measurer.Measure(f.Name)
		startX := xStart - labelWidth

		p := Placement{
			Feature:    f,
			XStart:     xStart,
			XEnd:       xEnd,
			LabelWidth: labelWidth,
		}

		row := -1
		if !math.IsNaN(startX) && !math.IsNaN(xEnd) && startX >= 0 {
			row = rows.FirstFit(startX)
		}
		if row < 0 {
			p.Row = maxRows
			hidden++
		} else {
			p.Row = row
			p.Labeled = true
			rows[row] = xEnd
		}
		placements = append(placements, p)
	}
	return placements, hidden
}
