// Package layout assigns genomic features to display rows for a track view.
//
// # Overview
//
// A layout pass turns the full feature set of a track into one [Placement]
// per visible feature. It runs in three steps:
//
//  1. Filter/sort ([FilterAndSort]): keep features intersecting the view
//     and order them by ascending start. The sort is stable so identical
//     input always lays out identically.
//  2. Pack ([Pack]): greedy first-fit by row. Each row remembers only its
//     rightmost occupied pixel; a feature goes into the lowest row whose
//     extent lies strictly left of the feature's label start. Features whose
//     label would run off the left edge, or that find no row, go to the
//     overflow bucket (row == maxRows) unlabeled.
//  3. Emit ([Emit]): wrap the placements into a [Layout] with the hidden
//     count and the overflow marker text ("3 genes unlabeled").
//
// [Build] runs all three steps.
//
// # Coordinates
//
// Genomic positions are mapped to pixels by a [Projector]. The projector
// must be monotonic non-decreasing; [LinearScale] is the usual choice. Labels
// are drawn to the left of the feature glyph, so the label width, estimated
// by a [LabelMeasurer], is subtracted from the projected start before the
// collision test. Once placed, a row's extent becomes the glyph's right edge.
//
// # Building a Layout
//
//	scale := layout.LinearScale{Region: view, Width: 800}
//	l := layout.Build(features, view, scale,
//	    layout.WithMaxRows(4),
//	    layout.WithLabelCharWidth(10),
//	)
//	for _, p := range l.Placements {
//	    // draw p.Feature at (p.XStart, p.XEnd, p.Row)
//	}
//	if m, ok := l.Overflow(); ok {
//	    // draw m.Text below the last row
//	}
//
// # Re-layout
//
// Every pass recomputes from scratch; nothing survives between passes. A
// caller that re-renders far more often than its inputs change can put a
// [Memo] in front of [Build] to skip passes whose inputs are unchanged.
//
// # Options
//
//   - [WithMaxRows]: row budget (default 4, negative treated as 0)
//   - [WithLabelCharWidth]: pixels per label character (default 10)
//   - [WithMeasurer]: custom label measurement, e.g. real text metrics
//   - [WithLogger]: debug logging of malformed features
package layout
