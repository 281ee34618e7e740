package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/genetrack/pkg/genome"
)

// FilterAndSort returns pointers to the features that intersect view,
// ordered by ascending start. Ties keep their input order.
//
// A feature is kept iff start < view.End and end > view.Start, so a feature
// that only abuts the view is dropped. Malformed features (end <= start) are
// dropped as well. The input slice is never modified and the returned
// pointers refer to its elements.
func FilterAndSort(features []genome.Feature, view genome.Region) []*genome.Feature {
	visible := make([]*genome.Feature, 0, len(features))
	for i := range features {
		f := &features[i]
		if f.Valid() && f.Overlaps(view) {
			visible = append(visible, f)
		}
	}
	slices.SortStableFunc(visible, func(a, b *genome.Feature) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return visible
}

// SplitMalformed separates features with end <= start from the rest.
// Both results preserve input order.
func SplitMalformed(features []genome.Feature) (valid, malformed []genome.Feature) {
	for _, f := range features {
		if f.Valid() {
			valid = append(valid, f)
		} else {
			malformed = append(malformed, f)
		}
	}
	return valid, malformed
}
