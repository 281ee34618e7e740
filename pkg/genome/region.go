package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is the genomic interval [Start, End) currently in view.
type Region struct {
	Chrom string `json:"chrom,omitempty"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Width returns the number of bases in the region.
func (r Region) Width() int64 { return r.End - r.Start }

// Empty reports whether the region covers no bases.
func (r Region) Empty() bool { return r.End <= r.Start }

// Shift returns the region moved by delta bases, keeping its width.
func (r Region) Shift(delta int64) Region {
	return Region{Chrom: r.Chrom, Start: r.Start + delta, End: r.End + delta}
}

// Zoom returns a region of width/factor bases centred on the same point.
// The result is never narrower than one base.
func (r Region) Zoom(factor float64) Region {
	if factor <= 0 {
		return r
	}
	center := r.Start + r.Width()/2
	half := int64(float64(r.Width()) / factor / 2)
	if half < 1 {
		half = 1
	}
	return Region{Chrom: r.Chrom, Start: center - half, End: center + half}
}

// String formats the region as "chrom:start-end", or "start-end" without a
// chromosome.
func (r Region) String() string {
	if r.Chrom == "" {
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// ParseRegion parses "chrom:start-end" or "start-end". Thousands
// separators (",") in the numbers are accepted, as in genome browser
// location boxes.
func ParseRegion(s string) (Region, error) {
	var r Region
	s = strings.TrimSpace(s)
	if s == "" {
		return r, fmt.Errorf("empty region")
	}

	span := s
	if i := strings.LastIndex(s, ":"); i >= 0 {
		r.Chrom, span = s[:i], s[i+1:]
		if r.Chrom == "" {
			return r, fmt.Errorf("region %q: empty chromosome", s)
		}
	}

	lo, hi, ok := strings.Cut(span, "-")
	if !ok {
		return r, fmt.Errorf("region %q: expected start-end", s)
	}
	start, err := parseCoord(lo)
	if err != nil {
		return r, fmt.Errorf("region %q: start: %w", s, err)
	}
	end, err := parseCoord(hi)
	if err != nil {
		return r, fmt.Errorf("region %q: end: %w", s, err)
	}
	r.Start, r.End = start, end
	if r.Empty() {
		return r, fmt.Errorf("region %q: end must be greater than start", s)
	}
	return r, nil
}

func parseCoord(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
}
