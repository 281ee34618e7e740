package genome

import "fmt"

// Kind classifies a feature for rendering purposes.
type Kind string

// Feature kinds.
const (
	KindGene       Kind = "gene"
	KindAnnotation Kind = "annotation"
	KindSegment    Kind = "segment"
)

// Strand is the DNA strand a feature lies on.
type Strand string

// Strand values, using BED notation.
const (
	StrandForward Strand = "+"
	StrandReverse Strand = "-"
	StrandNone    Strand = "."
)

// ParseStrand converts a BED strand column into a Strand.
// Anything other than "+" or "-" is treated as unstranded.
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return StrandForward
	case "-":
		return StrandReverse
	default:
		return StrandNone
	}
}

// SegmentClass classifies a pairwise alignment segment.
type SegmentClass string

// Segment classes drawn by the pairwise segment track.
const (
	SegmentDeletion  SegmentClass = "deletion"
	SegmentInsertion SegmentClass = "insertion"
	SegmentMismatch  SegmentClass = "mismatch"
)

// Exon is a sub-interval of a gene, in absolute genomic coordinates.
type Exon struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Feature is a genomic interval of interest with a display name.
//
// Features are produced by the readers in pkg/io or a feature store and are
// treated as immutable by the layout engine, which only keeps pointers to
// them for the duration of a layout pass.
type Feature struct {
	Name   string         `json:"name"`
	Chrom  string         `json:"chrom,omitempty"`
	Start  int64          `json:"start"`
	End    int64          `json:"end"`
	Strand Strand         `json:"strand,omitempty"`
	Kind   Kind           `json:"kind,omitempty"`
	Exons  []Exon         `json:"exons,omitempty"`
	Class  SegmentClass   `json:"class,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Valid reports whether the feature spans at least one base.
func (f Feature) Valid() bool { return f.End > f.Start }

// Len returns the number of bases covered by the feature.
func (f Feature) Len() int64 { return f.End - f.Start }

// Overlaps reports whether f intersects r. Chromosomes are compared only
// when both sides name one.
func (f Feature) Overlaps(r Region) bool {
	if f.Chrom != "" && r.Chrom != "" && f.Chrom != r.Chrom {
		return false
	}
	return f.Start < r.End && f.End > r.Start
}

// IsGene reports whether the feature should be drawn as a gene model.
func (f Feature) IsGene() bool { return f.Kind == KindGene || (f.Kind == "" && len(f.Exons) > 0) }

// IsSegment reports whether the feature is a pairwise alignment segment.
func (f Feature) IsSegment() bool { return f.Kind == KindSegment }

// String formats the feature as "name chrom:start-end".
func (f Feature) String() string {
	if f.Chrom == "" {
		return fmt.Sprintf("%s [%d,%d)", f.Name, f.Start, f.End)
	}
	return fmt.Sprintf("%s %s:%d-%d", f.Name, f.Chrom, f.Start, f.End)
}
