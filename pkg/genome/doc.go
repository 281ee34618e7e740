// Package genome defines the genomic data model shared by the track layout
// engine, the file readers, and the feature stores.
//
// # Coordinates
//
// All intervals are half-open: a [Feature] or [Region] covers the bases
// Start, Start+1, ..., End-1. A feature whose End is not greater than its
// Start is malformed; the layout engine skips such features instead of
// failing (see [Feature.Valid]).
//
// # Feature kinds
//
// A [Feature] is either a gene (with optional exons and a strand), a generic
// annotation, or a pairwise alignment segment classified as a deletion,
// insertion, or mismatch. The kind only influences rendering; row packing
// treats every feature the same way.
package genome
