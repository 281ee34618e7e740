// Package mongo stores genomic features in MongoDB and serves them by
// region.
//
// Each feature is one document in a collection shared by any number of
// tracks:
//
//	{track: "genes", name: "BRCA2", chrom: "chr13", start: 32315507, end: 32400268,
//	 strand: "+", kind: "gene", exons: [{start: ..., end: ...}]}
//
// [Store.Features] runs an interval-overlap query (start < region.End and
// end > region.Start) backed by a compound {track, chrom, start, end} index
// created by [Store.EnsureIndexes]. Transient network errors are retried
// with the backoff helpers from pkg/cache.
//
// A Store satisfies pipeline.Source. Its data can change underneath a
// cached feature set, so callers load it with Options.Refresh set, as the
// HTTP server does.
package mongo
