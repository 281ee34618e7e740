// Package io reads and writes genomic feature files.
//
// # Formats
//
// BED (".bed", optionally gzip-compressed as ".bed.gz") with 3 to 12
// columns. Columns beyond the third are optional:
//
//	chr1  11873  14409  DDX11L1  0  +  11873  14409  0  3  354,109,1189,  0,739,1347,
//
// The name column becomes the feature name (features without one are named
// after their location), the strand column the strand, and BED12 blocks
// become exons. Features with blocks are gene models; everything else is an
// annotation. Score and itemRgb are kept in Meta under "score" and "color".
// Header lines ("track", "browser", "#") and blank lines are skipped.
//
// JSON (".json") with a single "features" array:
//
//	{
//	  "features": [
//	    {"name": "BRCA2", "chrom": "chr13", "start": 32315507, "end": 32400268,
//	     "strand": "+", "kind": "gene", "exons": [{"start": 32315507, "end": 32315667}]},
//	    {"name": "del1", "start": 500, "end": 520, "kind": "segment", "class": "deletion"}
//	  ]
//	}
//
// # Import
//
// [ImportFile] picks a reader from the file extension:
//
//	features, err := io.ImportFile("genes.bed.gz")
//
// Readers keep features whose end is not after their start; the layout
// engine counts and skips those, so a bad line never hides the rest of a
// file. Syntax errors are reported with their line number.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write the JSON format. Feature order is
// preserved, so a file can be re-imported identically.
package io
