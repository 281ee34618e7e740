// Package pkg provides the core libraries for genetrack, a genome track
// viewer that packs features into rows.
//
// # Overview
//
// A track is a list of genomic features (genes, transcripts, alignment
// segments). For a visible region and a pixel width, genetrack assigns each
// overlapping feature to the first row where its label and glyph fit, and
// collects whatever does not fit into an overflow row with a
// "N genes unlabeled" marker. The layout is recomputed only when the region,
// width or row limit changes; dragging the view pans it without repacking
// until the drag ends.
//
// # Architecture
//
//	BED / JSON file, MongoDB collection
//	         ↓
//	    [io], [source/mongo] (load features)
//	         ↓
//	    [track/layout] (filter, sort, pack, emit)
//	         ↓
//	    [track/sink] (SVG, PNG, PDF, JSON, DOT)
//
// [pipeline] ties these steps together behind a [cache] and is shared by the
// CLI and the HTTP server.
//
// # Quick Start
//
//	features, _ := io.ImportFile("genes.bed")
//	view, _ := genome.ParseRegion("chr1:11000-30000")
//
//	l := layout.Build(features, view,
//	    layout.LinearScale{Region: view, Width: 800},
//	    layout.WithMaxRows(8))
//
//	svg := sink.RenderSVG(l, sink.WithTitles())
//
// # Main Packages
//
// [genome] - Feature and Region types, strand and segment classes, region
// parsing ("chr1:11,000-30,000").
//
// [track/layout] - The row packer. Build runs filter, sort, pack and emit;
// Memo skips recomputation when the inputs are unchanged.
//
// [track/drag] - A pure reducer turning pointer events into a pixel offset
// while dragging and a new region when the drag ends.
//
// [track/styles], [track/sink] - Glyph styles and output formats.
//
// [render] - SVG to PNG/PDF conversion via rsvg-convert.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [config] - TOML configuration for the CLI and the server.
//
// [errors] - Structured errors with codes shared by CLI and HTTP.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [genome]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/genome
// [io]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/io
// [source/mongo]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/source/mongo
// [track/layout]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/track/layout
// [track/drag]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/track/drag
// [track/styles]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/track/styles
// [track/sink]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/track/sink
// [render]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/genetrack/pkg/observability
package pkg
