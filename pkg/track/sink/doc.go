// Package sink turns a computed [layout.Layout] into output formats.
//
// # SVG
//
// [RenderSVG] draws one horizontal band per row. Row r starts at
// y = r*(rowHeight+rowPadding); labels sit to the left of their glyph.
// Features in the overflow row (Row == MaxRows) are drawn as thin unlabeled
// bars, and when any feature is unlabeled an italic note such as
// "3 genes unlabeled" is placed at x = 10, five pixels below the top of the
// overflow row.
//
//	svg := sink.RenderSVG(l,
//	    sink.WithRowHeight(15),
//	    sink.WithHiddenPixels(1),
//	    sink.WithTitles(),
//	)
//
// While a drag is in progress the caller passes [WithOffset] with the
// reducer's draw offset; the layout itself is unchanged.
//
// # JSON
//
// [RenderJSON] exports placements, the hidden count and the overflow note
// for clients that draw the track themselves.
//
// # PDF and PNG
//
// [RenderPDF] and [RenderPNG] convert the SVG with rsvg-convert (librsvg)
// through [render.ToPDF] and [render.ToPNG].
//
// # Row graph
//
// [ToDOT] and [RenderRowGraph] render the row assignment as a Graphviz
// diagram, which is handy when tuning the row budget or label widths.
//
// [layout.Layout]: github.com/matzehuels/genetrack/pkg/track/layout.Layout
// [render.ToPDF]: github.com/matzehuels/genetrack/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/genetrack/pkg/render.ToPNG
package sink
