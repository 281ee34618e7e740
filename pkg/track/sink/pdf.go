package sink

import (
	"context"

	"github.com/matzehuels/genetrack/pkg/render"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// RenderPDF renders the layout as PDF via SVG conversion.
func RenderPDF(ctx context.Context, l layout.Layout, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(l, opts...))
}
