package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
	"github.com/matzehuels/genetrack/pkg/track/sink"
	"github.com/matzehuels/genetrack/pkg/track/styles"
)

// Render generates output artifacts in the requested formats. Options must
// have render defaults applied.
func Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l,
				sink.WithJSONStyle(opts.Style),
				sink.WithJSONRows(opts.RowHeight, *opts.RowPadding),
			)
		case FormatDOT:
			data = []byte(sink.ToDOT(l, sink.DOTOptions{Detailed: opts.Titles}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions translates render options into SVG sink options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithRowHeight(opts.RowHeight),
		sink.WithRowPadding(*opts.RowPadding),
		sink.WithHiddenPixels(opts.HiddenPixels),
	}
	if opts.Titles {
		svgOpts = append(svgOpts, sink.WithTitles())
	}

	switch opts.Style {
	case StyleSimple:
		svgOpts = append(svgOpts, sink.WithStyle(styles.Simple{SegmentColors: segmentColors(opts.SegmentColors)}))
	}
	return svgOpts
}

func segmentColors(m map[string]string) map[genome.SegmentClass]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[genome.SegmentClass]string, len(m))
	for k, v := range m {
		out[genome.SegmentClass(k)] = v
	}
	return out
}
