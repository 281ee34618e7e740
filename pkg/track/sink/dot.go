package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// DOTOptions configures the row graph.
type DOTOptions struct {
	// Detailed adds coordinates and pixel extents to node labels.
	Detailed bool
}

// ToDOT describes the row assignment of l as a Graphviz graph: one cluster
// per row, features chained left to right in scan order, and a dashed
// cluster for the overflow bucket. It is a debugging view of the packer.
func ToDOT(l layout.Layout, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rows {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#999\"];\n")

	rows := make([][]int, l.MaxRows+1)
	for i, p := range l.Placements {
		if p.Row >= 0 && p.Row <= l.MaxRows {
			rows[p.Row] = append(rows[p.Row], i)
		}
	}

	for row, members := range rows {
		if len(members) == 0 {
			continue
		}
		overflow := row == l.MaxRows
		fmt.Fprintf(&buf, "\n  subgraph cluster_row%d {\n", row)
		if overflow {
			fmt.Fprintf(&buf, "    label=%q;\n", layout.OverflowText(len(members)))
			buf.WriteString("    style=dashed;\n")
		} else {
			fmt.Fprintf(&buf, "    label=\"row %d\";\n", row)
		}

		prev := ""
		for _, i := range members {
			p := l.Placements[i]
			id := fmt.Sprintf("f%d", i)
			attrs := fmt.Sprintf("label=%q", dotLabel(p, opts.Detailed))
			if overflow {
				attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
			}
			fmt.Fprintf(&buf, "    %s [%s];\n", id, attrs)
			if prev != "" {
				fmt.Fprintf(&buf, "    %s -> %s;\n", prev, id)
			}
			prev = id
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(p layout.Placement, detailed bool) string {
	f := p.Feature
	if !detailed {
		return f.Name
	}
	return fmt.Sprintf("%s\n%d-%d\nx: %.1f-%.1f", f.Name, f.Start, f.End, p.XStart, p.XEnd)
}

// RenderRowGraph renders a DOT graph from [ToDOT] to SVG using Graphviz.
func RenderRowGraph(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
