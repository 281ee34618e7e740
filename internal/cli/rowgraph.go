package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/track/sink"
)

// rowgraphCommand creates the rowgraph command for inspecting row assignment.
func (c *CLI) rowgraphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		dotOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "rowgraph [track.layout.json]",
		Short: "Draw the row assignment of a layout as a graph",
		Long: `Draw the row assignment of a layout as a graph.

Each row becomes a cluster with its features chained left to right in scan
order; the overflow row is drawn as a dashed cluster. The graph is laid out
with Graphviz and written as SVG, or as DOT source with --dot.

Use 'layout' to produce the input file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRowGraph(cmd.Context(), args[0], output, detailed, dotOnly)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.rows.svg or .rows.dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add coordinates and pixel extents to node labels")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "write DOT source instead of SVG")

	return cmd
}

func (c *CLI) runRowGraph(ctx context.Context, input, output string, detailed, dotOnly bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", input, err)
	}
	l, err := pipeline.UnmarshalLayout(data)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	dot := sink.ToDOT(l, sink.DOTOptions{Detailed: detailed})
	out := []byte(dot)
	ext := ".rows.dot"
	if !dotOnly {
		spinner := newSpinnerWithContext(ctx, "Running Graphviz...")
		spinner.Start()
		out, err = sink.RenderRowGraph(ctx, dot)
		if err != nil {
			spinner.StopWithError("Graphviz failed")
			return fmt.Errorf("render row graph: %w", err)
		}
		spinner.Stop()
		ext = ".rows.svg"
	}

	if output == "" {
		output = strings.TrimSuffix(input, ".layout.json")
		output = strings.TrimSuffix(output, ".json") + ext
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	loggerFromContext(ctx).Debug("row graph", "placements", len(l.Placements), "rows", l.RowsUsed())
	printSuccess("Row graph for %s", l.Region)
	printFile(output)
	return nil
}
