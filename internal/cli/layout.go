package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// layoutCommand creates the layout command for packing a track into rows.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  trackFlags
		output string
		rows   bool
	)

	cmd := &cobra.Command{
		Use:   "layout [track.bed]",
		Short: "Pack the features of a track into rows",
		Long: `Pack the features of a track into rows.

The layout command reads a BED or JSON track, keeps the features that overlap
the view region and assigns each one a row, first fit in start order. Features
that fit in none of the --max-rows rows go to the overflow row and are drawn
unlabeled. The result is written as <input>.layout.json, which 'rowgraph' can
draw.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, output, rows, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&rows, "rows", false, "print the features of each row")

	return cmd
}

// runLayout loads the track, computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, rows, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading features...")
	spinner.Start()

	features, _, err := loadTrack(ctx, runner, &opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return fmt.Errorf("load %s: %w", opts.Input, err)
	}

	spinner.SetMessage(fmt.Sprintf("Packing %d features...", len(features)))
	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, features, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := pipeline.MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Input) + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete for %s", l.Region)
	printFile(outputPath)
	printStats(len(features), hiddenText(l), cacheHit)
	if l.Malformed > 0 {
		printWarning("%d malformed features skipped", l.Malformed)
	}
	if rows {
		printNewline()
		printRows(l)
	}
	printNewline()
	printNextStep("Row graph", appName+" rowgraph "+outputPath)

	return nil
}

// hiddenText is the overflow marker text, or "" when every feature got a
// labeled row.
func hiddenText(l layout.Layout) string {
	if m, ok := l.Overflow(); ok {
		return m.Text
	}
	return ""
}

// printRows prints one line per row listing its features in order.
func printRows(l layout.Layout) {
	for r := 0; r <= l.MaxRows; r++ {
		row := l.Row(r)
		if len(row) == 0 {
			continue
		}
		names := make([]string, len(row))
		for i, p := range row {
			names[i] = p.Feature.Name
		}
		key := fmt.Sprintf("row %d", r)
		if r == l.MaxRows {
			key = "overflow"
		}
		printKeyValue(key, strings.Join(names, ", "))
	}
}
