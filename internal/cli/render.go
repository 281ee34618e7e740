package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/pipeline"
)

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      trackFlags
		formatsStr string
		output     string
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render [track.bed]",
		Short: "Render a track region to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a track region to SVG, PNG, PDF, JSON or DOT.

Render loads the track, packs the features overlapping --region into rows and
writes one file per requested format. PNG and PDF output needs rsvg-convert on
the PATH.

Examples:
  genetrack render genes.bed -r chr1:11000-30000
  genetrack render genes.bed.gz -r chr1:11000-30000 -f svg,png --max-rows 6
  genetrack render alignment.json -f json -o view.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")

	return cmd
}

// runRender loads, lays out and renders the track, then writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading features...")
	spinner.Start()

	features, loadHit, err := loadTrack(ctx, runner, &opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return fmt.Errorf("load %s: %w", opts.Input, err)
	}

	spinner.SetMessage(fmt.Sprintf("Packing %d features...", len(features)))
	l, layoutHit, err := runner.ComputeLayoutWithCacheInfo(ctx, features, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	spinner.SetMessage("Rendering...")
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, opts.Input, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", l.Region)
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(features), hiddenText(l), loadHit && layoutHit && renderHit)
	if l.Malformed > 0 {
		printWarning("%d malformed features skipped", l.Malformed)
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths in
// format order. A single format with an explicit output uses that path
// as given.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
