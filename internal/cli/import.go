package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	pkgio "github.com/matzehuels/genetrack/pkg/io"
	"github.com/matzehuels/genetrack/pkg/source/mongo"
)

// importCommand creates the import command for loading tracks into MongoDB.
func (c *CLI) importCommand() *cobra.Command {
	var (
		track      string
		uri        string
		appendOnly bool
	)

	cmd := &cobra.Command{
		Use:   "import [track.bed]",
		Short: "Load a BED or JSON track into MongoDB",
		Long: `Load a BED or JSON track into MongoDB.

The features are stored under --track (default: the file name without
extensions), replacing whatever the track held before unless --append is set.
The interval index used by region queries is created if missing.

The connection comes from [mongo] in the config file; --uri overrides it.
Once imported, 'serve' answers /v1/track.svg?track=<name> from the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("uri") {
				c.Config.Mongo.URI = uri
			}
			if track == "" {
				track = trackName(args[0])
			}
			return c.runImport(cmd.Context(), args[0], track, appendOnly)
		},
	}

	cmd.Flags().StringVarP(&track, "track", "t", "", "track name (default: file name)")
	cmd.Flags().StringVar(&uri, "uri", "", "MongoDB connection URI (default: mongo.uri from the config)")
	cmd.Flags().BoolVar(&appendOnly, "append", false, "add to the track instead of replacing it")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input, track string, appendOnly bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	features, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	logger.Debug("parsed track", "file", input, "features", len(features))

	features, skipped := validFeatures(features, logger)
	if len(features) == 0 {
		return fmt.Errorf("import %s: no valid features", input)
	}
	if skipped > 0 {
		printWarning("%d invalid features skipped", skipped)
	}

	cfg := c.Config.Mongo
	store, err := mongo.Connect(ctx, mongo.Options{
		URI:        cfg.URI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
		Track:      track,
	})
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Writing %d features...", len(features)))
	spinner.Start()

	if err := store.EnsureIndexes(ctx); err != nil {
		spinner.StopWithError("Index creation failed")
		return err
	}
	var written int
	if appendOnly {
		written, err = store.Insert(ctx, features)
	} else {
		written, err = store.Replace(ctx, features)
	}
	if err != nil {
		spinner.StopWithError("Import failed")
		return fmt.Errorf("import %s: %w (%d written)", input, err, written)
	}
	spinner.Stop()

	prog.done(fmt.Sprintf("Imported %d features", written))
	printSuccess("Imported %d features into %s", written, store.Name())
	printNewline()
	printNextStep("Serve", appName+" serve")
	return nil
}

// validFeatures drops features that would never be drawn, such as empty
// intervals and names with control characters.
func validFeatures(features []genome.Feature, logger *log.Logger) ([]genome.Feature, int) {
	valid := features[:0:0]
	for _, f := range features {
		if err := errors.ValidateFeature(f); err != nil {
			logger.Debug("skipping feature", "err", err)
			continue
		}
		valid = append(valid, f)
	}
	return valid, len(features) - len(valid)
}

// trackName derives a track name from a file path: "data/genes.bed.gz"
// becomes "genes".
func trackName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}
