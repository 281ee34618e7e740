package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/internal/server"
	"github.com/matzehuels/genetrack/pkg/observability"
	"github.com/matzehuels/genetrack/pkg/source/mongo"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dataDir string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve track layouts and renderings over HTTP",
		Long: `Serve track layouts and renderings over HTTP.

Track files are read from --data-dir. When mongo.uri is set in the config file,
tracks imported with 'import' are served as well. The cache backend, the
MongoDB connection and the server timeouts come from the config file.

Routes:
  GET /healthz
  GET /v1/tracks
  GET /v1/layout?track=genes.bed&region=chr1:11000-30000
  GET /v1/track.svg?track=genes.bed&region=chr1:11000-30000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("data-dir") {
				c.Config.Server.DataDir = dataDir
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory with BED and JSON track files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cfg := c.Config

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var store *mongo.Store
	if cfg.Mongo.URI != "" {
		store, err = mongo.Connect(ctx, mongo.Options{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return err
		}
		defer store.Close(context.Background())
	}
	if cfg.Server.DataDir == "" && store == nil {
		printWarning("No --data-dir and no mongo.uri: no tracks to serve")
	}

	defaults := optionsFromConfig(cfg)
	srv := server.New(server.Config{
		Runner:   runner,
		DataDir:  cfg.Server.DataDir,
		Store:    store,
		Defaults: defaults,
		Logger:   c.Logger,
	})

	printKeyValue("Listening", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
	if cfg.Server.DataDir != "" {
		printKeyValue("Data dir", cfg.Server.DataDir)
	}
	if store != nil {
		printKeyValue("MongoDB", store.Name())
	}

	err = srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// displayAddr turns a bare ":port" listen address into a clickable host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
