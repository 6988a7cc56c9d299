package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tdzio/tdz/internal/planner"
	"github.com/tdzio/tdz/internal/server"
	"github.com/tdzio/tdz/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the store over HTTP. Every CLI operation is available as an
endpoint; external edits to the data directory are picked up by a file
watcher that reindexes in the background.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		if addr == "" {
			addr = ":8321"
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return fail(err)
		}
		defer func() { _ = logger.Sync() }()

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		var plan *planner.Client
		if cfg.Planner.Endpoint != "" {
			plan = planner.New(cfg.Planner.Endpoint, cfg.Planner.APIKey)
		}

		srv := server.New(server.Config{
			Addr:          addr,
			RequireAPIKey: cfg.Server.RequireAPIKey,
		}, e.st, e.idx, e.engine, e.facade, plan, e.embedder, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !isJSONOutput() {
			fmt.Println(ui.Infof("listening on %s", addr))
		}
		if err := srv.Run(ctx); err != nil {
			return fail(err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
