package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/server"
	"github.com/conneroisu/ope/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page, the review API and live reload",
	Long: `Build the page, then serve it together with the read-only review API.
The page is rebuilt when the Markdown changes and connected browsers reload.

Examples:
  ope serve
  ope serve --port 3000
  ope serve --no-live-reload --data-format sqlite --data data/reviews.db`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", "", "host to bind to (default server.host)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default server.port)")
	serveCmd.Flags().Bool("no-live-reload", false, "disable the live reload socket")
	serveCmd.Flags().Bool("no-metrics", false, "disable the /metrics endpoint")
	serveCmd.Flags().String("data", "", "review data source (default data.source)")
	serveCmd.Flags().String("data-format", "", "review data format: json, markdown or sqlite")
	serveCmd.Flags().String("content", "", "content directory (default content.dir)")
	serveCmd.Flags().StringP("output", "o", "", "output file (default build.output)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"host":        "server.host",
		"port":        "server.port",
		"data":        "data.source",
		"data-format": "data.format",
		"content":     "content.dir",
		"output":      "build.output",
	})
	if err != nil {
		return err
	}
	// Negated toggles only apply when passed.
	if off, _ := cmd.Flags().GetBool("no-live-reload"); off {
		cfg.Server.LiveReload = false
	}
	if off, _ := cmd.Flags().GetBool("no-metrics"); off {
		cfg.Server.Metrics = false
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	logger.Info(ctx, "Starting server",
		"addr", cfg.Server.Addr(),
		"api", cfg.API.BasePath,
		"live_reload", cfg.Server.LiveReload)
	return server.New(cfg, logger, store.SourceFor(cfg)).Run(ctx)
}
