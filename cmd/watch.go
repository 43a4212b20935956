package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/build"
	"github.com/conneroisu/ope/internal/server"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the page whenever the Markdown changes",
	Long: `Build once, then rebuild the page every time a Markdown file in the
content directory changes. A failed build is logged and the watcher keeps
running. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("production", false, "strip HTML comments from the output")
	watchCmd.Flags().StringP("output", "o", "", "output file (default build.output)")
	watchCmd.Flags().String("content", "", "content directory (default content.dir)")
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "delay before rebuilding after a change")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, buildFlagKeys)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	b := build.NewBuilder(cfg, logger, build.Options{})
	if _, err := b.Build(ctx); err != nil {
		logger.Warn(ctx, err, "Initial build failed, waiting for changes")
	}

	logger.Info(ctx, "Watching for changes", "dir", cfg.Content.Dir)
	return server.Watch(ctx, b, logger, server.WatchOptions{
		Dir:      cfg.Content.Dir,
		Debounce: debounce,
	})
}
