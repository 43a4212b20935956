package server

import (
	"context"
	"fmt"
	"time"

	"github.com/conneroisu/ope/internal/build"
	"github.com/conneroisu/ope/internal/logging"
	"github.com/conneroisu/ope/internal/watcher"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Dir is the content directory to watch.
	Dir string
	// Debounce defaults to watcher.DefaultDebounce.
	Debounce time.Duration
	// OnBuild runs after every successful rebuild.
	OnBuild func(*build.Result)
}

// Watch rebuilds with b whenever a Markdown file under opts.Dir changes and
// blocks until ctx is done. A failed rebuild is logged and watching goes on.
func Watch(ctx context.Context, b *build.Builder, logger logging.Logger, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = watcher.DefaultDebounce
	}

	fw, err := watcher.NewFileWatcher(opts.Debounce, logger)
	if err != nil {
		return err
	}
	defer func() { _ = fw.Stop() }()

	fw.AddFilter(watcher.MarkdownFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, e := range events {
			logger.Debug(ctx, "Content changed", "path", e.Path, "event", e.Type.String())
		}

		result, err := b.Build(ctx)
		if err != nil {
			// Build has logged the failure; keep watching.
			return nil
		}
		if opts.OnBuild != nil {
			opts.OnBuild(result)
		}
		return nil
	})

	if err := fw.AddRecursive(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Watching content", "dir", opts.Dir)
	<-ctx.Done()
	return fw.Stop()
}
