// Package build turns the content directory into the rendered page: it reads
// and parses the Markdown files, renders the page with the site package and
// writes it atomically.
package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/conneroisu/ope/internal/config"
	"github.com/conneroisu/ope/internal/content"
	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/logging"
	"github.com/conneroisu/ope/internal/site"
)

// Result summarises one build.
type Result struct {
	Songs       int
	Albums      int
	Links       int
	Featured    int
	Output      string
	LastUpdated string
	Duration    time.Duration
	Error       error
}

// Options adjust a Builder beyond what the configuration holds.
type Options struct {
	// LiveReloadPath is forwarded to site.Data.
	LiveReloadPath string
	// Now is used for the copyright year. Defaults to time.Now.
	Now func() time.Time
}

// Builder renders the page from the content directory.
type Builder struct {
	cfg     *config.Config
	opts    Options
	logger  logging.Logger
	metrics *BuildMetrics
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg *config.Config, logger logging.Logger, opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{
		cfg:     cfg,
		opts:    opts,
		logger:  logger.WithComponent("build"),
		metrics: NewBuildMetrics(),
	}
}

// Metrics returns the builder's running totals.
func (b *Builder) Metrics() *BuildMetrics {
	return b.metrics
}

// seeds are written for content files that do not exist yet.
var seeds = map[string]string{
	"songs":  "# Songs\n\n",
	"albums": "# Albums\n\n",
	"links":  "# Links\n\n",
}

// Build renders and writes the page once.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result, err := b.build(ctx)
	result.Duration = time.Since(start)
	result.Error = err
	b.metrics.RecordBuild(*result)

	if err != nil {
		b.logger.Error(ctx, err, "Build failed", "duration", result.Duration)
		return result, err
	}

	b.logger.Info(ctx, "Build completed",
		"songs", result.Songs,
		"albums", result.Albums,
		"links", result.Links,
		"featured", result.Featured,
		"output", result.Output,
		"duration", result.Duration)
	return result, nil
}

func (b *Builder) build(ctx context.Context) (*Result, error) {
	cc := b.cfg.Content
	result := &Result{Output: b.cfg.Build.Output}

	if err := os.MkdirAll(cc.Dir, 0o755); err != nil {
		return result, errors.NewIOError("CONTENT_DIR", "create content directory", err)
	}

	songs, err := b.readEntries(ctx, "songs", cc.Path(cc.Songs))
	if err != nil {
		return result, err
	}
	albums, err := b.readEntries(ctx, "albums", cc.Path(cc.Albums))
	if err != nil {
		return result, err
	}
	links, err := b.readEntries(ctx, "links", cc.Path(cc.Links))
	if err != nil {
		return result, err
	}
	about, err := readAbout(cc.Path(cc.About))
	if err != nil {
		return result, err
	}

	result.Songs, result.Albums, result.Links = len(songs), len(albums), len(links)
	result.Featured = len(content.Featured(songs)) + len(content.Featured(albums))
	b.logger.Debug(ctx, "Parsed content", "songs", result.Songs, "albums", result.Albums, "links", result.Links)

	loc, err := b.cfg.Site.Location()
	if err != nil {
		return result, errors.NewConfigError("TIMEZONE", "load timezone", err)
	}
	updated, err := lastModified(cc.Path(cc.Songs), cc.Path(cc.Albums))
	if err != nil {
		return result, err
	}
	result.LastUpdated = site.FormatDate(updated, loc)

	data := site.Data{
		Info:           b.info(loc),
		Songs:          songs,
		Albums:         albums,
		Links:          links,
		About:          about,
		LastUpdated:    result.LastUpdated,
		LiveReloadPath: b.opts.LiveReloadPath,
	}

	var buf bytes.Buffer
	if err := site.Page(data).Render(ctx, &buf); err != nil {
		return result, errors.NewInternalError("RENDER", "render page", err)
	}

	page := buf.Bytes()
	if b.cfg.Build.Production {
		page, err = site.StripComments(page)
		if err != nil {
			return result, errors.NewInternalError("STRIP_COMMENTS", "strip comments", err)
		}
	}

	if err := writeAtomic(result.Output, page); err != nil {
		return result, err
	}
	return result, nil
}

func (b *Builder) info(loc *time.Location) site.Info {
	s := b.cfg.Site
	return site.Info{
		Title:         s.Title,
		Author:        s.Author,
		AuthorImage:   s.AuthorImage,
		ContactEmail:  s.ContactEmail,
		NewsletterURL: s.NewsletterURL,
		PodcastURL:    s.PodcastURL,
		TimezoneLabel: s.TimezoneLabel,
		Year:          b.opts.Now().In(loc).Year(),
	}
}

// readEntries parses path, seeding it first when it does not exist.
func (b *Builder) readEntries(ctx context.Context, kind, path string) ([]content.Entry, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		b.logger.Warn(ctx, err, "Content file not found, creating empty file", "path", path)
		seed := seeds[kind]
		if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
			return nil, errors.NewIOError("CONTENT_SEED", fmt.Sprintf("create %s", path), err)
		}
		data = []byte(seed)
	} else if err != nil {
		return nil, errors.NewIOError("CONTENT_READ", fmt.Sprintf("read %s", path), err)
	}
	return content.Parse(string(data)), nil
}

// readAbout returns nil when the file does not exist.
func readAbout(path string) (*site.About, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewIOError("CONTENT_READ", fmt.Sprintf("read %s", path), err)
	}
	about, err := site.ParseAbout(data)
	if err != nil {
		return nil, errors.NewInternalError("ABOUT_PARSE", "parse about", err)
	}
	return about, nil
}

// lastModified is the newest modification time among paths.
func lastModified(paths ...string) (time.Time, error) {
	var latest time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, errors.NewIOError("CONTENT_STAT", fmt.Sprintf("stat %s", p), err)
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewIOError("OUTPUT_WRITE", "create output directory", err)
		}
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.NewIOError("OUTPUT_WRITE", "create pending output file", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return errors.NewIOError("OUTPUT_WRITE", "write output", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.NewIOError("OUTPUT_WRITE", fmt.Sprintf("replace %s", path), err)
	}
	return nil
}
