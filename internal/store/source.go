package store

import (
	"github.com/conneroisu/ope/internal/config"
	"github.com/conneroisu/ope/internal/reviews"
)

// SourceFor returns the review source selected by the data section of cfg.
// The markdown format reads the songs file of the content section.
func SourceFor(cfg *config.Config) reviews.Source {
	switch cfg.Data.Format {
	case config.FormatMarkdown:
		return reviews.MarkdownSource{Path: cfg.Content.Path(cfg.Content.Songs)}
	case config.FormatSQLite:
		return SQLite{Path: cfg.Data.Source}
	default:
		return reviews.FileSource{Path: cfg.Data.Source}
	}
}
