package reviews

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/conneroisu/ope/internal/content"
	"github.com/conneroisu/ope/internal/errors"
)

// Source loads the current review sequence. Implementations read their
// backing store on every call and keep no cache.
type Source interface {
	Load(ctx context.Context) ([]Review, error)
}

// FileSource reads a JSON snapshot from disk. A missing file is an empty
// sequence, not an error.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []Review{}, nil
	}
	if err != nil {
		return nil, errors.NewIOError("SNAPSHOT_READ", "read snapshot", err).WithContext("path", s.Path)
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return snap.Reviews, nil
}

// BytesSource decodes an in-memory JSON snapshot.
type BytesSource []byte

// Load implements Source.
func (s BytesSource) Load(ctx context.Context) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := DecodeSnapshot(s)
	if err != nil {
		return nil, err
	}
	return snap.Reviews, nil
}

// MarkdownSource converts a songs Markdown file on every load.
type MarkdownSource struct {
	Path string
}

// Load implements Source.
func (s MarkdownSource) Load(ctx context.Context) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []Review{}, nil
	}
	if err != nil {
		return nil, errors.NewIOError("MARKDOWN_READ", "read songs file", err).WithContext("path", s.Path)
	}
	return FromEntries(content.ParseSections(string(data))), nil
}

// StaticSource serves a fixed slice. Load returns a copy.
type StaticSource []Review

// Load implements Source.
func (s StaticSource) Load(ctx context.Context) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Review, len(s))
	copy(out, s)
	return out, nil
}
