package reviews

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/conneroisu/ope/internal/errors"
)

//go:embed snapshot.schema.json
var snapshotSchema []byte

const schemaURL = "https://ope.local/schema/snapshot.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Metadata describes how a snapshot was produced.
type Metadata struct {
	ConversionDate string `json:"conversion_date,omitempty"`
	SourceFile     string `json:"source_file,omitempty"`
	TotalReviews   int    `json:"total_reviews"`
}

// Snapshot is the on-disk JSON document holding pre-parsed reviews.
type Snapshot struct {
	Metadata Metadata `json:"metadata"`
	Reviews  []Review `json:"reviews"`
}

// NewSnapshot wraps reviews with conversion metadata.
func NewSnapshot(reviews []Review, sourceFile string, now time.Time) Snapshot {
	if reviews == nil {
		reviews = []Review{}
	}
	return Snapshot{
		Metadata: Metadata{
			ConversionDate: now.Format(time.RFC3339),
			SourceFile:     sourceFile,
			TotalReviews:   len(reviews),
		},
		Reviews: reviews,
	}
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(snapshotSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// DecodeSnapshot validates data against the snapshot schema and decodes it.
// Reviews without an identifier get one derived from artist and title.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, errors.NewInternalError("SNAPSHOT_DECODE", "snapshot is not valid JSON", err)
	}

	s, err := schema()
	if err != nil {
		return Snapshot{}, errors.NewInternalError("SNAPSHOT_SCHEMA", "snapshot schema does not compile", err)
	}
	if err := s.Validate(doc); err != nil {
		return Snapshot{}, errors.NewInternalError("SNAPSHOT_INVALID", "snapshot does not match schema", err).
			WithContext("issues", schemaIssues(err))
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.NewInternalError("SNAPSHOT_DECODE", "snapshot is not valid JSON", err)
	}
	if snap.Reviews == nil {
		snap.Reviews = []Review{}
	}
	for i := range snap.Reviews {
		if snap.Reviews[i].ReviewID == "" {
			snap.Reviews[i].ReviewID = ID(snap.Reviews[i].SongArtist, snap.Reviews[i].SongTitle)
		}
	}
	return snap, nil
}

// schemaIssues flattens a validation error into "location: message" lines.
func schemaIssues(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, strings.TrimSpace(node.InstanceLocation+": "+node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return issues
}

// WriteSnapshot atomically writes snap as indented JSON to path, creating the
// parent directory when needed.
func WriteSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.NewInternalError("SNAPSHOT_ENCODE", "encode snapshot", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("SNAPSHOT_WRITE", "create snapshot directory", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.NewIOError("SNAPSHOT_WRITE", "create pending snapshot file", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return errors.NewIOError("SNAPSHOT_WRITE", "write snapshot", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.NewIOError("SNAPSHOT_WRITE", fmt.Sprintf("replace %s", path), err)
	}
	return nil
}
