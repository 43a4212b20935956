// Package store persists review snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, no cgo

	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/reviews"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	position             INTEGER PRIMARY KEY,
	review_id            TEXT NOT NULL,
	song_artist          TEXT NOT NULL,
	song_title           TEXT NOT NULL,
	song_release_date    TEXT NOT NULL DEFAULT '',
	song_upload_date     TEXT NOT NULL DEFAULT '',
	song_duration_sec    INTEGER NOT NULL DEFAULT 0,
	song_album           TEXT NOT NULL DEFAULT '',
	song_label           TEXT NOT NULL DEFAULT '',
	song_genre           TEXT NOT NULL DEFAULT '',
	song_mood            TEXT NOT NULL DEFAULT '',
	song_instrumentation TEXT NOT NULL DEFAULT '',
	song_language        TEXT NOT NULL DEFAULT '',
	song_audio_url       TEXT NOT NULL DEFAULT '',
	song_url             TEXT NOT NULL DEFAULT '',
	review_date          TEXT NOT NULL DEFAULT '',
	review_score         REAL NOT NULL DEFAULT 0,
	review_text          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_reviews_review_id ON reviews(review_id);
`

const columns = `review_id, song_artist, song_title, song_release_date, song_upload_date,
	song_duration_sec, song_album, song_label, song_genre, song_mood,
	song_instrumentation, song_language, song_audio_url, song_url,
	review_date, review_score, review_text`

// SQLite is a review store backed by one database file. It is a
// reviews.Source; every Load opens the file afresh.
type SQLite struct {
	Path string
}

// open connects to the database file. A read-only connection neither creates
// the file nor writes a journal.
func open(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Load implements reviews.Source. Reviews come back in the order they were
// saved. A missing database file, or one that was never saved to, is an empty
// sequence. Load never writes to the database.
func (s SQLite) Load(ctx context.Context) ([]reviews.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path); stderrors.Is(err, fs.ErrNotExist) {
		return []reviews.Review{}, nil
	}

	db, err := open(ctx, s.Path, true)
	if err != nil {
		return nil, s.ioError("SQLITE_OPEN", "open review database", err)
	}
	defer func() { _ = db.Close() }()

	var tables int
	if err := db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'reviews'").Scan(&tables); err != nil {
		return nil, s.ioError("SQLITE_QUERY", "inspect review database", err)
	}
	if tables == 0 {
		return []reviews.Review{}, nil
	}

	rows, err := db.QueryContext(ctx, "SELECT "+columns+" FROM reviews ORDER BY position")
	if err != nil {
		return nil, s.ioError("SQLITE_QUERY", "query reviews", err)
	}
	defer func() { _ = rows.Close() }()

	out := []reviews.Review{}
	for rows.Next() {
		var r reviews.Review
		var score float64
		if err := rows.Scan(
			&r.ReviewID, &r.SongArtist, &r.SongTitle, &r.SongReleaseDate, &r.SongUploadDate,
			&r.SongDurationSec, &r.SongAlbum, &r.SongLabel, &r.SongGenre, &r.SongMood,
			&r.SongInstrumentation, &r.SongLanguage, &r.SongAudioURL, &r.SongURL,
			&r.ReviewDate, &score, &r.ReviewText,
		); err != nil {
			return nil, s.ioError("SQLITE_SCAN", "scan review", err)
		}
		r.ReviewScore = reviews.Score(score)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.ioError("SQLITE_QUERY", "query reviews", err)
	}
	return out, nil
}

// Save replaces the stored reviews with all in one transaction.
func (s SQLite) Save(ctx context.Context, all []reviews.Review) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return s.ioError("SQLITE_OPEN", "create database directory", err)
		}
	}

	db, err := open(ctx, s.Path, false)
	if err != nil {
		return s.ioError("SQLITE_OPEN", "open review database", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return s.ioError("SQLITE_MIGRATE", "prepare review table", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return s.ioError("SQLITE_WRITE", "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews"); err != nil {
		return s.ioError("SQLITE_WRITE", "clear reviews", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO reviews (position, "+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return s.ioError("SQLITE_WRITE", "prepare insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range all {
		if _, err := stmt.ExecContext(ctx, i,
			r.ReviewID, r.SongArtist, r.SongTitle, r.SongReleaseDate, r.SongUploadDate,
			r.SongDurationSec, r.SongAlbum, r.SongLabel, r.SongGenre, r.SongMood,
			r.SongInstrumentation, r.SongLanguage, r.SongAudioURL, r.SongURL,
			r.ReviewDate, float64(r.ReviewScore), r.ReviewText,
		); err != nil {
			return s.ioError("SQLITE_WRITE", "insert review", err).WithContext("review_id", r.ReviewID)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.ioError("SQLITE_WRITE", "commit reviews", err)
	}
	return nil
}

func (s SQLite) ioError(code, msg string, err error) *errors.OpeError {
	return errors.NewIOError(code, msg, err).WithContext("path", s.Path)
}
