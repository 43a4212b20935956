package query

import (
	"strings"

	"github.com/conneroisu/ope/internal/reviews"
)

// CSVFilename is the attachment name of the CSV export.
const CSVFilename = "ope_reviews.csv"

// CSVHeader lists the export columns in order.
var CSVHeader = []string{"review_id", "song_title", "song_artist", "review_date", "review_score", "review_text", "song_url"}

// ExportCSV renders all as CSV: a header row, then one row per review joined
// by "\n" without a trailing newline. Text fields are always double-quoted
// with inner quotes doubled, and commas in the review text become
// semicolons. review_score is written bare. An empty sequence is
// ErrNoRecords.
func ExportCSV(all []reviews.Review) (string, error) {
	if len(all) == 0 {
		return "", ErrNoRecords
	}

	lines := make([]string, 0, len(all)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))

	for _, r := range all {
		row := []string{
			quote(r.ReviewID),
			quote(r.SongTitle),
			quote(r.SongArtist),
			quote(r.ReviewDate),
			r.ReviewScore.String(),
			quote(strings.ReplaceAll(r.ReviewText, ",", ";")),
			quote(r.MediaURL()),
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return strings.Join(lines, "\n"), nil
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
