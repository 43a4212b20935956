// Package reviews holds the review record served by the query API and the
// sources it can be loaded from.
package reviews

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/conneroisu/ope/internal/content"
)

// Review is the flat record of one song review.
type Review struct {
	SongArtist          string `json:"song_artist"`
	SongTitle           string `json:"song_title"`
	SongReleaseDate     string `json:"song_release_date,omitempty"`
	SongUploadDate      string `json:"song_upload_date,omitempty"`
	SongDurationSec     int    `json:"song_duration_sec,omitempty"`
	SongAlbum           string `json:"song_album,omitempty"`
	SongLabel           string `json:"song_label,omitempty"`
	SongGenre           string `json:"song_genre,omitempty"`
	SongMood            string `json:"song_mood,omitempty"`
	SongInstrumentation string `json:"song_instrumentation,omitempty"`
	SongLanguage        string `json:"song_language,omitempty"`
	SongAudioURL        string `json:"song_audio_url,omitempty"`
	SongURL             string `json:"song_url,omitempty"`
	ReviewDate          string `json:"review_date"`
	ReviewScore         Score  `json:"review_score"`
	ReviewText          string `json:"review_text"`
	ReviewID            string `json:"review_id"`
}

// MediaURL returns the link to the reviewed song, preferring SongURL.
func (r Review) MediaURL() string {
	if r.SongURL != "" {
		return r.SongURL
	}
	return r.SongAudioURL
}

// ID derives the stable identifier of a review from its artist and title.
func ID(artist, title string) string {
	return content.Slug(artist+" "+title, content.TypeSong)
}

// Score is a review score. It decodes from a JSON number or from a rating
// string such as "3.5/4" so that older snapshots keep loading.
type Score float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = ParseScore(raw)
		return nil
	}
	if string(data) == "null" {
		*s = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = finite(f)
	return nil
}

// String formats the score the way a JSON number is written: "4", "0.5".
func (s Score) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// ParseScore extracts a numeric score from a free-form rating. "3.5/4" and
// "3.5" both give 3.5; anything unparsable or non-finite ("NaN", "Inf")
// gives 0.
func ParseScore(rating string) Score {
	rating = strings.TrimSpace(rating)
	if i := strings.Index(rating, "/"); i >= 0 {
		rating = strings.TrimSpace(rating[:i])
	}
	f, err := strconv.ParseFloat(rating, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// finite keeps every score encodable as a JSON number.
func finite(f float64) Score {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Score(f)
}
