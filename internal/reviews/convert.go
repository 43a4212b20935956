package reviews

import (
	"regexp"
	"strings"

	"github.com/conneroisu/ope/internal/content"
)

// reviewHeader matches section titles of the form: Artist - "Song".
var reviewHeader = regexp.MustCompile(`^(.+?) - "(.+?)"`)

// ParseHeader splits a song section title into artist and song title.
func ParseHeader(title string) (artist, song string, ok bool) {
	m := reviewHeader.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// FromEntries converts parsed song entries into reviews. Entries whose title
// does not follow the Artist - "Song" form are skipped. An entry without a
// date keeps an empty ReviewDate; pass content.ParseSections output to keep
// such sections.
func FromEntries(entries []content.Entry) []Review {
	out := make([]Review, 0, len(entries))
	for _, e := range entries {
		artist, song, ok := ParseHeader(e.Title)
		if !ok {
			continue
		}
		out = append(out, Review{
			SongArtist:  artist,
			SongTitle:   song,
			SongURL:     e.MediaLink,
			ReviewDate:  e.Date,
			ReviewScore: ParseScore(e.Rating),
			ReviewText:  e.Description,
			ReviewID:    ID(artist, song),
		})
	}
	return out
}
