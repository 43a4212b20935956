package site

// Placeholder texts for empty sections.
const (
	NoSongs         = "No songs available yet."
	NoFeaturedSongs = "No featured songs this week."
	NoAlbums        = "No album reviews available yet."
	NoLinks         = "No links available yet."
)

// DefaultSongRating is shown for songs without a rating line.
const DefaultSongRating = "4/4"

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
