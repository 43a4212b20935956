// Package content parses the hand-written Markdown content files of the blog
// (songs, albums, links) into ordered entry records and derives their stable
// identifiers.
//
// Parsing is total: any string input yields a (possibly empty) sequence and
// never an error. Sections missing a title or a date are dropped silently so
// that hand-edited files with half-written entries still build.
package content

// Type identifies the kind of content a Markdown file holds. It selects the
// identifier suffix used by Slug.
type Type string

const (
	TypeSong  Type = "song"
	TypeAlbum Type = "album"
	TypeLink  Type = "link"
)

// Suffix returns the identifier suffix for the content type.
func (t Type) Suffix() string {
	switch t {
	case TypeSong:
		return "-song-review"
	case TypeAlbum:
		return "-album-review"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// FeaturedGlyph marks an entry as featured when present in its Featured field.
const FeaturedGlyph = "⭐"

// Entry is one parsed "## Title" section.
//
// Only Title and Date are required. Every other field is the empty string
// (or false) when its line is absent.
type Entry struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Rating      string `json:"rating,omitempty"`
	Featured    bool   `json:"featured"`
	Description string `json:"description,omitempty"`
	MediaLink   string `json:"media_link,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ID returns the entry's identifier within the given content type namespace.
func (e Entry) ID(t Type) string {
	return Slug(e.Title, t)
}

// Featured returns the featured entries in source order.
func Featured(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Featured {
			out = append(out, e)
		}
	}
	return out
}

// FirstFeatured returns the first featured entry, if any.
func FirstFeatured(entries []Entry) (Entry, bool) {
	for _, e := range entries {
		if e.Featured {
			return e, true
		}
	}
	return Entry{}, false
}
