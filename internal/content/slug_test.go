package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		title    string
		typ      Type
		expected string
	}{
		{"Wednesday: Bitter Everyday!", TypeSong, "wednesday-bitter-everyday-song-review"},
		{"Wednesday: Bitter Everyday!", TypeAlbum, "wednesday-bitter-everyday-album-review"},
		{`Joyce Manor - "All My Friends Are So Depressed"`, TypeSong, "joyce-manor-all-my-friends-are-so-depressed-song-review"},
		{"Florence + The Machine - Everybody Scream", TypeSong, "florence-the-machine-everybody-scream-song-review"},
		{"  --Leading and trailing--  ", TypeSong, "leading-and-trailing-song-review"},
		{"Tabs\tand\nnewlines", TypeAlbum, "tabs-and-newlines-album-review"},
		{"AC/DC", TypeSong, "acdc-song-review"},
		{"Café Tacvba", TypeSong, "caf-tacvba-song-review"},
		{"Horses 4k", TypeLink, "horses-4k"},
		{"!!!", TypeSong, "-song-review"},
		{"", TypeLink, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slug(tc.title, tc.typ))
		})
	}
}

func TestSlugCollisionsAreNotResolved(t *testing.T) {
	assert.Equal(t, Slug("Bitter Everyday", TypeSong), Slug("BITTER: everyday!", TypeSong))
}

func TestEntryID(t *testing.T) {
	e := Entry{Title: "Horses 4k - Nina"}
	assert.Equal(t, "horses-4k-nina-album-review", e.ID(TypeAlbum))
}

func TestTypeSuffix(t *testing.T) {
	assert.Equal(t, "-song-review", TypeSong.Suffix())
	assert.Equal(t, "-album-review", TypeAlbum.Suffix())
	assert.Equal(t, "", TypeLink.Suffix())
	assert.Equal(t, "album", TypeAlbum.String())
}
