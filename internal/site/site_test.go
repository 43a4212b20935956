package site

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/ope/internal/content"
)

var songs = []content.Entry{
	{Title: `Wednesday - "Bitter Everyday"`, Date: "August 19, 2025", Rating: "0.5/4", Featured: true, Description: "Mildew.", MediaLink: "https://youtu.be/q"},
	{Title: `Joyce Manor - "Depressed"`, Date: "August 18, 2025", Description: "Old 97's & <friends>", MediaLink: "https://youtu.be/n"},
	{Title: `Horses 4k - "Pony"`, Date: "August 15, 2025", Featured: true},
}

func render(t *testing.T, c templ.Component) *html.Node {
	t.Helper()
	s, err := Render(context.Background(), c)
	require.NoError(t, err)
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return n.Type == html.ElementNode && strings.Contains(" "+attr(n, "class")+" ", " "+class+" ")
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return hasClass(n, class) }
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }
}

func text(n *html.Node) string {
	var b strings.Builder
	for _, t := range findAll(n, func(n *html.Node) bool { return n.Type == html.TextNode }) {
		b.WriteString(t.Data)
	}
	return b.String()
}

func TestFeaturedSongs(t *testing.T) {
	doc := render(t, FeaturedSongs(songs))

	entries := findAll(doc, byClass("song-entry"))
	require.Len(t, entries, 2)
	assert.Equal(t, "wednesday-bitter-everyday-song-review", attr(entries[0], "id"))
	assert.Equal(t, `wednesday - "bitter everyday"`, attr(entries[0], "data-artist"))
	assert.Equal(t, "horses-4k-pony-song-review", attr(entries[1], "id"))

	ratings := findAll(doc, byClass("song-rating"))
	assert.Equal(t, "0.5/4", text(ratings[0]))
	assert.Equal(t, DefaultSongRating, text(ratings[1]))

	require.Len(t, findAll(doc, func(n *html.Node) bool { return attr(n, "id") == "song-search" }), 1)
}

func TestFeaturedSongsEmpty(t *testing.T) {
	assert.Contains(t, text(render(t, FeaturedSongs(nil))), NoSongs)
	assert.Contains(t, text(render(t, FeaturedSongs(songs[1:2]))), NoFeaturedSongs)
}

func TestAllSongsEscapes(t *testing.T) {
	s, err := Render(context.Background(), AllSongs(songs))
	require.NoError(t, err)
	assert.Contains(t, s, "Old 97&#39;s &amp; &lt;friends&gt;")
	assert.NotContains(t, s, "<friends>")

	doc := render(t, AllSongs(songs))
	assert.Len(t, findAll(doc, byClass("song-entry")), 3)
	assert.Contains(t, text(doc), "All Weekly Picks")

	share := findAll(doc, byClass("share-btn"))
	require.Len(t, share, 3)
	assert.Equal(t, `Wednesday - "Bitter Everyday"`, attr(share[0], "data-share-title"))
}

func TestUnsafeLinksAreSanitized(t *testing.T) {
	doc := render(t, SongEntry(content.Entry{Title: "x", Date: "d", MediaLink: "javascript:alert(1)"}))
	links := findAll(doc, byTag("a"))
	require.Len(t, links, 1)
	assert.NotContains(t, attr(links[0], "href"), "javascript")
}

func TestAlbums(t *testing.T) {
	albums := []content.Entry{
		{Title: "Horses 4k - Nina", Date: "May 1, 2025", Rating: "3", Featured: true, MediaLink: "https://youtu.be/a"},
		{Title: "Unrated", Date: "May 2, 2025"},
	}

	doc := render(t, Albums(albums))
	entries := findAll(doc, byClass("song-entry"))
	require.Len(t, entries, 2)
	assert.Equal(t, "horses-4k-nina-album-review", attr(entries[0], "id"))

	ratings := findAll(doc, byClass("song-rating"))
	assert.Equal(t, "3/4", text(ratings[0]))
	assert.Equal(t, "0/4", text(ratings[1]))
	assert.Contains(t, text(findAll(doc, byClass("song-date"))[1]), "Reviewed: May 2, 2025")

	assert.Contains(t, text(render(t, Albums(nil))), NoAlbums)

	featured := render(t, FeaturedAlbum(albums))
	assert.Contains(t, text(featured), "Featured Album")
	assert.Contains(t, text(featured), "Horses 4k - Nina")

	s, err := Render(context.Background(), FeaturedAlbum(albums[1:]))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLinks(t *testing.T) {
	links := []content.Entry{{Title: "Why Pop Is Loud", Date: "June 1", Description: "An essay.", URL: "https://example.com/loud"}}

	doc := render(t, Links(links))
	assert.Contains(t, text(doc), "Link Recommendations")
	a := findAll(doc, byTag("a"))
	require.Len(t, a, 1)
	assert.Equal(t, "https://example.com/loud", attr(a[0], "href"))
	assert.Equal(t, "Read Article", text(a[0]))

	assert.Contains(t, text(render(t, Links(nil))), NoLinks)
}

func TestParseAbout(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		title     string
		contains  string
		notInBody string
	}{
		{
			name:      "leading heading",
			source:    "# About OPE!\n\nFirst paragraph.\n\nSecond *paragraph*.\n",
			title:     "About OPE!",
			contains:  "<em>paragraph</em>",
			notInBody: "<h1",
		},
		{
			name:     "frontmatter title wins",
			source:   "---\ntitle: Who Writes This\n---\n# Ignored\n\nHello.\n",
			title:    "Who Writes This",
			contains: "<p>Hello.</p>",
		},
		{
			name:     "default title",
			source:   "Just prose.\n",
			title:    DefaultAboutTitle,
			contains: "<p>Just prose.</p>",
		},
		{
			name:      "raw html is not passed through",
			source:    "Hi <script>alert(1)</script>\n",
			title:     DefaultAboutTitle,
			notInBody: "<script>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			about, err := ParseAbout([]byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.title, about.Title)
			if tt.contains != "" {
				assert.Contains(t, about.HTML, tt.contains)
			}
			if tt.notInBody != "" {
				assert.NotContains(t, about.HTML, tt.notInBody)
			}
		})
	}
}

func TestAboutSectionMissing(t *testing.T) {
	assert.Contains(t, text(render(t, AboutSection(nil))), AboutMissing)
}

func TestFooter(t *testing.T) {
	info := Info{Title: "OPE!", Author: "Ope", AuthorImage: "images/author.jpg", ContactEmail: "hi@ope.blog", TimezoneLabel: "PST", Year: 2025}
	doc := render(t, Footer("August 19, 2025", info))

	assert.Contains(t, text(doc), "Last updated: August 19, 2025 (PST)")
	assert.Contains(t, text(doc), "© 2025 OPE!. All rights reserved.")
	img := findAll(doc, byTag("img"))
	require.Len(t, img, 1)
	assert.Equal(t, "Ope", attr(img[0], "alt"))
	mail := findAll(doc, byTag("a"))
	require.Len(t, mail, 1)
	assert.Equal(t, "mailto:hi@ope.blog", attr(mail[0], "href"))
}

func TestFormatDate(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 03:00 UTC is still the previous day in Los Angeles.
	ts := time.Date(2025, 8, 20, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "August 19, 2025", FormatDate(ts, la))
	assert.Equal(t, "August 20, 2025", FormatDate(ts, nil))
}

func TestPage(t *testing.T) {
	about, err := ParseAbout([]byte("# About\n\nHello.\n"))
	require.NoError(t, err)

	data := Data{
		Info:        Info{Title: "OPE!", Year: 2025, NewsletterURL: "https://example.com/newsletter/"},
		Songs:       songs,
		Links:       []content.Entry{{Title: "L", Date: "d", URL: "https://example.com"}},
		About:       about,
		LastUpdated: "August 19, 2025",
	}
	doc := render(t, Page(data))

	panels := findAll(doc, byClass("tab-panel"))
	var ids []string
	for _, p := range panels {
		ids = append(ids, attr(p, "id"))
	}
	assert.Equal(t, []string{"tab-free", "tab-newsletter", "tab-podcast", "tab-members", "tab-albums", "tab-about"}, ids)

	assert.Len(t, findAll(panels[0], byClass("song-entry")), 2, "songs tab shows featured only")
	assert.Len(t, findAll(panels[3], byClass("song-entry")), 3, "members tab shows all songs")
	assert.Len(t, findAll(panels[3], byClass("link-entry")), 1)
	assert.Contains(t, text(panels[1]), "https://example.com/newsletter/")
	assert.Len(t, findAll(doc, byTag("footer")), 1)

	for _, s := range findAll(doc, byTag("script")) {
		assert.Empty(t, attr(s, "data-path"), "no live reload script unless enabled")
	}

	data.LiveReloadPath = "/ws"
	doc = render(t, Page(data))
	var paths []string
	for _, s := range findAll(doc, byTag("script")) {
		if p := attr(s, "data-path"); p != "" {
			paths = append(paths, p)
		}
	}
	assert.Equal(t, []string{"/ws"}, paths)
}

func TestStripComments(t *testing.T) {
	in := []byte("<!DOCTYPE html><html><!-- dev note --><body>\n  <p>keep <!--x-->me</p>\n<script>if (a < b) { /* <!-- not a comment in script --> */ }</script></body></html>")

	got, err := StripComments(in)
	require.NoError(t, err)

	s := string(got)
	assert.NotContains(t, s, "dev note")
	assert.NotContains(t, s, "<!--x-->")
	assert.Contains(t, s, "<p>keep me</p>")
	assert.Contains(t, s, "if (a < b)")
	assert.Contains(t, s, "\n  <p>")
}

func TestStripCommentsFromPage(t *testing.T) {
	s, err := Render(context.Background(), Page(Data{Info: Info{Title: "OPE!"}}))
	require.NoError(t, err)
	require.Contains(t, s, "<!-- Footer -->")

	got, err := StripComments([]byte(s))
	require.NoError(t, err)
	assert.NotContains(t, string(got), "<!--")
}
