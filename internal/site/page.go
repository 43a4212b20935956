package site

import "github.com/a-h/templ"

// Tab is one panel of the page.
type Tab struct {
	ID    string
	Title string
	Body  templ.Component
}

// Tabs lists the page panels in display order.
func Tabs(data Data) []Tab {
	return []Tab{
		{ID: "free", Title: "Songs", Body: FeaturedSongs(data.Songs)},
		{ID: "newsletter", Title: "Newsletter", Body: external(
			"Get a link to my latest reviews every Friday, along with other fun links and musings about life: ",
			data.Info.NewsletterURL)},
		{ID: "podcast", Title: "Podcast", Body: external(
			"It's like OPE! but easier to understand: ", data.Info.PodcastURL)},
		{ID: "members", Title: "All Weekly Picks", Body: membersPanel(data.Songs, data.Links)},
		{ID: "albums", Title: "Albums", Body: albumsPanel(data.Albums)},
		{ID: "about", Title: "About", Body: AboutSection(data.About)},
	}
}
