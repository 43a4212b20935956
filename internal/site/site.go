// Package site renders parsed content into the HTML fragments and the single
// page of the blog. Components are written as .templ files.
package site

//go:generate templ generate

import (
	"bytes"
	"context"

	"github.com/a-h/templ"

	"github.com/conneroisu/ope/internal/content"
)

// Info is the static boilerplate of the site.
type Info struct {
	Title         string
	Author        string
	AuthorImage   string
	ContactEmail  string
	NewsletterURL string
	PodcastURL    string
	TimezoneLabel string
	Year          int
}

// Data is everything Page needs to render the document.
type Data struct {
	Info        Info
	Songs       []content.Entry
	Albums      []content.Entry
	Links       []content.Entry
	About       *About
	LastUpdated string
	// LiveReloadPath, when set, adds a script that reloads the page on a
	// "reload" message from the WebSocket at this path.
	LiveReloadPath string
}

// Render renders c into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
