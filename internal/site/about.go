package site

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultAboutTitle heads the About section when the document names none.
const DefaultAboutTitle = "About OPE!"

// AboutMissing replaces the About section when about.md does not exist.
const AboutMissing = "About section not found."

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// About is the rendered About document.
type About struct {
	Title string
	// HTML is the goldmark output for the body. Raw HTML in the source is
	// omitted by the renderer.
	HTML string
}

type aboutMeta struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// ParseAbout renders an about.md source. The title comes from frontmatter,
// then from a leading "# " heading (which is then dropped from the body),
// then DefaultAboutTitle.
func ParseAbout(source []byte) (*About, error) {
	var meta aboutMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse about frontmatter: %w", err)
	}

	title := strings.TrimSpace(meta.Title)
	trimmed := strings.TrimLeft(string(body), "\r\n\t ")
	if strings.HasPrefix(trimmed, "# ") {
		heading, rest, _ := strings.Cut(trimmed, "\n")
		if title == "" {
			title = strings.TrimSpace(strings.TrimPrefix(heading, "# "))
		}
		body = []byte(rest)
	}
	if title == "" {
		title = DefaultAboutTitle
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render about: %w", err)
	}

	return &About{Title: title, HTML: buf.String()}, nil
}
