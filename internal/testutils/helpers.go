// Package testutils holds fixtures shared by the package tests: a temporary
// project with a content directory, sample Markdown documents and a matching
// configuration.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ope/internal/config"
)

// SongsDoc has three songs; two are featured.
const SongsDoc = `# Songs

Weekly picks, newest first.

## Wednesday - "Bitter Everyday"
**Date:** August 19, 2025
**Featured:** ⭐
**Rating:** 0.5/4
**Description:** Even mildew and regret got bored by this song.
**Listen:** https://youtu.be/qGNRGk5TOLE

## Joyce Manor - "All My Friends Are So Depressed"
**Date:** August 18, 2025
**Rating:** 1/4
**Description:** The Civil War reenactment of Old 97's no one asked for, with "quotes".
**Listen:** https://youtu.be/NDmJDdFl_jI

## Morgan Wallen - "I'm The Problem"
**Date:** May 16, 2025
**Featured:** ⭐
**Rating:** 2/4
**Description:** Loud, proud and tired.
**Listen:** https://youtu.be/mw
`

// AlbumsDoc has two albums; the first is featured.
const AlbumsDoc = `# Albums

## Horses 4k - Nina
**Date:** August 1, 2025
**Featured:** ⭐
**Rating:** 3.5
**Description:** Mostly a pony.
**Listen:** https://youtu.be/album

## The Replacements - Tim
**Date:** July 4, 2025
**Description:** Still great.
`

// LinksDoc has one link.
const LinksDoc = `# Links

## Why Everything Is Loud Now
**Date:** August 2, 2025
**Description:** An essay on mastering.
**URL:** https://example.com/loud
`

// AboutDoc is an about page with a heading.
const AboutDoc = `# About OPE!

OPE! reviews one song a week.

Ratings are out of four.
`

// CreateTempProject creates a temporary project with a content and a data
// directory and returns its root.
func CreateTempProject(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	for _, dir := range []string{"content", "data"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tempDir, dir), 0o755))
	}

	return tempDir
}

// WriteContent writes the standard fixture documents into the project's
// content directory.
func WriteContent(t *testing.T, projectDir string) {
	t.Helper()
	WriteFile(t, filepath.Join(projectDir, "content", "songs.md"), SongsDoc)
	WriteFile(t, filepath.Join(projectDir, "content", "albums.md"), AlbumsDoc)
	WriteFile(t, filepath.Join(projectDir, "content", "links.md"), LinksDoc)
	WriteFile(t, filepath.Join(projectDir, "content", "about.md"), AboutDoc)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// CreateTestConfig returns the default configuration rooted at projectDir.
func CreateTestConfig(projectDir string) *config.Config {
	return &config.Config{
		Content: config.ContentConfig{
			Dir:    filepath.Join(projectDir, "content"),
			Songs:  "songs.md",
			Albums: "albums.md",
			Links:  "links.md",
			About:  "about.md",
		},
		Site: config.SiteConfig{
			Title:         "OPE!",
			Author:        "Ope",
			AuthorImage:   "images/author.jpg",
			ContactEmail:  "hello@ope.blog",
			Timezone:      "America/Los_Angeles",
			TimezoneLabel: "PST",
		},
		Build: config.BuildConfig{
			Output: filepath.Join(projectDir, "public", "index.html"),
		},
		Server: config.ServerConfig{
			Host:       "127.0.0.1",
			Port:       0,
			LiveReload: true,
			Metrics:    true,
		},
		API: config.APIConfig{
			BasePath:       "/api",
			DefaultPerPage: 10,
			RateLimit:      0,
		},
		Data: config.DataConfig{
			Source: filepath.Join(projectDir, "data", "reviews.json"),
			Format: config.FormatJSON,
		},
		Log: config.LogConfig{
			Level:  "debug",
			Format: "text",
		},
	}
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}
