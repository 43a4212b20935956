package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ope/internal/query"
	"github.com/conneroisu/ope/internal/reviews"
	"github.com/conneroisu/ope/internal/store"
	"github.com/conneroisu/ope/internal/testutils"
)

// execute runs the root command with args from a fresh project directory
// and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetState()
	t.Cleanup(resetState)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// resetState clears viper and every flag so commands can run repeatedly in
// one process.
func resetState() {
	viper.Reset()
	cfgFile = ""
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := testutils.CreateTempProject(t)
	testutils.WriteContent(t, dir)
	t.Chdir(dir)
	return dir
}

func TestBuildCommand(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "songs: 3")
	assert.Contains(t, out, "albums: 2")

	page, err := os.ReadFile(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Bitter Everyday")
}

func TestBuildCommandOutputFlag(t *testing.T) {
	dir := newProject(t)

	_, err := execute(t, "build", "--output", filepath.Join("public", "page.html"), "--production")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "public", "page.html"))
	assert.NoFileExists(t, filepath.Join(dir, "public", "index.html"))
}

func TestBuildCommandReadsConfigFile(t *testing.T) {
	dir := newProject(t)
	testutils.WriteFile(t, filepath.Join(dir, ".ope.yml"), "site:\n  title: Config Title\nbuild:\n  output: site.html\n")

	_, err := execute(t, "build")
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dir, "site.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Config Title")
}

func TestConvertCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		dir := newProject(t)

		out, err := execute(t, "convert")
		require.NoError(t, err)
		assert.Contains(t, out, "Converted 3 reviews")

		data, err := os.ReadFile(filepath.Join(dir, "data", "reviews.json"))
		require.NoError(t, err)
		snap, err := reviews.DecodeSnapshot(data)
		require.NoError(t, err)
		assert.Equal(t, 3, snap.Metadata.TotalReviews)
		assert.Equal(t, "songs.md", snap.Metadata.SourceFile)
		require.Len(t, snap.Reviews, 3)
		assert.Equal(t, "Wednesday", snap.Reviews[0].SongArtist)
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := newProject(t)

		_, err := execute(t, "convert", "--format", "sqlite")
		require.NoError(t, err)

		all, err := store.SQLite{Path: filepath.Join(dir, "data", "reviews.db")}.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("missing input", func(t *testing.T) {
		newProject(t)

		_, err := execute(t, "convert", "--input", "nope.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "songs file not found")
	})

	t.Run("unknown format", func(t *testing.T) {
		newProject(t)

		_, err := execute(t, "convert", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("stdout from markdown", func(t *testing.T) {
		newProject(t)

		out, err := execute(t, "export", "--data-format", "markdown")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, strings.Join(query.CSVHeader, ","), lines[0])
	})

	t.Run("file from snapshot", func(t *testing.T) {
		dir := newProject(t)
		_, err := execute(t, "convert")
		require.NoError(t, err)

		_, err = execute(t, "export", "--out", "ope_reviews.csv")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "ope_reviews.csv"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "review_id,song_title"))
	})

	t.Run("no reviews", func(t *testing.T) {
		newProject(t)

		_, err := execute(t, "export")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No reviews found")
	})
}

func TestConfigShow(t *testing.T) {
	newProject(t)
	t.Setenv("OPE_SERVER_PORT", "9000")

	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	var shown struct {
		Server struct {
			Port int `json:"port"`
		} `json:"server"`
		API struct {
			BasePath string `json:"base_path"`
		} `json:"api"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, 9000, shown.Server.Port)
	assert.Equal(t, "/api", shown.API.BasePath)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_path: /api")
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir := newProject(t)
		testutils.WriteFile(t, filepath.Join(dir, "good.yml"), "server:\n  port: 3000\n")

		out, err := execute(t, "config", "validate", "--file", "good.yml")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		dir := newProject(t)
		testutils.WriteFile(t, filepath.Join(dir, "bad.yml"), "api:\n  base_path: /\nlog:\n  level: loud\n")

		_, err := execute(t, "config", "validate", "--file", "bad.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_path")
		assert.Contains(t, err.Error(), "level")
	})

	t.Run("missing file", func(t *testing.T) {
		newProject(t)

		_, err := execute(t, "config", "validate", "--file", "missing.yml")
		require.Error(t, err)
	})
}

func TestRootRejectsMissingConfigFile(t *testing.T) {
	newProject(t)

	_, err := execute(t, "build", "--config", "missing.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	_, err = execute(t, "version", "--format", "xml")
	require.Error(t, err)
}
