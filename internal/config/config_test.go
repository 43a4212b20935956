package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ope/internal/errors"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadDefaults(t *testing.T) {
	config, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, "content", config.Content.Dir)
	assert.Equal(t, "songs.md", config.Content.Songs)
	assert.Equal(t, "albums.md", config.Content.Albums)
	assert.Equal(t, "links.md", config.Content.Links)
	assert.Equal(t, "about.md", config.Content.About)
	assert.Equal(t, "public/index.html", config.Build.Output)
	assert.False(t, config.Build.Production)
	assert.Equal(t, "America/Los_Angeles", config.Site.Timezone)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.True(t, config.Server.LiveReload)
	assert.Equal(t, "/api", config.API.BasePath)
	assert.Equal(t, 10, config.API.DefaultPerPage)
	assert.Equal(t, 600, config.API.RateLimit)
	assert.Equal(t, filepath.Join("data", "reviews.json"), config.Data.Source)
	assert.Equal(t, FormatJSON, config.Data.Format)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ope.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
content:
  dir: site/content
server:
  port: 3000
  live_reload: false
data:
  format: markdown
log:
  level: debug
  format: json
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "site/content", config.Content.Dir)
	assert.Equal(t, "songs.md", config.Content.Songs, "unset keys keep defaults")
	assert.Equal(t, 3000, config.Server.Port)
	assert.False(t, config.Server.LiveReload)
	assert.Equal(t, FormatMarkdown, config.Data.Format)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("OPE_SERVER_PORT", "9999")
	t.Setenv("OPE_SERVER_HOST", "0.0.0.0")
	t.Setenv("OPE_API_BASE_PATH", "/v1")

	config, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "/v1", config.API.BasePath)
	assert.Equal(t, "0.0.0.0:9999", config.Server.Addr())
}

func TestLoadGlobal(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 4000)

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, config.Server.Port)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		field string
	}{
		{"port too large", "server.port", 70000, "port"},
		{"negative port", "server.port", -1, "port"},
		{"dangerous host", "server.host", "localhost; rm -rf /", "host"},
		{"content traversal", "content.dir", "../../etc", "dir"},
		{"nested songs file", "content.songs", "sub/songs.md", "songs"},
		{"unknown timezone", "site.timezone", "Mars/Olympus_Mons", "timezone"},
		{"relative base path", "api.base_path", "api", "base_path"},
		{"root base path", "api.base_path", "/", "base_path"},
		{"zero per page", "api.default_per_page", -5, "default_per_page"},
		{"unknown format", "data.format", "xml", "format"},
		{"unknown level", "log.level", "verbose", "level"},
		{"unknown log format", "log.format", "logfmt", "format"},
		{"output traversal", "build.output", "../index.html", "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			config, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, config)
			assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadDecodeError(t *testing.T) {
	v := newViper()
	v.Set("server.port", "invalid_port")

	_, err := LoadFrom(v)
	require.Error(t, err)

	var oe *errors.OpeError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "CONFIG_DECODE", oe.Code)
}

func TestMarkdownFormatNeedsNoSource(t *testing.T) {
	v := newViper()
	v.Set("data.format", FormatMarkdown)
	v.Set("data.source", "")

	_, err := LoadFrom(v)
	assert.NoError(t, err)

	v = newViper()
	v.Set("data.source", "")
	_, err = LoadFrom(v)
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	c := ContentConfig{Dir: "content"}
	assert.Equal(t, filepath.Join("content", "songs.md"), c.Path("songs.md"))

	loc, err := SiteConfig{Timezone: "America/Los_Angeles"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())
}
