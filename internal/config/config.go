// Package config provides configuration management for ope using Viper for
// loading from files, environment variables, and command-line flags.
//
// Values resolve in this order: flags bound by the cmd package, OPE_*
// environment variables, the YAML config file, then the defaults registered
// by SetDefaults. Load validates the result before returning it.
package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/conneroisu/ope/internal/errors"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// OPE_SERVER_PORT.
const EnvPrefix = "OPE"

type Config struct {
	Content ContentConfig `yaml:"content" json:"content" mapstructure:"content"`
	Site    SiteConfig    `yaml:"site" json:"site" mapstructure:"site"`
	Build   BuildConfig   `yaml:"build" json:"build" mapstructure:"build"`
	Server  ServerConfig  `yaml:"server" json:"server" mapstructure:"server"`
	API     APIConfig     `yaml:"api" json:"api" mapstructure:"api"`
	Data    DataConfig    `yaml:"data" json:"data" mapstructure:"data"`
	Log     LogConfig     `yaml:"log" json:"log" mapstructure:"log"`
}

// ContentConfig locates the hand-written Markdown files.
type ContentConfig struct {
	Dir    string `yaml:"dir" json:"dir" mapstructure:"dir"`
	Songs  string `yaml:"songs" json:"songs" mapstructure:"songs"`
	Albums string `yaml:"albums" json:"albums" mapstructure:"albums"`
	Links  string `yaml:"links" json:"links" mapstructure:"links"`
	About  string `yaml:"about" json:"about" mapstructure:"about"`
}

type SiteConfig struct {
	Title         string `yaml:"title" json:"title" mapstructure:"title"`
	Author        string `yaml:"author" json:"author" mapstructure:"author"`
	AuthorImage   string `yaml:"author_image" json:"author_image" mapstructure:"author_image"`
	ContactEmail  string `yaml:"contact_email" json:"contact_email" mapstructure:"contact_email"`
	NewsletterURL string `yaml:"newsletter_url" json:"newsletter_url" mapstructure:"newsletter_url"`
	PodcastURL    string `yaml:"podcast_url" json:"podcast_url" mapstructure:"podcast_url"`
	Timezone      string `yaml:"timezone" json:"timezone" mapstructure:"timezone"`
	TimezoneLabel string `yaml:"timezone_label" json:"timezone_label" mapstructure:"timezone_label"`
}

type BuildConfig struct {
	Output     string `yaml:"output" json:"output" mapstructure:"output"`
	Production bool   `yaml:"production" json:"production" mapstructure:"production"`
}

type ServerConfig struct {
	Host       string `yaml:"host" json:"host" mapstructure:"host"`
	Port       int    `yaml:"port" json:"port" mapstructure:"port"`
	LiveReload bool   `yaml:"live_reload" json:"live_reload" mapstructure:"live_reload"`
	Metrics    bool   `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

type APIConfig struct {
	BasePath       string `yaml:"base_path" json:"base_path" mapstructure:"base_path"`
	DefaultPerPage int    `yaml:"default_per_page" json:"default_per_page" mapstructure:"default_per_page"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
}

// DataConfig selects where the API loads reviews from.
type DataConfig struct {
	Source string `yaml:"source" json:"source" mapstructure:"source"`
	// Format is one of json, markdown or sqlite. markdown reads the songs file
	// from ContentConfig and ignores Source.
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// Data source formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSQLite   = "sqlite"
)

var defaults = map[string]interface{}{
	"content.dir":    "content",
	"content.songs":  "songs.md",
	"content.albums": "albums.md",
	"content.links":  "links.md",
	"content.about":  "about.md",

	"site.title":          "OPE!",
	"site.author":         "Ope",
	"site.author_image":   "images/author.jpg",
	"site.contact_email":  "hello@ope.blog",
	"site.newsletter_url": "",
	"site.podcast_url":    "",
	"site.timezone":       "America/Los_Angeles",
	"site.timezone_label": "PST",

	"build.output":     "public/index.html",
	"build.production": false,

	"server.host":        "localhost",
	"server.port":        8080,
	"server.live_reload": true,
	"server.metrics":     true,

	"api.base_path":        "/api",
	"api.default_per_page": 10,
	"api.rate_limit":       600,

	"data.source": filepath.Join("data", "reviews.json"),
	"data.format": FormatJSON,

	"log.level":  "info",
	"log.format": "text",
}

// SetDefaults registers every default on v. Registering a key also lets
// AutomaticEnv resolve its OPE_* override during Unmarshal.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the global viper instance into a validated Config.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a validated Config.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("CONFIG_DECODE", "decode configuration", err)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.NewConfigError("CONFIG_INVALID", "invalid configuration", err)
	}

	return &config, nil
}

// Path joins name onto the content directory.
func (c ContentConfig) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// Location loads the configured timezone.
func (c SiteConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Addr is the host:port the server listens on.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
