// Package config loads the server configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultAddr             = ":8080"
	DefaultFetchTimeout     = 5 * time.Second
	DefaultFetchConcurrency = 4
	DefaultFetchRate        = 8.0
	DefaultSiteMaxAge       = 15 * time.Minute
	DefaultTopK             = 4
	DefaultAnalyticsBuffer  = 256
)

// Config is the full server configuration.
type Config struct {
	// Server holds the HTTP listener settings.
	Server ServerConfig `toml:"server"`

	// Site describes the origin to index and which paths to warm up.
	Site SiteConfig `toml:"site"`

	// FAQ points at the FAQ content sources.
	FAQ FAQConfig `toml:"faq"`

	// Retrieval tunes scoring and result count.
	Retrieval RetrievalConfig `toml:"retrieval"`

	// OpenAI enables the optional answer generation. Empty key disables it.
	OpenAI OpenAIConfig `toml:"openai"`

	// Analytics configures the event capturer.
	Analytics AnalyticsConfig `toml:"analytics"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SiteConfig describes the site to index.
type SiteConfig struct {
	// Origin is the site's base URL, e.g. "https://example.dev".
	Origin string `toml:"origin"`

	// Paths are the site paths warmed into the index, e.g. ["/", "/about"].
	Paths []string `toml:"paths"`

	// FetchTimeout bounds a single page fetch.
	FetchTimeout time.Duration `toml:"fetch_timeout"`

	// FetchConcurrency bounds parallel page fetches during warm-up.
	FetchConcurrency int `toml:"fetch_concurrency"`

	// FetchRate is the maximum outbound fetches per second.
	FetchRate float64 `toml:"fetch_rate"`

	// MaxAge is how long an indexed page stays fresh before the next
	// warm-up refetches it. Zero never refetches.
	MaxAge time.Duration `toml:"max_age"`
}

// FAQConfig points at the FAQ content sources.
type FAQConfig struct {
	// EntriesPath overrides the compiled-in FAQ entries (TOML). Optional.
	EntriesPath string `toml:"entries_path"`

	// MarkdownPath is the long-form FAQ document. Optional.
	MarkdownPath string `toml:"markdown_path"`

	// Watch re-ingests the markdown document when it changes on disk.
	Watch bool `toml:"watch"`
}

// RetrievalConfig tunes scoring and result count.
type RetrievalConfig struct {
	TopK        int     `toml:"top_k"`
	TitleWeight float64 `toml:"title_weight"`
	TagWeight   float64 `toml:"tag_weight"`
	TextWeight  float64 `toml:"text_weight"`
}

// OpenAIConfig enables optional answer generation.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// AnalyticsConfig configures the event capturer.
type AnalyticsConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML config file and applies defaults to unset fields.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Site.FetchTimeout == 0 {
		c.Site.FetchTimeout = DefaultFetchTimeout
	}
	if c.Site.FetchConcurrency == 0 {
		c.Site.FetchConcurrency = DefaultFetchConcurrency
	}
	if c.Site.FetchRate == 0 {
		c.Site.FetchRate = DefaultFetchRate
	}
	if c.Site.MaxAge == 0 {
		c.Site.MaxAge = DefaultSiteMaxAge
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.Retrieval.TitleWeight == 0 {
		c.Retrieval.TitleWeight = 3.0
	}
	if c.Retrieval.TagWeight == 0 {
		c.Retrieval.TagWeight = 2.0
	}
	if c.Retrieval.TextWeight == 0 {
		c.Retrieval.TextWeight = 1.0
	}
	if c.Analytics.BufferSize == 0 {
		c.Analytics.BufferSize = DefaultAnalyticsBuffer
	}
}
