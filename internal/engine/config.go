package engine

import (
	"net/http"
	"time"
)

// Default endpoints and timeouts.
const (
	DefaultYouTubeAPIBase = "https://www.googleapis.com/youtube/v3"
	DefaultFetchTimeout   = 5 * time.Second
	DefaultPluginName     = "YouTube Live Perma Embed"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	PluginName     string
	PluginVersion  string
	SiteURL        string // sent as Referer to satisfy API key referrer restrictions
	SettingsURL    string // linked from the misconfigured message
	YouTubeAPIBase string
	FetchTimeout   time.Duration
	HTTPClient     *http.Client
}

// Meta returns the static plugin metadata handed to render functions.
func (c Config) Meta() Meta {
	name := c.PluginName
	if name == "" {
		name = DefaultPluginName
	}
	return Meta{
		Name:        name,
		Version:     c.PluginVersion,
		SettingsURL: c.SettingsURL,
	}
}

var cfg = Config{
	PluginName:     DefaultPluginName,
	YouTubeAPIBase: DefaultYouTubeAPIBase,
	FetchTimeout:   DefaultFetchTimeout,
}

// Cfg exposes the engine configuration for sub-packages (sources, settings).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero values fall back to the package defaults.
func Init(c Config) {
	if c.PluginName == "" {
		c.PluginName = DefaultPluginName
	}
	if c.YouTubeAPIBase == "" {
		c.YouTubeAPIBase = DefaultYouTubeAPIBase
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	cfg = c
	Cfg = &cfg
}
