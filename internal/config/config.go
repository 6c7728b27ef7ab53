// Package config loads the application configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cityevents/eventline/internal/scraper"
)

// SourceConfig describes one scraped listing: where the items live and
// which CSS selectors pull each field out of an item.
type SourceConfig struct {
	// Name identifies the source in logs and CLI output.
	Name string `yaml:"name"`

	// URL is the listing page address. It may contain a "{page}"
	// placeholder for paginated listings.
	URL string `yaml:"url"`

	// ItemSelector matches one event item on the listing page.
	ItemSelector string `yaml:"item_selector"`

	// StartPage and MaxPages bound pagination. MaxPages 0 means a single
	// page.
	StartPage int `yaml:"start_page,omitempty"`
	MaxPages  int `yaml:"max_pages,omitempty"`

	// Fields maps draft field names (title, city, origin_url, start_text,
	// end_text, ...) to selectors evaluated inside each item.
	Fields map[string]scraper.FieldSpec `yaml:"fields"`

	// Order lists the date directives expected in this source's date
	// texts, most specific first (e.g. ["%d", "%B", "%H", "%M"]).
	Order []string `yaml:"order"`

	// Complement fills directives missing from one date text with values
	// found in the other, for start/end pairs.
	Complement bool `yaml:"complement,omitempty"`

	// CategoryPattern is a regexp whose first group extracts a category
	// slug from the item's origin URL.
	CategoryPattern string `yaml:"category_pattern,omitempty"`
}

// MiddlewareConfig holds the aggregation middleware endpoint settings.
type MiddlewareConfig struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	PreActionPath string `yaml:"pre_action_path,omitempty"`
	MaxRetries    uint64 `yaml:"max_retries,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// RootURL is the scraped site's base address; relative links and
	// covers are rooted against it.
	RootURL string `yaml:"root_url"`

	// Origin is the origin domain recorded on every event.
	Origin string `yaml:"origin"`

	// Locale selects the date vocabulary ("en", "ru").
	Locale string `yaml:"locale"`

	// Language is the language tag recorded on every event.
	Language string `yaml:"language"`

	// City is the default city recorded when a source has no city field.
	City string `yaml:"city,omitempty"`

	// DatabasePath is the sqlite file path; ":memory:" is accepted.
	DatabasePath string `yaml:"database_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Schedule is the cron expression for the periodic parse-and-post
	// loop run by the "run" command.
	Schedule string `yaml:"schedule,omitempty"`

	Middleware MiddlewareConfig `yaml:"middleware"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// Default returns the built-in defaults applied before the file is read.
func Default() *Config {
	return &Config{
		Locale:       "en",
		Language:     "en",
		DatabasePath: "eventline.db",
		LogLevel:     "info",
		Schedule:     "0 6 * * *",
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.RootURL == "" {
		return fmt.Errorf("root_url is required")
	}
	if c.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for i, src := range c.Sources {
		if src.URL == "" {
			return fmt.Errorf("sources[%d]: url is required", i)
		}
		if src.ItemSelector == "" {
			return fmt.Errorf("sources[%d]: item_selector is required", i)
		}
		if len(src.Fields) == 0 {
			return fmt.Errorf("sources[%d]: fields are required", i)
		}
	}
	return nil
}
