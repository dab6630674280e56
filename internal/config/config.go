package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// DefaultPath is the configuration file looked up when none is given explicitly.
const DefaultPath = "guidebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Output    OutputConfig    `yaml:"output"`
	Related   RelatedConfig   `yaml:"related"`
	Sitemap   SitemapConfig   `yaml:"sitemap"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Seed      SeedConfig      `yaml:"seed"`
	LinkCheck LinkCheckConfig `yaml:"link_check"`
	History   HistoryConfig   `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Serve     ServeConfig     `yaml:"serve"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Origin string    `yaml:"origin"`
	Name   string    `yaml:"name"`
	CTA    CTAConfig `yaml:"cta"`
}

// CTAConfig is the call to action rendered when a page does not define its own.
type CTAConfig struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Href  string `yaml:"href"`
	Label string `yaml:"label"`
}

// PageCTA converts the configured call to action into the page model.
func (c CTAConfig) PageCTA() page.CTA {
	return page.CTA{Title: c.Title, Body: c.Body, Href: c.Href, Label: c.Label}
}

// ContentConfig locates the page records and their inputs.
type ContentConfig struct {
	PagesDir    string   `yaml:"pages_dir"`
	Exclude     []string `yaml:"exclude,omitempty"` // file stems skipped by every command
	SeedsFile   string   `yaml:"seeds_file,omitempty"`
	LandingPage string   `yaml:"landing_page,omitempty"` // copied verbatim to the output root when present
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	HubPath   string `yaml:"hub_path"` // relative to Directory
}

// RelatedConfig selects the related-page strategy.
type RelatedConfig struct {
	Strategy string `yaml:"strategy"` // seeded|first-fit
	Count    int    `yaml:"count"`
}

// SitemapConfig controls sitemap.xml generation.
type SitemapConfig struct {
	Disabled    bool     `yaml:"disabled,omitempty"`
	StaticPaths []string `yaml:"static_paths"`
}

// RefreshConfig configures the content provider used by `guidebuilder refresh`.
type RefreshConfig struct {
	Provider    string      `yaml:"provider"` // openai|gemini
	Model       string      `yaml:"model"`
	APIKey      string      `yaml:"api_key,omitempty"`
	BaseURL     string      `yaml:"base_url,omitempty"`
	Temperature float64     `yaml:"temperature"`
	Timeout     string      `yaml:"timeout"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig mirrors retry.Policy in its serialized form.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"`
}

// SeedConfig limits scaffolding of new pages.
type SeedConfig struct {
	MaxNew int `yaml:"max_new"`
}

// LinkCheckConfig configures internal link analysis.
type LinkCheckConfig struct {
	MinIncoming int    `yaml:"min_incoming"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	Subject     string `yaml:"subject,omitempty"`
}

// HistoryConfig enables the build ledger. An empty database path disables it.
type HistoryConfig struct {
	Database string `yaml:"database,omitempty"`
}

// MetricsConfig configures Prometheus metrics export.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Textfile  string `yaml:"textfile,omitempty"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Debounce        string `yaml:"debounce"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
}

// Load reads the configuration at configPath, expanding ${VAR} references and
// applying defaults. An empty path falls back to DefaultPath when it exists and
// to pure defaults otherwise.
func Load(configPath string) (*Config, error) {
	_ = loadEnvFile()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if uerr := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); uerr != nil {
			return nil, ferrors.WrapError(uerr, ferrors.CategoryConfig, "failed to parse configuration").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	case os.IsNotExist(err):
		return nil, ferrors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = NewDefaultApplier().ApplyDefaults(&cfg)
	return &cfg
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Refresh.APIKey = "${OPENAI_API_KEY}"
	example.History.Database = ".guidebuilder/history.db"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
