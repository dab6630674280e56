package config

import (
	"fmt"
	"os"
	"strings"
)

// Defaults shared with the CLI help text and the example configuration.
const (
	DefaultSiteOrigin    = "https://biterightgluten.com"
	DefaultPagesDir      = "content/pages"
	DefaultSeedsFile     = "content/seeds/topics.txt"
	DefaultLandingPage   = "index.html"
	DefaultOutputDir     = "dist"
	DefaultHubPath       = "knowledge-hub/index.html"
	DefaultStrategy      = "seeded"
	DefaultRelatedCount  = 6
	DefaultProvider      = "openai"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultTemperature   = 0.3
	DefaultTimeout       = "60s"
	DefaultMaxNewPages   = 10
	DefaultMinIncoming   = 3
	DefaultNATSSubject   = "guidebuilder.links.report"
	DefaultNamespace     = "guidebuilder"
	DefaultServeHost     = "127.0.0.1"
	DefaultServePort     = 1316
	DefaultServeDebounce = "300ms"
	DefaultRetryInitial  = "1s"
	DefaultRetryMax      = "30s"
	DefaultRetryAttempts = 2
	defaultCTATitle      = "Want to scan menus in seconds?"
	defaultCTABody       = "Download BiteRight to check ingredients and menu items on the go."
	defaultCTAHref       = "https://apps.apple.com/app/biteright-gluten-scanner/id6755896176"
	defaultCTALabel      = "Download on the App Store"
	defaultSiteName      = "BiteRight"
	envOpenAIKey         = "OPENAI_API_KEY"
	envGeminiKey         = "GEMINI_API_KEY"
)

// DefaultExclusions are the placeholder records never published.
var DefaultExclusions = []string{"is-test-gluten-free", "are-test-gluten-free"}

// DefaultStaticPaths are the hand-written site pages listed in the sitemap ahead of the guides.
var DefaultStaticPaths = []string{"/", "/knowledge-hub/", "/newly-diagnosed/", "/hidden-gluten/"}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&ContentDefaultApplier{},
			&OutputDefaultApplier{},
			&RefreshDefaultApplier{},
			&MonitoringDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// SiteDefaultApplier handles site identity and CTA defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Site.Origin = strings.TrimRight(cfg.Site.Origin, "/")
	if cfg.Site.Origin == "" {
		cfg.Site.Origin = DefaultSiteOrigin
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = defaultSiteName
	}
	cta := &cfg.Site.CTA
	if cta.Title == "" {
		cta.Title = defaultCTATitle
	}
	if cta.Body == "" {
		cta.Body = defaultCTABody
	}
	if cta.Href == "" {
		cta.Href = defaultCTAHref
	}
	if cta.Label == "" {
		cta.Label = defaultCTALabel
	}
	return nil
}

// ContentDefaultApplier handles content locations and selection defaults.
type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.PagesDir == "" {
		cfg.Content.PagesDir = DefaultPagesDir
	}
	if cfg.Content.Exclude == nil {
		cfg.Content.Exclude = append([]string(nil), DefaultExclusions...)
	}
	if cfg.Content.SeedsFile == "" {
		cfg.Content.SeedsFile = DefaultSeedsFile
	}
	if cfg.Content.LandingPage == "" {
		cfg.Content.LandingPage = DefaultLandingPage
	}
	if cfg.Related.Strategy == "" {
		cfg.Related.Strategy = DefaultStrategy
	}
	if v, ok := strategies.Lookup(cfg.Related.Strategy); ok {
		cfg.Related.Strategy = v
	}
	if cfg.Related.Count <= 0 {
		cfg.Related.Count = DefaultRelatedCount
	}
	if cfg.Seed.MaxNew <= 0 {
		cfg.Seed.MaxNew = DefaultMaxNewPages
	}
	return nil
}

// OutputDefaultApplier handles output, sitemap and link check defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Output.HubPath == "" {
		cfg.Output.HubPath = DefaultHubPath
	}
	if cfg.Sitemap.StaticPaths == nil {
		cfg.Sitemap.StaticPaths = append([]string(nil), DefaultStaticPaths...)
	}
	if cfg.LinkCheck.MinIncoming <= 0 {
		cfg.LinkCheck.MinIncoming = DefaultMinIncoming
	}
	if cfg.LinkCheck.Subject == "" {
		cfg.LinkCheck.Subject = DefaultNATSSubject
	}
	return nil
}

// RefreshDefaultApplier handles provider defaults, including API keys from the environment.
type RefreshDefaultApplier struct{}

func (r *RefreshDefaultApplier) Domain() string { return "refresh" }

func (r *RefreshDefaultApplier) ApplyDefaults(cfg *Config) error {
	rc := &cfg.Refresh
	if v, ok := providers.Lookup(rc.Provider); ok {
		rc.Provider = v
	}
	if rc.Provider == "" {
		rc.Provider = DefaultProvider
	}
	if rc.Model == "" {
		if rc.Provider == "gemini" {
			rc.Model = DefaultGeminiModel
		} else {
			rc.Model = DefaultOpenAIModel
		}
	}
	if rc.APIKey == "" {
		if rc.Provider == "gemini" {
			rc.APIKey = os.Getenv(envGeminiKey)
		} else {
			rc.APIKey = os.Getenv(envOpenAIKey)
		}
	}
	if rc.Temperature == 0 {
		rc.Temperature = DefaultTemperature
	}
	if rc.Timeout == "" {
		rc.Timeout = DefaultTimeout
	}

	// An absent retry block gets the full default policy; an explicit one keeps its max_retries.
	if rc.Retry.Backoff == "" {
		if rc.Retry.InitialDelay == "" && rc.Retry.MaxDelay == "" && rc.Retry.MaxRetries == 0 {
			rc.Retry.MaxRetries = DefaultRetryAttempts
		}
		rc.Retry.Backoff = RetryBackoffLinear
	} else if mode := NormalizeRetryBackoff(string(rc.Retry.Backoff)); mode != "" {
		rc.Retry.Backoff = mode
	} else {
		rc.Retry.Backoff = RetryBackoffLinear
	}
	if rc.Retry.InitialDelay == "" {
		rc.Retry.InitialDelay = DefaultRetryInitial
	}
	if rc.Retry.MaxDelay == "" {
		rc.Retry.MaxDelay = DefaultRetryMax
	}
	return nil
}

// MonitoringDefaultApplier handles metrics and preview server defaults.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultNamespace
	}
	if cfg.Serve.Host == "" {
		cfg.Serve.Host = DefaultServeHost
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultServePort
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = DefaultServeDebounce
	}
	return nil
}
