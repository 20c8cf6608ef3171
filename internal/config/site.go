package config

// SiteConfig holds site-specific configuration for a single target host.
// This allows customizing crawl behavior per site, most importantly
// credentials for targets behind basic auth.
type SiteConfig struct {
	// Username and Password are HTTP basic-auth credentials for this site.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// UserAgent overrides the browser User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxURLs overrides the global URL budget for this site.
	MaxURLs int `yaml:"maxUrls,omitempty"`

	// ChromiumArgs are extra Chromium switches for this site
	// (e.g. a site that needs a specific --lang).
	ChromiumArgs []string `yaml:"chromiumArgs,omitempty"`
}

// File represents the structure of the .techspider configuration file.
type File struct {
	// Sites maps target hostnames to their site-specific configurations.
	// Keys are bare hostnames (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Username != "" {
			result.Username = siteConfig.Username
		}
		if siteConfig.Password != "" {
			result.Password = siteConfig.Password
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxURLs != 0 {
			result.MaxURLs = siteConfig.MaxURLs
		}
		if len(siteConfig.ChromiumArgs) > 0 {
			result.ChromiumArgs = siteConfig.ChromiumArgs
		}
	}

	return result
}

// Apply overlays a site's configuration onto a copy of the crawl options
// and returns the copy. The receiver options are never mutated; every
// crawl still sees an immutable Options value.
func (sc SiteConfig) Apply(opts *Options) *Options {
	merged := *opts
	if sc.Username != "" {
		merged.Username = sc.Username
	}
	if sc.Password != "" {
		merged.Password = sc.Password
	}
	if sc.UserAgent != "" {
		merged.UserAgent = sc.UserAgent
	}
	if sc.Depth != 0 {
		merged.MaxDepth = sc.Depth
	}
	if sc.MaxURLs != 0 {
		merged.MaxURLs = sc.MaxURLs
	}
	if len(sc.ChromiumArgs) > 0 {
		merged.ChromiumArgs = sc.ChromiumArgs
	}
	return &merged
}
