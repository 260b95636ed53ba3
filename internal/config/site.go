package config

import (
	"maps"
	"strings"
)

// SiteConfig holds configuration for a single host.
// This allows customizing fetch and crawl behavior per site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global crawl budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path globs whose links are never crawled.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path globs to follow during crawling.
	// If specified, only navigation links matching these patterns are queued.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// Settings are the general options of the config file.
type Settings struct {
	Timeout    string `yaml:"timeout,omitempty"`
	MaxRetries int    `yaml:"maxRetries,omitempty"`
	UserAgent  string `yaml:"userAgent,omitempty"`
	MaxPages   int    `yaml:"maxPages,omitempty"`
	OutputDir  string `yaml:"outputDir,omitempty"`
	Format     string `yaml:"format,omitempty"`
}

// ClassifierRules extends the built-in classification patterns.
// Entries are regular expressions matched case-insensitively against
// link URLs.
type ClassifierRules struct {
	DocumentPatterns []string `yaml:"documentPatterns,omitempty"`
	VideoPatterns    []string `yaml:"videoPatterns,omitempty"`
}

// File represents the structure of the .linkaudit.yaml configuration file.
type File struct {
	// Settings overrides the built-in defaults.
	Settings Settings `yaml:"settings,omitempty"`

	// Classifier adds URL patterns to the built-in rule set.
	Classifier ClassifierRules `yaml:"classifier,omitempty"`

	// Sites maps host names to their site-specific configurations.
	// Keys are hosts without scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merged over defaults.
// A leading "www." is ignored when no exact entry exists.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	host = strings.ToLower(host)
	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.Sites[strings.TrimPrefix(host, "www.")]
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}
