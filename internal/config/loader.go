package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkaudit.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LINKAUDIT_"

// LoadConfigFile loads settings and site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that matters based on whether the path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linkaudit.yaml in the current directory
// 3. Look for .linkaudit.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ApplyFile copies the general settings of cf into c and keeps cf for
// per-site lookups. Zero values in cf leave c unchanged.
func (c *Config) ApplyFile(cf *File) error {
	if cf == nil {
		return nil
	}
	c.SiteConfigs = cf

	s := cf.Settings
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", s.Timeout, err)
		}
		c.Timeout = d
	}
	if s.MaxRetries != 0 {
		c.MaxRetries = s.MaxRetries
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.MaxPages != 0 {
		c.MaxPages = s.MaxPages
	}
	if s.OutputDir != "" {
		c.OutputDir = s.OutputDir
	}
	if s.Format != "" {
		c.Format = s.Format
	}
	return nil
}

// ApplyEnv applies LINKAUDIT_* overrides. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%w: %sTIMEOUT=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_RETRIES=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.MaxRetries = n
	}
	if v, ok := lookup(EnvPrefix + "USER_AGENT"); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvPrefix + "OUTPUT_DIR"); ok && v != "" {
		c.OutputDir = v
	}
	return nil
}

// parseSeconds accepts either a Go duration ("45s") or a number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}
