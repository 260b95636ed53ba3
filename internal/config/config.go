package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkaudit"

	// DefaultTimeout is the per-attempt timeout of a page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of fetch attempts, including the first.
	DefaultMaxRetries = 3

	// DefaultMaxPages is the page budget of a crawl.
	DefaultMaxPages = 5

	// DefaultCrawlDelay is the pause between page visits during a crawl.
	// Zero disables the politeness delay.
	DefaultCrawlDelay = 0 * time.Second

	// DefaultUserAgent identifies linkaudit in HTTP requests.
	DefaultUserAgent = "linkaudit/1.0 (+https://github.com/nao1215/linkaudit)"

	// DefaultMaxBodySize caps the bytes read from one response.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultOutputDir is where saved results are written.
	DefaultOutputDir = "./output"

	// DefaultFormat is the output format used when none is given.
	DefaultFormat = "json"

	// DefaultHost is the listen address of the API server.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the listen port of the API server.
	DefaultPort = 8000

	// DefaultConcurrency is the number of parallel extractions in batch mode.
	DefaultConcurrency = 4

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// SupportedFormats lists the output formats accepted by --format.
var SupportedFormats = []string{"json", "text", "markdown", "csv"}

// Config holds all configuration options for linkaudit.
// It is built once at startup from defaults, the config file, the
// environment and CLI flags, and is read-only afterwards.
type Config struct {
	// Timeout is the per-attempt timeout of a page fetch.
	Timeout time.Duration

	// MaxRetries is the number of fetch attempts, including the first.
	MaxRetries int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxPages is the page budget of a crawl.
	MaxPages int

	// CrawlDelay is the pause between page visits during a crawl.
	CrawlDelay time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// OutputDir is the directory saved results are written to.
	OutputDir string

	// OutputFile is the file the formatted result is written to.
	// Empty means stdout.
	OutputFile string

	// Format is the output format: json, text, markdown or csv.
	Format string

	// Save persists the result to OutputDir and records it in the history
	// database.
	Save bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/linkaudit on Linux).
	DBDir string

	// Verbose enables debug logging and detailed error output.
	Verbose bool

	// JSONLogs switches the log output to JSON.
	JSONLogs bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .linkaudit.yaml is searched in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file.
	SiteConfigs *File

	// Host is the listen address of the API server.
	Host string

	// Port is the listen port of the API server.
	Port int

	// Concurrency is the number of parallel extractions in batch mode.
	Concurrency int

	// TorProxyAddress routes fetches through an existing SOCKS5 proxy
	// when set.
	TorProxyAddress string

	// UseEmbeddedTor starts an embedded Tor daemon and routes fetches
	// through it.
	UseEmbeddedTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		UserAgent:         DefaultUserAgent,
		MaxPages:          DefaultMaxPages,
		CrawlDelay:        DefaultCrawlDelay,
		MaxBodySize:       DefaultMaxBodySize,
		OutputDir:         DefaultOutputDir,
		Format:            DefaultFormat,
		DBDir:             XDGDataDir(),
		Host:              DefaultHost,
		Port:              DefaultPort,
		Concurrency:       DefaultConcurrency,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGDataDir returns the XDG data directory for linkaudit.
// On Linux: ~/.local/share/linkaudit
// On macOS: ~/Library/Application Support/linkaudit
// On Windows: %LOCALAPPDATA%\linkaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UsesTor reports whether fetches are routed through Tor.
func (c *Config) UsesTor() bool {
	return c.UseEmbeddedTor || c.TorProxyAddress != ""
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries < 1 {
		return ErrInvalidMaxRetries
	}

	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if !slices.Contains(SupportedFormats, strings.ToLower(c.Format)) {
		return ErrInvalidFormat
	}

	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}

	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.UseEmbeddedTor && c.TorProxyAddress != "" {
		return ErrConflictingTorModes
	}

	return nil
}
