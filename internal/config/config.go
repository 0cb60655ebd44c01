package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/a11yscan/internal/model"
)

// Default configuration values.
const (
	// DefaultFetchTimeout is the fixed upper bound applied to every fetch,
	// independent of the per-run PerFetchTimeout. Whichever fires first wins.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultSource is the fetch source used when none is given.
	DefaultSource = SourceProxy

	// DefaultProxyEndpoint points at a locally running `a11yscan proxy`.
	DefaultProxyEndpoint = "http://127.0.0.1:8787/api/proxy"

	// DefaultProxyAddr is the listen address for `a11yscan proxy`.
	DefaultProxyAddr = "127.0.0.1:8787"

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// DefaultUserAgent identifies a11yscan in HTTP requests.
	// Site operators can recognize audit traffic in their logs.
	DefaultUserAgent = "Mozilla/5.0 (compatible; a11yscan/1.0; +https://github.com/nao1215/a11yscan)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = model.MaxPageSize

	// DefaultOutputFormat is the report format written when none is given.
	DefaultOutputFormat = FormatText

	// DefaultLogFormat is the log output format.
	DefaultLogFormat = "text"
)

// Fetch source names accepted by --source.
const (
	SourceProxy  = "proxy"
	SourceDirect = "direct"
	SourceRender = "render"
)

// Report format names accepted by --format.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Config holds all configuration options for a11yscan.
// This struct is populated from the config file, environment, and CLI flags
// (in that order of precedence, lowest first) and passed through the
// application rather than kept in global state.
//
// Design decision: We keep a single flat struct like the run tuning knobs
// in model.RunConfig plus the CLI-only concerns. RunConfig() extracts the
// part the audit orchestrator needs.
type Config struct {
	// Targets is the list of URLs to audit.
	Targets []string

	// ListFile is a file with one URL per line. Lines starting with # are ignored.
	ListFile string

	// Concurrency is the maximum number of URLs processed at once, 1 to 10.
	Concurrency int

	// InterBatchDelay is the pause inserted when all workers have drained
	// and URLs remain, 0s to 5s.
	InterBatchDelay time.Duration

	// PerFetchTimeout bounds one fetch, 5s to 30s.
	PerFetchTimeout time.Duration

	// RequestsPerSecond optionally paces dispatches. Zero disables pacing.
	RequestsPerSecond float64

	// Source selects how pages are fetched: proxy, direct, or render.
	Source string

	// ProxyEndpoint is the URL of the proxy fetch endpoint used by the proxy source.
	ProxyEndpoint string

	// SOCKSProxy routes direct fetches through a SOCKS5 proxy ("host:port").
	SOCKSProxy string

	// UserAgent is the User-Agent header sent by the direct source.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// OutputFormat is text, markdown, or json.
	OutputFormat string

	// ReportFile is the output file path for the report.
	// When empty the report is written to stdout.
	ReportFile string

	// MetricsAddr enables the Prometheus metrics endpoint when set.
	MetricsAddr string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .a11yscan is searched for in the usual places.
	ConfigFilePath string

	// EnvFile is an optional dotenv file loaded before reading the environment.
	EnvFile string

	// Rules holds optional rule phrase overrides from the config file.
	Rules RuleConfig
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Concurrency:     model.DefaultConcurrency,
		InterBatchDelay: model.DefaultInterBatchDelay,
		PerFetchTimeout: model.DefaultPerFetchTimeout,
		Source:          DefaultSource,
		ProxyEndpoint:   DefaultProxyEndpoint,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		LogFormat:       DefaultLogFormat,
		OutputFormat:    DefaultOutputFormat,
	}
}

// RunConfig returns the tuning values the orchestrator consumes.
func (c *Config) RunConfig() model.RunConfig {
	return model.RunConfig{
		Concurrency:       c.Concurrency,
		InterBatchDelay:   c.InterBatchDelay,
		PerFetchTimeout:   c.PerFetchTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
// On macOS: ~/Library/Application Support/a11yscan
// On Windows: %APPDATA%\a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
//
// Design decision: We validate once after flag parsing, before any network
// activity, so mistakes fail fast with a clear message.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Concurrency < model.MinConcurrency || c.Concurrency > model.MaxConcurrency {
		return ErrInvalidConcurrency
	}

	if c.InterBatchDelay < model.MinInterBatchDelay || c.InterBatchDelay > model.MaxInterBatchDelay {
		return ErrInvalidInterBatchDelay
	}

	if c.PerFetchTimeout < model.MinPerFetchTimeout || c.PerFetchTimeout > model.MaxPerFetchTimeout {
		return ErrInvalidPerFetchTimeout
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	switch c.Source {
	case SourceProxy:
		if c.ProxyEndpoint == "" {
			return ErrMissingProxyEndpoint
		}
	case SourceDirect, SourceRender:
	default:
		return ErrInvalidSource
	}

	switch c.OutputFormat {
	case FormatText, FormatMarkdown, FormatJSON:
	default:
		return ErrInvalidOutputFormat
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
