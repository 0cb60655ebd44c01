package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".a11yscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .a11yscan configuration file.
// Pointer fields distinguish "not set" from a zero value, so a file can
// set the inter-batch delay to 0s explicitly.
type File struct {
	Concurrency       *int           `yaml:"concurrency,omitempty"`
	InterBatchDelay   *time.Duration `yaml:"interBatchDelay,omitempty"`
	PerFetchTimeout   *time.Duration `yaml:"perFetchTimeout,omitempty"`
	RequestsPerSecond *float64       `yaml:"requestsPerSecond,omitempty"`
	Source            string         `yaml:"source,omitempty"`
	ProxyEndpoint     string         `yaml:"proxyEndpoint,omitempty"`
	SOCKSProxy        string         `yaml:"socksProxy,omitempty"`
	UserAgent         string         `yaml:"userAgent,omitempty"`
	OutputFormat      string         `yaml:"format,omitempty"`

	// Rules overrides the phrase lists used by the link and button rules.
	Rules RuleConfig `yaml:"rules,omitempty"`
}

// LoadConfigFile loads a configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that is fatal based on whether the path
// was given explicitly.
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
		return nil, err
	}
	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
// Flags applied afterwards take precedence.
func (cf *File) Apply(cfg *Config) {
	if cf.Concurrency != nil {
		cfg.Concurrency = *cf.Concurrency
	}
	if cf.InterBatchDelay != nil {
		cfg.InterBatchDelay = *cf.InterBatchDelay
	}
	if cf.PerFetchTimeout != nil {
		cfg.PerFetchTimeout = *cf.PerFetchTimeout
	}
	if cf.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *cf.RequestsPerSecond
	}
	if cf.Source != "" {
		cfg.Source = cf.Source
	}
	if cf.ProxyEndpoint != "" {
		cfg.ProxyEndpoint = cf.ProxyEndpoint
	}
	if cf.SOCKSProxy != "" {
		cfg.SOCKSProxy = cf.SOCKSProxy
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.OutputFormat != "" {
		cfg.OutputFormat = cf.OutputFormat
	}
	cfg.Rules = cfg.Rules.Merge(cf.Rules)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .a11yscan in the current directory
// 3. Look for .a11yscan in the user's home directory
// 4. Look for config.yaml in the XDG config directory
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

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
