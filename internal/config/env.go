package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names read by LoadEnv.
const (
	EnvProxyEndpoint = "A11YSCAN_PROXY_ENDPOINT"
	EnvUserAgent     = "A11YSCAN_USER_AGENT"
	EnvSOCKSProxy    = "A11YSCAN_SOCKS_PROXY"
)

// DefaultEnvFile is loaded from the current directory when present.
const DefaultEnvFile = ".env"

// LoadEnv applies environment overrides to cfg.
// If envFile is set it must exist; otherwise a .env in the current
// directory is loaded when present. Variables already set in the process
// environment win over the file, as godotenv does not overwrite them.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", DefaultEnvFile, err)
	}

	if v := os.Getenv(EnvProxyEndpoint); v != "" {
		cfg.ProxyEndpoint = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvSOCKSProxy); v != "" {
		cfg.SOCKSProxy = v
	}
	return nil
}
