package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadTargets reads one target per line from r.
// Blank lines and lines starting with # are skipped. Duplicates are kept
// in first-seen position only.
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return targets, nil
}

// LoadTargets appends the targets listed in path to cfg.Targets.
func LoadTargets(cfg *Config, path string) error {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	targets, err := ReadTargets(f)
	if err != nil {
		return fmt.Errorf("failed to read list file %s: %w", path, err)
	}
	cfg.Targets = append(cfg.Targets, targets...)
	return nil
}
