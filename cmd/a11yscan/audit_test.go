package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/fetch"
	"github.com/nao1215/a11yscan/internal/rules"
	"github.com/spf13/cobra"
)

// writeConfigFile writes a YAML config file into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a11yscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// parseAuditFlags returns an audit command with args parsed, ready for buildConfig.
func parseAuditFlags(t *testing.T, args ...string) (*cobra.Command, []string) {
	t.Helper()
	root := NewRootCmd()
	cmd, rest, err := root.Find(append([]string{"audit"}, args...))
	if err != nil {
		t.Fatalf("failed to find audit command: %v", err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd, cmd.Flags().Args()
}

func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	flags := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"list", "l", ""},
		{"config", "c", ""},
		{"concurrency", "n", "3"},
		{"delay", "d", "500ms"},
		{"timeout", "t", "15s"},
		{"rps", "", "0"},
		{"source", "s", "proxy"},
		{"proxy-endpoint", "", config.DefaultProxyEndpoint},
		{"format", "f", "text"},
		{"output", "o", ""},
		{"metrics-addr", "", ""},
	}
	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.def {
				t.Errorf("expected default %q, got %q", tt.def, flag.DefValue)
			}
		})
	}

	t.Run("help lists what the table rule reports", func(t *testing.T) {
		t.Parallel()

		details := strings.ToLower(rules.TableStructure{}.Details())
		for _, label := range []string{"caption", "column headers", "row headers"} {
			if !strings.Contains(details, label) {
				t.Fatalf("table details %q no longer report %q", details, label)
			}
			if !strings.Contains(cmd.Long, label) {
				t.Errorf("expected help to mention %q", label)
			}
		}
		if strings.Contains(cmd.Long, "counts") {
			t.Error("help must not promise row or column counts")
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `
concurrency: 5
interBatchDelay: 0s
source: direct
format: markdown
rules:
  triggerPhrases: ["go here"]
`)
		cmd, args := parseAuditFlags(t, "-c", path, "-n", "2", "example.com")
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency from flag (2), got %d", cfg.Concurrency)
		}
		if cfg.InterBatchDelay != 0 {
			t.Errorf("expected delay from file (0s), got %s", cfg.InterBatchDelay)
		}
		if cfg.Source != config.SourceDirect {
			t.Errorf("expected source from file, got %s", cfg.Source)
		}
		if cfg.OutputFormat != config.FormatMarkdown {
			t.Errorf("expected format from file, got %s", cfg.OutputFormat)
		}
		if diff := cmp.Diff([]string{"go here"}, cfg.Rules.TriggerPhrases); diff != "" {
			t.Errorf("trigger phrases mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"https://example.com"}, cfg.Targets); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("merges args and list file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		list := filepath.Join(dir, "urls.txt")
		if err := os.WriteFile(list, []byte("# site\nhttps://b.test/\nc.test\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd, args := parseAuditFlags(t, "-c", writeConfigFile(t, "{}"), "--list", list, "https://a.test/")
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"https://a.test/", "https://b.test/", "https://c.test"}
		if diff := cmp.Diff(want, cfg.Targets); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseAuditFlags(t, "-c", writeConfigFile(t, "{}"), "ftp://example.com")
		_, err := buildConfig(cmd, args)
		if !errors.Is(err, fetch.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("explicit config file must exist", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseAuditFlags(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "example.com")
		_, err := buildConfig(cmd, args)
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("validation catches out of range flags", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseAuditFlags(t, "-c", writeConfigFile(t, "{}"), "-n", "11", "example.com")
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		check  func(fetch.Source) bool
	}{
		{config.SourceProxy, func(s fetch.Source) bool { _, ok := s.(*fetch.ProxySource); return ok }},
		{config.SourceDirect, func(s fetch.Source) bool { _, ok := s.(*fetch.DirectSource); return ok }},
		{config.SourceRender, func(s fetch.Source) bool { _, ok := s.(*fetch.RenderSource); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Source = tt.source
			src, closeFn, err := newSource(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(src) {
				t.Errorf("unexpected source type %T", src)
			}
			if err := closeFn(); err != nil {
				t.Errorf("unexpected close error: %v", err)
			}
		})
	}

	t.Run("unknown source", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Source = "carrier-pigeon"
		if _, _, err := newSource(cfg); !errors.Is(err, config.ErrInvalidSource) {
			t.Errorf("expected ErrInvalidSource, got %v", err)
		}
	})
}

// newSiteServer serves a small site with known accessibility problems.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><h1>Home</h1><img src="/x.jpg"><a href="https://a.test">click here</a></body></html>`)
	})
	mux.HandleFunc("/clean", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><h1>Clean</h1><h2>Section</h2><a href="/contact">Contact the support team</a></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAuditCommandEndToEnd(t *testing.T) {
	t.Parallel()

	site := newSiteServer(t)
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"audit",
		"-c", writeConfigFile(t, "{}"),
		"--source", "direct",
		"--delay", "0s",
		"--timeout", "5s",
		"--format", "json",
		"-o", reportPath,
		site.URL + "/",
		site.URL + "/clean",
		site.URL + "/missing",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(reportPath) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}

	var got struct {
		Issues  int `json:"issues"`
		Summary struct {
			State struct {
				Status         string `json:"status"`
				CompletedCount int    `json:"completed_count"`
				TotalCount     int    `json:"total_count"`
				Errors         []struct {
					URL  string `json:"url"`
					Kind string `json:"kind"`
				} `json:"errors"`
			} `json:"state"`
			Findings []struct {
				SourceURL     string `json:"source_url"`
				Category      string `json:"category"`
				LinkText      string `json:"link_text"`
				TargetURL     string `json:"target_url"`
				ImageFilename string `json:"image_filename"`
			} `json:"findings"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	state := got.Summary.State
	if state.Status != "completed" {
		t.Errorf("expected status completed, got %s", state.Status)
	}
	if state.CompletedCount != 3 || state.TotalCount != 3 {
		t.Errorf("expected 3 of 3 completed, got %d of %d", state.CompletedCount, state.TotalCount)
	}
	if len(state.Errors) != 1 || state.Errors[0].Kind != "fetch_failed" || state.Errors[0].URL != site.URL+"/missing" {
		t.Errorf("expected one fetch_failed error for /missing, got %+v", state.Errors)
	}
	if got.Issues != 2 {
		t.Errorf("expected 2 issues, got %d", got.Issues)
	}

	categories := make(map[string]int)
	for _, f := range got.Summary.Findings {
		categories[f.Category]++
		if f.SourceURL != site.URL+"/" {
			t.Errorf("unexpected finding for %s: %+v", f.SourceURL, f)
		}
	}
	want := map[string]int{"image_missing_alt": 1, "inaccessible_link": 1}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout when writing to a file, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Audit complete.") {
		t.Errorf("expected completion line on stderr, got %q", stderr.String())
	}
}

func TestAuditCommandTextReport(t *testing.T) {
	t.Parallel()

	site := newSiteServer(t)

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"audit",
		"-c", writeConfigFile(t, "source: direct\ninterBatchDelay: 0s\n"),
		site.URL + "/",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{"ACCESSIBILITY AUDIT REPORT", "Image Missing Alt Text", "Inaccessible Link"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}

func TestAuditCommandRequiresTargets(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"audit", "-c", writeConfigFile(t, "{}")})

	err := root.Execute()
	if !errors.Is(err, config.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.OutputFormat = "xml"
		err := writeReport(cfg, nil, &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
	})

	t.Run("report file is owner only", func(t *testing.T) {
		t.Parallel()

		site := newSiteServer(t)
		path := filepath.Join(t.TempDir(), "report.md")

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"audit", "-c", writeConfigFile(t, "{}"),
			"-s", "direct", "-d", "0s", "-f", "markdown", "-o", path,
			site.URL + "/clean",
		})
		start := time.Now()
		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) > 10*time.Second {
			t.Error("expected a single page audit to finish quickly")
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			t.Errorf("expected owner-only permissions, got %o", perm)
		}
	})
}
