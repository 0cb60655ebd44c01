package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/fetch"
	applog "github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/rules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit web pages for accessibility issues",
		Long: `Audit fetches each URL once and checks the page for:
- Images without alt text (and lists images that have it)
- Vague link text such as "click here" and raw URLs in page text
- Buttons without an accessible name, icon-only or vague buttons
- Heading levels that skip upward (h1 followed by h3)
- Table structure: caption, column headers and row headers
- Links to PDF and Office documents that need a manual check

Press Ctrl+C to cancel; the report still covers every page audited so far.
Send SIGUSR1 to pause or resume dispatching new pages.

Examples:
  # Audit one page through a local proxy (a11yscan proxy)
  a11yscan audit https://example.com/

  # Fetch pages directly, two at a time, and write Markdown
  a11yscan audit --source direct -n 2 --format markdown -o report.md https://example.com/

  # Read URLs from a file
  a11yscan audit --list urls.txt

  # Expose Prometheus metrics while the audit runs
  a11yscan audit --metrics-addr 127.0.0.1:9090 --list urls.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Input flags
	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line (# starts a comment)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")
	cmd.Flags().String("env-file", "",
		"Load environment variables from this file (default: .env if present)")

	// Run tuning flags
	cmd.Flags().IntP("concurrency", "n", model.DefaultConcurrency,
		"Maximum number of pages fetched at once (1-10)")
	cmd.Flags().DurationP("delay", "d", model.DefaultInterBatchDelay,
		"Pause between waves of fetches (0s-5s)")
	cmd.Flags().DurationP("timeout", "t", model.DefaultPerFetchTimeout,
		"Timeout for each page fetch (5s-30s)")
	cmd.Flags().Float64("rps", 0,
		"Maximum fetches started per second (0 disables)")

	// Fetch flags
	cmd.Flags().StringP("source", "s", config.DefaultSource,
		"How pages are fetched: proxy, direct, or render")
	cmd.Flags().String("proxy-endpoint", config.DefaultProxyEndpoint,
		"Proxy fetch endpoint used by --source proxy")
	cmd.Flags().String("socks-proxy", "",
		"Route direct fetches through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent sent by the direct and render sources")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Report format: text, markdown, or json")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address while auditing")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.New(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
	slog.SetDefault(logger)

	return runAudit(cmd.Context(), cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return config.DefaultLogFormat
		}
	}
	return format
}

// buildConfig creates a Config from defaults, the config file, the
// environment, and cobra flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user named a config file it must exist; otherwise a missing
	// file just means built-in defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.EnvFile, err = flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(cfg, cfg.EnvFile); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)

	cfg.ListFile, err = flags.GetString("list")
	if err != nil {
		return nil, err
	}
	cfg.Targets = append(cfg.Targets, args...)
	if cfg.ListFile != "" {
		if err := config.LoadTargets(cfg, cfg.ListFile); err != nil {
			return nil, err
		}
	}

	targets := make([]string, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		normalized, err := fetch.NormalizeURL(target)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", target, err)
		}
		targets = append(targets, normalized)
	}
	cfg.Targets = targets

	return cfg, nil
}

// applyFlags copies explicitly set flags onto cfg. Flags left at their
// defaults do not override the config file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.InterBatchDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.PerFetchTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("rps") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rps"); err != nil {
			return err
		}
	}

	strFlags := []struct {
		name string
		dst  *string
	}{
		{"source", &cfg.Source},
		{"proxy-endpoint", &cfg.ProxyEndpoint},
		{"socks-proxy", &cfg.SOCKSProxy},
		{"user-agent", &cfg.UserAgent},
		{"format", &cfg.OutputFormat},
	}
	for _, f := range strFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return err
		}
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return err
	}
	return nil
}

// newSource creates the fetch source selected by cfg.Source.
// The returned close function releases resources held by the source.
func newSource(cfg *config.Config) (fetch.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceProxy:
		src, err := fetch.NewProxySource(cfg.ProxyEndpoint,
			fetch.WithProxyMaxBodySize(cfg.MaxBodySize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create proxy source: %w", err)
		}
		return src, noop, nil
	case config.SourceDirect:
		client, err := fetch.NewHTTPClient(fetch.ClientOptions{SOCKSProxy: cfg.SOCKSProxy})
		if err != nil {
			return nil, nil, err
		}
		src := fetch.NewDirectSource(client,
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxBodySize(cfg.MaxBodySize),
		)
		return src, noop, nil
	case config.SourceRender:
		src := fetch.NewRenderSource(fetch.WithRenderUserAgent(cfg.UserAgent))
		return src, src.Close, nil
	default:
		return nil, nil, config.ErrInvalidSource
	}
}

// newRuleSet builds the rule set with any phrase overrides from the config file.
func newRuleSet(cfg *config.Config) *rules.Set {
	return rules.NewSet(
		rules.WithTriggerPhrases(cfg.Rules.TriggerPhrases),
		rules.WithExcludedPhrases(cfg.Rules.ExcludedPhrases),
		rules.WithIconClassPatterns(cfg.Rules.IconClassPatterns),
		rules.WithWholeWord(cfg.Rules.WholeWord),
	)
}

// runAudit executes the audit and writes the report.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting audit",
		"targets", len(cfg.Targets),
		"source", cfg.Source,
		"concurrency", cfg.Concurrency,
	)

	source, closeSource, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("failed to close fetch source", "error", err)
		}
	}()

	store, err := database.OpenRunStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}

	orch := audit.New(
		fetch.New(source, fetch.WithMaxTimeout(config.DefaultFetchTimeout), fetch.WithLogger(logger)),
		audit.WithRules(newRuleSet(cfg)),
		audit.WithLogger(logger),
		audit.WithMetrics(collector),
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	stopSignals := watchSignals(orch, cancelRun, logger, stderr)
	defer stopSignals()

	sink := newRunSink(store, logger, stderr)

	fmt.Fprintf(stderr, "Auditing %d page(s) (concurrency: %d)...\n", len(cfg.Targets), cfg.Concurrency)

	g, gctx := errgroup.WithContext(runCtx)
	auditDone := make(chan struct{})

	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, reg)
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-auditDone:
			case <-gctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(auditDone)
		return orch.Start(gctx, cfg.Targets, cfg.RunConfig(), sink)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	state := orch.State()
	summary, err := store.Summary(context.Background(), state)
	if err != nil {
		return fmt.Errorf("failed to summarize results: %w", err)
	}

	fmt.Fprintf(stderr, "Audit %s in %s: %d of %d page(s), %d issue(s), %d error(s)\n\n",
		state.Status, state.Duration().Round(time.Millisecond),
		state.CompletedCount, state.TotalCount, summary.TotalIssues(), len(state.Errors))

	return writeReport(cfg, summary, stdout)
}

// writeReport outputs the summary in the requested format.
func writeReport(cfg *config.Config, summary *model.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list internal URLs, so only the owner may read them.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.New(cfg.OutputFormat, output, report.Options{
		Version: getVersion(),
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
