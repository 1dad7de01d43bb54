package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/pipeline"
	"github.com/ppiankov/rulemerge/internal/sources"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch all sources and rewrite changed rule files",
	Long: `Update processes every category of the sources file:
- Download each source URL (failed sources are skipped)
- Classify lines by rule type and deduplicate across sources
- Render <output-dir>/<Category>.list with counts and sorted rules
- Rewrite the file only when its rules changed
- Write the marker file: 1 if anything changed, 0 otherwise

Example:
  rulemerge update
  rulemerge update --sources rule_sources.conf --output-dir rule-provider
  rulemerge update --only 'Proxy*' --concurrency 4 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	d := model.DefaultConfig()
	f := updateCmd.Flags()

	// Output flags
	f.String("output-dir", d.Output.Dir, "output directory for rule files")
	f.String("ext", d.Output.Ext, "rule file extension")
	f.String("flag-file", d.Output.FlagFile, "marker file recording whether anything changed")
	f.Bool("dry-run", false, "report changes without writing files")
	f.String("author", d.Header.Author, "AUTHOR header value")
	f.String("repo", d.Header.Repo, "REPO header value")

	// HTTP flags
	f.Duration("timeout", d.HTTP.Timeout, "per-source request timeout")
	f.String("ua", d.HTTP.UserAgent, "HTTP User-Agent")
	f.Int64("max-bytes", d.HTTP.MaxBodyBytes, "max response bytes to read per source")
	f.Bool("respect-robots", false, "skip sources disallowed by robots.txt")
	f.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	f.String("no-proxy", "", "comma-separated hosts that bypass the proxy")

	// Concurrency flags
	f.Int("concurrency", d.Concurrency.Workers, "parallel downloads per category (1 = sequential)")
	f.Float64("rps", d.RateLimiting.RequestsPerSecond, "max requests per second per host (0 = unlimited)")
	f.Int("burst", d.RateLimiting.BurstSize, "rate limiter burst size")

	// Cache flags
	f.String("cache-dir", "", "persist downloaded sources here between runs")
	f.Duration("cache-ttl", d.Cache.TTL, "how long a cached source stays fresh")

	bindings := map[string]string{
		"output.dir":                        "output-dir",
		"output.ext":                        "ext",
		"output.flag_file":                  "flag-file",
		"output.dry_run":                    "dry-run",
		"header.author":                     "author",
		"header.repo":                       "repo",
		"http.timeout":                      "timeout",
		"http.user_agent":                   "ua",
		"http.max_body_bytes":               "max-bytes",
		"http.respect_robots":               "respect-robots",
		"http.http_proxy":                   "http-proxy",
		"http.https_proxy":                  "https-proxy",
		"http.no_proxy":                     "no-proxy",
		"concurrency.workers":               "concurrency",
		"rate_limiting.requests_per_second": "rps",
		"rate_limiting.burst_size":          "burst",
		"cache.dir":                         "cache-dir",
		"cache.ttl":                         "cache-ttl",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	detail := io.Discard
	if cfg.Output.Verbose {
		detail = os.Stderr
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  rulemerge update\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Sources:      %s\n", cfg.Sources.File)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", cfg.HTTP.Timeout)
	if cfg.Output.DryRun {
		fmt.Fprintf(os.Stderr, "  Mode:         dry run\n")
	}
	if wd, err := os.Getwd(); err == nil {
		fmt.Fprintf(detail, "  Working dir:  %s\n", wd)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if !cfg.Output.DryRun {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			// Nothing can be written, but the marker still reports "no change"
			if flagErr := pipeline.WriteFlag(cfg.Output.FlagFile, false); flagErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", flagErr)
			}
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	categories, err := sources.ReadFile(cfg.Sources.File, detail)
	if err != nil {
		// An unreadable sources file means an empty run, not an aborted one
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	categories, err = sources.Select(categories, cfg.Sources.Only)
	if err != nil {
		return fmt.Errorf("select categories: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d categories\n", len(categories))
	for _, c := range categories {
		fmt.Fprintf(detail, "    %s (%d sources)\n", c.Name, len(c.URLs))
	}
	fmt.Fprintf(os.Stderr, "\n")

	start := time.Now()
	p := pipeline.NewPipeline(cfg, os.Stderr)
	summary := p.Run(ctx, categories)

	if !cfg.Output.DryRun {
		if err := pipeline.WriteFlag(cfg.Output.FlagFile, summary.Changed); err != nil {
			return err
		}
	}

	printSummary(summary, cfg, time.Since(start))

	if failures := summary.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d of %d categories could not be written", len(failures), len(summary.Categories))
	}
	return nil
}

func printSummary(summary *model.Summary, cfg *model.Config, elapsed time.Duration) {
	updated := 0
	failedSources := 0
	for _, c := range summary.Categories {
		if c.Changed {
			updated++
		}
		failedSources += len(c.Failed)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Update Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Categories:      %d\n", len(summary.Categories))
	fmt.Fprintf(os.Stderr, "  Updated:         %d\n", updated)
	fmt.Fprintf(os.Stderr, "  Failed sources:  %d\n", failedSources)
	fmt.Fprintf(os.Stderr, "  Write failures:  %d\n", len(summary.Failures()))
	fmt.Fprintf(os.Stderr, "  Elapsed:         %v\n", elapsed.Round(time.Millisecond))
	if !cfg.Output.DryRun {
		fmt.Fprintf(os.Stderr, "  Marker:          %s\n", cfg.Output.FlagFile)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if summary.Changed {
		fmt.Fprintf(os.Stderr, "Rules updated: at least one file changed\n")
	} else {
		fmt.Fprintf(os.Stderr, "All rule files are up to date, nothing changed\n")
	}
}
