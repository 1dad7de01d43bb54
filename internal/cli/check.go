package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/sources"
	"github.com/ppiankov/rulemerge/internal/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	checkStaleDays int
	checkWorkers   int
	checkStrict    bool
	checkYAML      bool
)

// checkCmd probes every source without downloading rule bodies
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe source URLs for dead, moved or stale lists",
	Long: `Check sends a HEAD request (GET when HEAD is refused) to every source URL
and reports which sources are dead (404/410 or unreachable), redirected,
or not modified for longer than --stale-days.

Example:
  rulemerge check
  rulemerge check --only 'Proxy*' --stale-days 90 --strict`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	f := checkCmd.Flags()
	f.IntVar(&checkStaleDays, "stale-days", 180, "flag sources not modified for this many days (0 = off)")
	f.IntVar(&checkWorkers, "workers", 8, "concurrent probes")
	f.BoolVar(&checkStrict, "strict", false, "exit non-zero when any source is dead")
	f.BoolVar(&checkYAML, "yaml", false, "print results as YAML on stdout")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	categories, err := sources.ReadFile(cfg.Sources.File, detail)
	if err != nil {
		return err
	}
	categories, err = sources.Select(categories, cfg.Sources.Only)
	if err != nil {
		return fmt.Errorf("select categories: %w", err)
	}

	checker := validate.NewChecker(cfg.HTTP, checkWorkers, time.Duration(checkStaleDays)*24*time.Hour)
	results := checker.Check(ctx, categories)

	if checkYAML {
		out, err := yaml.Marshal(results)
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
	}

	dead := printCheck(os.Stderr, results)

	if checkStrict && dead > 0 {
		return fmt.Errorf("%d of %d sources are dead", dead, len(results))
	}
	return nil
}

// printCheck writes one line per source and returns the dead count
func printCheck(w io.Writer, results []model.SourceStatus) int {
	dead, stale, moved := 0, 0, 0
	current := ""

	for _, r := range results {
		if r.Category != current {
			current = r.Category
			fmt.Fprintf(w, "\n%s\n", current)
		}

		switch {
		case r.IsDead:
			dead++
			reason := r.Error
			if reason == "" {
				reason = fmt.Sprintf("HTTP %d", r.StatusCode)
			}
			fmt.Fprintf(w, "  ✗ %s (%s)\n", r.URL, reason)
		case !r.IsAccessible:
			if r.Error != "" {
				fmt.Fprintf(w, "  ⚠️  %s (%s)\n", r.URL, r.Error)
			} else {
				fmt.Fprintf(w, "  ⚠️  %s (HTTP %d)\n", r.URL, r.StatusCode)
			}
		default:
			fmt.Fprintf(w, "  ✓ %s\n", r.URL)
		}

		if r.RedirectURL != "" {
			moved++
			fmt.Fprintf(w, "      → moved to %s\n", r.RedirectURL)
		}
		if r.IsStale && r.AgeDays != nil {
			stale++
			fmt.Fprintf(w, "      stale: last modified %d days ago\n", *r.AgeDays)
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Sources: %d  Dead: %d  Moved: %d  Stale: %d\n", len(results), dead, moved, stale)
	fmt.Fprintf(w, "\n")
	return dead
}
