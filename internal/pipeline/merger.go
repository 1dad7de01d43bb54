package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/worker"
)

// timestampLayout renders the UPDATED header
const timestampLayout = "2006-01-02 15:04:05"

// nowFunc is the clock used for the UPDATED header (injectable for tests)
var nowFunc = time.Now

// Merger fetches every source of a category and renders the merged document
type Merger struct {
	batch   *worker.BatchFetcher
	header  model.HeaderConfig
	logw    io.Writer
	verbose bool
}

// NewMerger creates a merger; logw may be nil
func NewMerger(batch *worker.BatchFetcher, header model.HeaderConfig, logw io.Writer, verbose bool) *Merger {
	if logw == nil {
		logw = io.Discard
	}
	return &Merger{
		batch:   batch,
		header:  header,
		logw:    logw,
		verbose: verbose,
	}
}

// MergeResult is the rendered output of one category
type MergeResult struct {
	Document     string
	Contributing []string
	Failed       []string
	Rules        *RuleSet
}

// Merge fetches and classifies every URL of category, unions the rules and
// renders the output document. Failed sources are skipped, never fatal.
func (m *Merger) Merge(ctx context.Context, category model.Category) *MergeResult {
	result := &MergeResult{Rules: NewRuleSet()}

	for _, fr := range m.batch.FetchAll(ctx, category.URLs) {
		if fr.Error != nil {
			result.Failed = append(result.Failed, fr.URL)
			fmt.Fprintf(m.logw, "  ✗ %s: %v\n", fr.URL, fr.Error)
			continue
		}
		if fr.Body == "" {
			result.Failed = append(result.Failed, fr.URL)
			fmt.Fprintf(m.logw, "  ✗ %s: empty response\n", fr.URL)
			continue
		}

		classified := Classify(fr.Body)
		result.Rules.Merge(classified)
		result.Contributing = append(result.Contributing, fr.URL)

		if m.verbose {
			fmt.Fprintf(m.logw, "  ✓ %s (%d chars, %d rules)\n", fr.URL, len(fr.Body), classified.Total)
		}
	}

	result.Document = Render(category.Name, result.Contributing, result.Rules, m.header, nowFunc())
	return result
}

// Render serializes a merged rule set: metadata comments, per-type counts,
// then each non-empty type's entries sorted. Lines are joined with "\n"
// and the document has no trailing newline.
func Render(name string, contributing []string, rules *RuleSet, header model.HeaderConfig, updated time.Time) string {
	var lines []string

	for _, url := range contributing {
		lines = append(lines, "# "+url)
	}

	lines = append(lines,
		"# NAME: "+name,
		"# AUTHOR: "+header.Author,
		"# REPO: "+header.Repo,
		"# UPDATED: "+updated.Format(timestampLayout),
	)

	total := 0
	for _, t := range model.RuleTypes() {
		if n := rules.Count(t); n > 0 {
			lines = append(lines, fmt.Sprintf("# %s: %d", t, n))
			total += n
		}
	}
	lines = append(lines, fmt.Sprintf("# TOTAL: %d", total))

	for _, t := range model.RuleTypes() {
		lines = append(lines, rules.Sorted(t)...)
	}

	return strings.Join(lines, "\n")
}
