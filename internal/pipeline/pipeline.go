// Package pipeline fetches rule sources, merges them per category and
// writes rule-provider files.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/rulemerge/internal/cache"
	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/worker"
)

// Pipeline orchestrates a complete update run
type Pipeline struct {
	merger *Merger
	writer *Writer
	config *model.Config
	logw   io.Writer
}

// NewPipeline creates a new pipeline with the given configuration.
// Progress is written to logw; nil discards it.
func NewPipeline(cfg *model.Config, logw io.Writer) *Pipeline {
	if logw == nil {
		logw = io.Discard
	}

	fetcher := NewFetcher(cfg.HTTP, cache.New(cfg.Cache), logw)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	batch := worker.NewBatchFetcher(fetcher, cfg.Concurrency.Workers, limiter)

	return &Pipeline{
		merger: NewMerger(batch, cfg.Header, logw, cfg.Output.Verbose),
		writer: NewWriter(cfg.Output.Dir, cfg.Output.Ext, cfg.Output.DryRun),
		config: cfg,
		logw:   logw,
	}
}

// Run processes categories one at a time. Failures are recorded per
// category and never stop the remaining ones. The returned summary's
// Changed field is the fold of every category's outcome.
// Once ctx is cancelled no further file is written; the categories left
// are recorded with the cancellation error.
func (p *Pipeline) Run(ctx context.Context, categories []model.Category) *model.Summary {
	summary := &model.Summary{Categories: make([]model.CategoryResult, 0, len(categories))}

	for i, category := range categories {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(p.logw, "✗ Interrupted, %d categories left untouched\n", len(categories)-i)
			for _, rest := range categories[i:] {
				summary.Categories = append(summary.Categories, model.CategoryResult{
					Name:    rest.Name,
					Path:    p.writer.Path(rest.Name),
					Sources: len(rest.URLs),
					Error:   fmt.Errorf("not processed: %w", err),
				})
			}
			break
		}

		result := p.ProcessCategory(ctx, category)
		summary.Categories = append(summary.Categories, result)
		summary.Changed = summary.Changed || result.Changed
	}

	return summary
}

// ProcessCategory merges one category and writes its file if the rules changed
func (p *Pipeline) ProcessCategory(ctx context.Context, category model.Category) model.CategoryResult {
	fmt.Fprintf(p.logw, "⚙️  Processing %s (%d sources)...\n", category.Name, len(category.URLs))

	merged := p.merger.Merge(ctx, category)

	result := model.CategoryResult{
		Name:         category.Name,
		Path:         p.writer.Path(category.Name),
		Sources:      len(category.URLs),
		Contributing: merged.Contributing,
		Failed:       merged.Failed,
		Total:        merged.Rules.Total(),
	}

	// Fetches cut short by cancellation would render an emptied document
	if err := ctx.Err(); err != nil {
		result.Error = fmt.Errorf("interrupted before write: %w", err)
		fmt.Fprintf(p.logw, "✗ %s: %v\n", category.Name, result.Error)
		return result
	}

	changed, err := p.writer.Write(category.Name, merged.Document)
	if err != nil {
		result.Error = err
		fmt.Fprintf(p.logw, "✗ %s: %v\n", category.Name, err)
		return result
	}
	result.Changed = changed

	switch {
	case changed && p.config.Output.DryRun:
		fmt.Fprintf(p.logw, "✓ %s: would update %s (%d rules)\n", category.Name, result.Path, result.Total)
	case changed:
		fmt.Fprintf(p.logw, "✓ %s: updated %s (%d rules)\n", category.Name, result.Path, result.Total)
	default:
		fmt.Fprintf(p.logw, "✓ %s: unchanged (%d rules)\n", category.Name, result.Total)
	}

	return result
}
