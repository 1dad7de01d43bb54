// Package validate probes rule sources without downloading them.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/util"
)

// Checker probes source URLs concurrently
type Checker struct {
	httpClient     *http.Client
	userAgent      string
	maxWorkers     int
	staleThreshold time.Duration
}

// NewChecker creates a checker from the HTTP settings.
// Sources not modified within staleThreshold are flagged stale; 0 disables the check.
func NewChecker(cfg model.HTTPConfig, maxWorkers int, staleThreshold time.Duration) *Checker {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}

	return &Checker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		userAgent:      userAgent,
		maxWorkers:     maxWorkers,
		staleThreshold: staleThreshold,
	}
}

// Check probes every URL of every category; results follow input order
func (c *Checker) Check(ctx context.Context, categories []model.Category) []model.SourceStatus {
	type target struct {
		category string
		url      string
	}

	var targets []target
	for _, cat := range categories {
		for _, u := range cat.URLs {
			targets = append(targets, target{category: cat.Name, url: u})
		}
	}

	results := make([]model.SourceStatus, len(targets))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, tg := range targets {
		wg.Add(1)
		go func(idx int, tg target) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.SourceStatus{
					Category: tg.category,
					URL:      tg.url,
					Error:    "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			status := c.checkOne(ctx, tg.url)
			status.Category = tg.category
			results[idx] = status
		}(i, tg)
	}

	wg.Wait()
	return results
}

// checkOne sends HEAD, falling back to GET for servers that refuse HEAD
func (c *Checker) checkOne(ctx context.Context, rawURL string) model.SourceStatus {
	status := model.SourceStatus{URL: rawURL}

	resp, err := c.probe(ctx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = c.probe(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		status.Error = err.Error()
		status.IsDead = true
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	status.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		status.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		status.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		status.RedirectURL = final
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			status.LastModified = &t
			age := int(time.Since(t).Hours() / 24)
			status.AgeDays = &age
			if c.staleThreshold > 0 && time.Since(t) > c.staleThreshold {
				status.IsStale = true
			}
		}
	}

	return status
}

func (c *Checker) probe(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
