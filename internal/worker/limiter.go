package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter spaces out downloads that hit the same source host.
// Many rule lists share one host (raw.githubusercontent.com, cdn.jsdelivr.net),
// so the budget is per host rather than per URL.
type Limiter struct {
	perSecond rate.Limit
	burst     int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewLimiter returns nil when requestsPerSecond <= 0, meaning no throttling
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		perSecond: rate.Limit(requestsPerSecond),
		burst:     burst,
		hosts:     make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host of rawURL may be contacted or ctx ends
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := sourceHost(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host).Wait(ctx)
}

// Hosts reports how many distinct hosts have been throttled so far
func (l *Limiter) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hosts)
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	hl, ok := l.hosts[host]
	if !ok {
		hl = rate.NewLimiter(l.perSecond, l.burst)
		l.hosts[host] = hl
	}
	return hl
}

// sourceHost returns the lowercased host name of rawURL, without port
func sourceHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse source URL: %w", err)
	}
	return strings.ToLower(parsed.Hostname()), nil
}
