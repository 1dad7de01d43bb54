package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a source URL may be downloaded.
// Each origin's robots.txt is fetched at most once per checker.
type RobotsChecker struct {
	client *http.Client
	ua     string
	agent  string // product token matched against User-agent groups

	mu      sync.Mutex
	origins map[string]*robotstxt.Group // nil entry: no usable robots.txt, allow all
}

// NewRobotsChecker creates a checker; transport may be nil for the default
func NewRobotsChecker(userAgent string, timeout time.Duration, transport http.RoundTripper) *RobotsChecker {
	return &RobotsChecker{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		ua:      userAgent,
		agent:   NormalizeUserAgent(userAgent),
		origins: make(map[string]*robotstxt.Group),
	}
}

// CanFetch reports whether rawURL is allowed.
// An unreachable or unparsable robots.txt allows everything on that origin.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	group := r.group(ctx, u.Scheme+"://"+u.Host)
	if group == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), nil
}

func (r *RobotsChecker) group(ctx context.Context, origin string) *robotstxt.Group {
	r.mu.Lock()
	g, seen := r.origins[origin]
	r.mu.Unlock()
	if seen {
		return g
	}

	g = r.load(ctx, origin)

	r.mu.Lock()
	r.origins[origin] = g
	r.mu.Unlock()
	return g
}

func (r *RobotsChecker) load(ctx context.Context, origin string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.ua)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(r.agent)
}

// NormalizeUserAgent reduces a User-Agent header to its product token,
// "Mozilla/5.0 (X11)" becomes "Mozilla"
func NormalizeUserAgent(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(fields[0], "/")
	return product
}
