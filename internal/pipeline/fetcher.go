package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/ppiankov/rulemerge/internal/cache"
	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/ppiankov/rulemerge/internal/util"
)

// Fetcher downloads raw rule-list text from source URLs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	robots     *util.RobotsChecker
	logw       io.Writer
}

// NewFetcher creates a Fetcher from the HTTP settings.
// c may be nil to disable caching; logw receives cache warnings and may be nil.
func NewFetcher(cfg model.HTTPConfig, c cache.Cache, logw io.Writer) *Fetcher {
	if logw == nil {
		logw = io.Discard
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		cache:     c,
		logw:      logw,
	}

	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(userAgent, timeout, transport)
	}

	return f
}

// Fetch retrieves the body of rawURL decoded to UTF-8.
// Any transport error, timeout, non-2xx status or body over the size cap
// is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	key := cache.Key(rawURL)
	if f.cache != nil {
		if body, found := f.cache.Get(key); found {
			return string(body), nil
		}
	}

	if f.robots != nil {
		allowed, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("disallowed by robots.txt")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// One byte past the cap tells a truncated list from one that fits exactly
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.maxBytes {
		return "", fmt.Errorf("body exceeds %d bytes", f.maxBytes)
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	if f.cache != nil {
		if err := f.cache.Set(key, body, 0); err != nil {
			fmt.Fprintf(f.logw, "  Warning: cache %s: %v\n", rawURL, err)
		}
	}

	return string(body), nil
}
