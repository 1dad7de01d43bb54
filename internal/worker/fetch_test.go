package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubFetcher answers from a map and records concurrency
type stubFetcher struct {
	bodies  map[string]string
	delays  map[string]time.Duration
	calls   atomic.Int32
	current atomic.Int32
	mu      sync.Mutex
	peak    int32
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	s.calls.Add(1)
	n := s.current.Add(1)
	defer s.current.Add(-1)

	s.mu.Lock()
	if n > s.peak {
		s.peak = n
	}
	s.mu.Unlock()

	if d := s.delays[url]; d > 0 {
		time.Sleep(d)
	}
	body, ok := s.bodies[url]
	if !ok {
		return "", errors.New("unexpected status: 404 Not Found")
	}
	return body, nil
}

func TestBatchFetcher_Sequential(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"http://a": "DOMAIN,a.com",
		"http://c": "DOMAIN,c.com",
	}}
	b := NewBatchFetcher(f, 1, nil)

	results := b.FetchAll(context.Background(), []string{"http://a", "http://b", "http://c"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Body != "DOMAIN,a.com" || results[0].Error != nil {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Error == nil {
		t.Error("expected error for missing source")
	}
	if results[2].URL != "http://c" {
		t.Errorf("expected third result for http://c, got %s", results[2].URL)
	}
	if f.peak != 1 {
		t.Errorf("expected sequential fetches, peak concurrency %d", f.peak)
	}
}

func TestBatchFetcher_ParallelKeepsInputOrder(t *testing.T) {
	bodies := make(map[string]string)
	delays := make(map[string]time.Duration)
	var urls []string
	for i := 0; i < 8; i++ {
		u := fmt.Sprintf("http://source-%d", i)
		urls = append(urls, u)
		bodies[u] = fmt.Sprintf("DOMAIN,%d.com", i)
		// Earlier URLs finish last
		delays[u] = time.Duration(8-i) * 5 * time.Millisecond
	}

	f := &stubFetcher{bodies: bodies, delays: delays}
	b := NewBatchFetcher(f, 4, nil)

	results := b.FetchAll(context.Background(), urls)
	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	for i, r := range results {
		if r.Index != i || r.URL != urls[i] {
			t.Errorf("result %d out of order: %+v", i, r)
		}
	}
	if f.peak > 4 {
		t.Errorf("peak concurrency %d exceeded 4 workers", f.peak)
	}
}

func TestBatchFetcher_Empty(t *testing.T) {
	b := NewBatchFetcher(&stubFetcher{}, 4, nil)
	if got := b.FetchAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestBatchFetcher_WithLimiter(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"http://a": "x", "http://b": "y"}}
	b := NewBatchFetcher(f, 2, NewLimiter(1000, 10))

	results := b.FetchAll(context.Background(), []string{"http://a", "http://b"})
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("unexpected error for %s: %v", r.URL, r.Error)
		}
	}
}

func TestBatchFetcher_CancelledContext(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"http://a": "x", "http://b": "y", "http://c": "z"}}
	b := NewBatchFetcher(f, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := b.FetchAll(ctx, []string{"http://a", "http://b", "http://c"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
	}
}

func TestFillMissing(t *testing.T) {
	urls := []string{"http://a", "http://b"}
	partial := []*FetchResult{{Index: 0, URL: "http://a", Body: "x"}}

	full := fillMissing(context.Background(), urls, partial)
	if len(full) != 2 {
		t.Fatalf("expected 2 results, got %d", len(full))
	}
	if full[0].Body != "x" {
		t.Errorf("existing result replaced: %+v", full[0])
	}
	if full[1].URL != "http://b" || !errors.Is(full[1].Error, context.Canceled) {
		t.Errorf("unexpected filler: %+v", full[1])
	}
}
