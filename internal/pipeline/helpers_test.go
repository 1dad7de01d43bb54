package pipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
)

var fixedNow = time.Date(2026, 10, 19, 8, 30, 0, 0, time.Local)

// useFixedClock pins the UPDATED header for the duration of a test
func useFixedClock(t *testing.T, now time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })
}

// ruleServer serves rule lists by path; unknown paths return 404
type ruleServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies map[string]string
	hits   map[string]int
}

func newRuleServer(t *testing.T, bodies map[string]string) *ruleServer {
	t.Helper()
	rs := &ruleServer{bodies: bodies, hits: make(map[string]int)}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.hits[r.URL.Path]++
		body, ok := rs.bodies[r.URL.Path]
		rs.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *ruleServer) set(path, body string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.bodies[path] = body
}

func (rs *ruleServer) hitCount(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.hits[path]
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Output.Dir = dir + "/rule-provider"
	cfg.Output.FlagFile = dir + "/rules_updated.flag"
	return cfg
}
