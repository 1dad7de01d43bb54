package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "rulemerge-test"}
}

func TestChecker_HeadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2023 15:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewChecker(testHTTPConfig(), 4, 0)
	status := checker.checkOne(context.Background(), server.URL)

	if !status.IsAccessible {
		t.Error("Expected source to be accessible")
	}
	if status.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", status.StatusCode)
	}
	if status.IsDead {
		t.Error("Expected source not to be dead")
	}
	if status.LastModified == nil || status.AgeDays == nil {
		t.Fatal("Expected Last-Modified to be parsed")
	}
	if status.IsStale {
		t.Error("Expected no staleness flag when threshold is 0")
	}
}

func TestChecker_Stale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2023 15:04:05 GMT")
	}))
	defer server.Close()

	checker := NewChecker(testHTTPConfig(), 4, 30*24*time.Hour)
	status := checker.checkOne(context.Background(), server.URL)

	if !status.IsStale {
		t.Error("Expected source to be stale")
	}
}

func TestChecker_NotFoundIsDead(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusGone} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		status := NewChecker(testHTTPConfig(), 1, 0).checkOne(context.Background(), server.URL)
		server.Close()

		if !status.IsDead {
			t.Errorf("status %d: expected source to be dead", code)
		}
		if status.IsAccessible {
			t.Errorf("status %d: expected source not to be accessible", code)
		}
	}
}

func TestChecker_ServerErrorNotDead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	status := NewChecker(testHTTPConfig(), 1, 0).checkOne(context.Background(), server.URL)

	if status.IsAccessible || status.IsDead {
		t.Errorf("Expected inaccessible but not dead, got %+v", status)
	}
}

func TestChecker_FallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte("DOMAIN,a.com"))
	}))
	defer server.Close()

	status := NewChecker(testHTTPConfig(), 1, 0).checkOne(context.Background(), server.URL)

	if !status.IsAccessible {
		t.Errorf("Expected GET fallback to succeed, got %+v", status)
	}
}

func TestChecker_Redirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {})
	server := httptest.NewServer(mux)
	defer server.Close()

	status := NewChecker(testHTTPConfig(), 1, 0).checkOne(context.Background(), server.URL+"/old")

	if status.RedirectURL != server.URL+"/new" {
		t.Errorf("RedirectURL = %q, want %q", status.RedirectURL, server.URL+"/new")
	}
}

func TestChecker_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	status := NewChecker(testHTTPConfig(), 1, 0).checkOne(context.Background(), url)

	if !status.IsDead || status.Error == "" {
		t.Errorf("Expected dead source with error, got %+v", status)
	}
}

func TestChecker_CheckKeepsOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer server.Close()

	categories := []model.Category{
		{Name: "A", URLs: []string{server.URL + "/slow", server.URL + "/fast"}},
		{Name: "B", URLs: []string{server.URL + "/b"}},
	}

	results := NewChecker(testHTTPConfig(), 3, 0).Check(context.Background(), categories)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	want := []struct{ category, url string }{
		{"A", server.URL + "/slow"},
		{"A", server.URL + "/fast"},
		{"B", server.URL + "/b"},
	}
	for i, w := range want {
		if results[i].Category != w.category || results[i].URL != w.url {
			t.Errorf("result %d = (%s, %s), want (%s, %s)", i, results[i].Category, results[i].URL, w.category, w.url)
		}
	}
}

func TestChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	categories := []model.Category{{Name: "A", URLs: []string{"http://127.0.0.1:1/x"}}}
	results := NewChecker(testHTTPConfig(), 1, 0).Check(ctx, categories)

	if len(results) != 1 || results[0].IsAccessible {
		t.Errorf("Expected one inaccessible result, got %+v", results)
	}
}
