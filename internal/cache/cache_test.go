package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("https://example.com/a.list")
	b := Key("https://example.com/b.list")

	if a == b {
		t.Error("expected distinct keys for distinct URLs")
	}
	if a != Key("https://example.com/a.list") {
		t.Error("expected stable key for the same URL")
	}
	if !strings.HasPrefix(a, "rulemerge:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(model.CacheConfig{}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Dir: t.TempDir(), TTL: time.Minute}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("https://example.com")

	if _, found := c.Get(key); found {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set(key, []byte("DOMAIN,a.com"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get(key)
	if !found || string(val) != "DOMAIN,a.com" {
		t.Errorf("unexpected value: %q found=%v", val, found)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete(key)
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}

	_ = c.Set(key, []byte("x"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	key := Key("https://example.com/list")

	if err := c.Set(key, []byte("IP-CIDR,10.0.0.0/8"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A second instance over the same directory sees the entry
	other := NewDiskCache(dir, time.Minute)
	val, found := other.Get(key)
	if !found || string(val) != "IP-CIDR,10.0.0.0/8" {
		t.Errorf("unexpected value: %q found=%v", val, found)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ":") {
			t.Errorf("cache file name contains colon: %s", e.Name())
		}
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("https://example.com/old")

	if err := c.Set(key, []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expected expired entry to be removed")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("https://example.com/bad")

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path(key), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := Key("https://example.com/shared")

	disk := NewDiskCache(filepath.Join(dir, "c"), time.Minute)
	if err := disk.Set(key, []byte("DOMAIN,x.com"), 0); err != nil {
		t.Fatal(err)
	}

	layered := NewLayeredCache(time.Minute, filepath.Join(dir, "c"), time.Minute)
	val, found := layered.Get(key)
	if !found || string(val) != "DOMAIN,x.com" {
		t.Fatalf("expected disk hit, got %q found=%v", val, found)
	}

	if _, found := layered.memory.Get(key); !found {
		t.Error("expected disk hit to be promoted to memory")
	}
}
