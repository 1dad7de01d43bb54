// Package cache stores downloaded rule-list bodies keyed by source URL.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/rulemerge/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a source URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "rulemerge:v1:" + hex.EncodeToString(hash[:])
}

// New builds the fetch cache described by cfg.
// Without a directory only the in-memory layer is used, which lives for one run.
func New(cfg model.CacheConfig) Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cfg.Dir == "" {
		return NewMemoryCache(ttl, 10*time.Minute)
	}
	return NewLayeredCache(ttl, cfg.Dir, ttl)
}
