package cache

import (
	"fmt"
	"time"
)

// LayeredCache fronts a DiskCache with a MemoryCache.
// A body downloaded once is served from memory for the rest of the run and
// from disk on later runs until the disk TTL passes.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a two-level cache rooted at diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get looks in memory, then on disk; disk hits are copied into memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if body, ok := c.memory.Get(key); ok {
		return body, true
	}

	body, ok := c.disk.Get(key)
	if ok {
		_ = c.memory.Set(key, body, 0)
	}
	return body, ok
}

// Set always fills memory; the returned error only concerns the disk copy
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	_ = c.memory.Set(key, value, ttl)
	if err := c.disk.Set(key, value, ttl); err != nil {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Delete drops key from both levels
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both levels
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
