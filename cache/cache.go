package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mwantia/cmdkit/log"
)

// Cache is a key-addressed store of opaque byte blobs wrapped with passive
// TTL expiry and active size-bounded eviction. The cache is an optional
// accelerator: every operation degrades to a boolean or absent result, and
// a cache that failed to initialize silently answers negative instead of
// erroring.
//
// The cache performs no locking. It assumes a single process mutates a
// given root at a time; genuine concurrent use needs external locking
// around Clean and per-key writes.
type Cache struct {
	store   Store
	ttl     time.Duration
	maxSize int64
	enabled bool
	log     *log.Logger
}

type Option func(*Cache)

// WithLogger attaches a logger for debug traces. Cache failures are still
// absorbed; the logger only makes them visible.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		c.log = logger
	}
}

// New creates a filesystem-backed cache rooted at dir. A ttl of zero
// disables expiry, a maxSize of zero disables eviction. If the root cannot
// be created the cache degrades to a no-op.
func New(dir string, ttl time.Duration, maxSize int64, opts ...Option) *Cache {
	return NewWithStore(newLocalStore(dir), ttl, maxSize, opts...)
}

// NewWithStore creates a cache on top of an alternative store. The store is
// opened immediately; on failure the cache degrades to a no-op.
func NewWithStore(store Store, ttl time.Duration, maxSize int64, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		ttl:     ttl,
		maxSize: maxSize,
		log:     log.NewLogger("cache", log.Warn, "", false),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := store.Open(context.Background()); err != nil {
		c.log.Debug("store %q failed to open, cache disabled: %v", store.Name(), err)
		return c
	}

	c.enabled = true
	return c
}

// Enabled reports whether the cache initialized successfully.
func (c *Cache) Enabled() bool { return c.enabled }

// Close releases the underlying store.
func (c *Cache) Close(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.store.Close(ctx)
}

// Has reports whether a fresh entry exists for key and returns its
// sanitized relative path. ttlOverride adjusts the effective TTL for this
// check only; zero means no override. A stale entry found here is deleted
// eagerly, unless the override tightened the effective TTL below the cache
// default, in which case the entry may still be fresh for other callers.
func (c *Cache) Has(ctx context.Context, key string, ttlOverride time.Duration) (string, bool) {
	if !c.enabled {
		return "", false
	}

	relPath, ok := ValidateKey(key)
	if !ok {
		return "", false
	}

	info, err := c.store.Stat(ctx, relPath)
	if err != nil {
		return "", false
	}

	if ttl := effectiveTTL(c.ttl, ttlOverride); ttl > 0 {
		expires := info.ModifyTime.Add(ttl)
		if !time.Now().Before(expires) {
			if !tightened(c.ttl, ttlOverride) {
				c.store.Delete(ctx, relPath)
			}
			return "", false
		}
	}

	return relPath, true
}

// Read returns the content stored under key, absent when the entry is
// missing or stale.
func (c *Cache) Read(ctx context.Context, key string, ttlOverride time.Duration) ([]byte, bool) {
	relPath, ok := c.Has(ctx, key, ttlOverride)
	if !ok {
		return nil, false
	}

	data, err := c.store.Read(ctx, relPath)
	if err != nil {
		c.log.Debug("read %q failed: %v", relPath, err)
		return nil, false
	}

	return data, true
}

// Write stores content under key, replacing any previous entry.
func (c *Cache) Write(ctx context.Context, key string, data []byte) bool {
	if !c.enabled {
		return false
	}

	relPath, ok := ValidateKey(key)
	if !ok {
		return false
	}

	if err := c.store.Write(ctx, relPath, data); err != nil {
		c.log.Debug("write %q failed: %v", relPath, err)
		return false
	}

	return true
}

// GetData reads the entry under key and decodes it into value. Only data
// written through PutData round-trips; binary payloads belong on the raw
// Read/Write path.
func (c *Cache) GetData(ctx context.Context, key string, value any, ttlOverride time.Duration) bool {
	data, ok := c.Read(ctx, key, ttlOverride)
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, value); err != nil {
		c.log.Debug("decode %q failed: %v", key, err)
		return false
	}

	return true
}

// PutData encodes value and stores it under key.
func (c *Cache) PutData(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Debug("encode %q failed: %v", key, err)
		return false
	}

	return c.Write(ctx, key, data)
}

// Import copies the file at sourcePath into the cache under key.
func (c *Cache) Import(ctx context.Context, key, sourcePath string) bool {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		c.log.Debug("import from %q failed: %v", sourcePath, err)
		return false
	}

	return c.Write(ctx, key, data)
}

// Export copies the entry under key to destPath, creating parent
// directories as needed.
func (c *Cache) Export(ctx context.Context, key, destPath string) bool {
	data, ok := c.Read(ctx, key, 0)
	if !ok {
		return false
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return false
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		c.log.Debug("export to %q failed: %v", destPath, err)
		return false
	}

	return true
}

// Remove deletes the entry under key.
func (c *Cache) Remove(ctx context.Context, key string) bool {
	if !c.enabled {
		return false
	}

	relPath, ok := ValidateKey(key)
	if !ok {
		return false
	}

	return c.store.Delete(ctx, relPath) == nil
}

// Entries lists every entry currently held, most useful for inspection
// commands. The listing carries the same observed attributes Clean uses.
func (c *Cache) Entries(ctx context.Context) ([]*EntryInfo, bool) {
	if !c.enabled {
		return nil, false
	}

	entries, err := c.store.List(ctx)
	if err != nil {
		return nil, false
	}
	return entries, true
}

// Clean runs two independent sweeps: first every entry older than the cache
// TTL is deleted, then entries are ordered by last access, most recent
// first, and the first entry that pushes the running total over maxSize is
// deleted together with everything after it. Either sweep is skipped when
// its limit is unset.
func (c *Cache) Clean(ctx context.Context) bool {
	if !c.enabled {
		return false
	}

	entries, err := c.store.List(ctx)
	if err != nil {
		return false
	}

	if c.ttl > 0 {
		cutoff := time.Now().Add(-c.ttl)

		kept := make([]*EntryInfo, 0, len(entries))
		for _, entry := range entries {
			// An entry expires at exactly ModifyTime+ttl.
			if !entry.ModifyTime.After(cutoff) {
				c.store.Delete(ctx, entry.Key)
				continue
			}
			kept = append(kept, entry)
		}
		entries = kept
	}

	if c.maxSize > 0 {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].AccessTime.After(entries[j].AccessTime)
		})

		var total int64
		for _, entry := range entries {
			total += entry.Size
			if total > c.maxSize {
				c.store.Delete(ctx, entry.Key)
			}
		}
	}

	return true
}

// effectiveTTL resolves the TTL for one staleness check: the stricter of
// the two when both are set, otherwise whichever is set, otherwise zero.
func effectiveTTL(ttl, override time.Duration) time.Duration {
	switch {
	case ttl > 0 && override > 0:
		return min(ttl, override)
	case override > 0:
		return override
	case ttl > 0:
		return ttl
	default:
		return 0
	}
}

// tightened reports whether the override lowered the effective TTL below
// the cache default. A stale hit under a tightened override leaves the file
// in place, since it may still be fresh by the default TTL.
func tightened(ttl, override time.Duration) bool {
	return override > 0 && (ttl <= 0 || override < ttl)
}
