package cache

import (
	"context"
	"errors"
	"time"
)

// Standard errors store implementations should use.
var (
	ErrNotExist    = errors.New("cache: entry does not exist")
	ErrUnavailable = errors.New("cache: store unavailable")
)

// EntryInfo describes a single cache entry as observed by its store. Every
// expiry and eviction decision derives from these observed attributes; no
// bookkeeping is kept out-of-band, so a store is fully reconstructible from
// its own contents.
type EntryInfo struct {
	Key        string
	Size       int64
	ModifyTime time.Time
	AccessTime time.Time
}

// Store is the persistence layer behind a Cache. The local filesystem store
// is the default; the alternative stores persist the same entry shape in
// shared or in-memory backends and feed the same TTL and eviction logic.
type Store interface {
	// Name returns the identifier name defined for this store.
	Name() string

	// Open prepares the store for use. When it fails the owning cache
	// degrades to a no-op instead of surfacing the error.
	Open(ctx context.Context) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error

	// Stat returns the observed attributes of an entry.
	Stat(ctx context.Context, key string) (*EntryInfo, error)

	// Read returns the full content of an entry and refreshes its access
	// time.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the full content of an entry, creating it if needed.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// List returns every entry currently held by the store.
	List(ctx context.Context) ([]*EntryInfo, error)
}
