package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mwantia/cmdkit/cache"
	"github.com/tidwall/btree"
)

type memoryEntry struct {
	data       []byte
	modifyTime time.Time
	accessTime time.Time
}

// Store keeps entries in process memory, ordered by key in a B-tree.
// Useful for tests and for short-lived processes that want cache semantics
// without touching the filesystem.
type Store struct {
	mu   sync.RWMutex
	keys *btree.Map[string, *memoryEntry]
}

func NewStore() *Store {
	return &Store{
		keys: btree.NewMap[string, *memoryEntry](0),
	}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Open(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys.Clear()
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.keys.Get(key)
	if !ok {
		return nil, cache.ErrNotExist
	}

	return &cache.EntryInfo{
		Key:        key,
		Size:       int64(len(entry.data)),
		ModifyTime: entry.modifyTime,
		AccessTime: entry.accessTime,
	}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.keys.Get(key)
	if !ok {
		return nil, cache.ErrNotExist
	}

	entry.accessTime = time.Now()

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buffer := make([]byte, len(data))
	copy(buffer, data)

	now := time.Now()
	s.keys.Set(key, &memoryEntry{
		data:       buffer,
		modifyTime: now,
		accessTime: now,
	})
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys.Delete(key); !ok {
		return cache.ErrNotExist
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*cache.EntryInfo, 0, s.keys.Len())
	s.keys.Scan(func(key string, entry *memoryEntry) bool {
		entries = append(entries, &cache.EntryInfo{
			Key:        key,
			Size:       int64(len(entry.data)),
			ModifyTime: entry.modifyTime,
			AccessTime: entry.accessTime,
		})
		return true
	})

	return entries, nil
}
