package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/cmdkit/cache"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store persists cache entries in a SQLite database with a two-layer
// design: an in-memory B-tree for fast key → ID lookups backed by a single
// entries table holding content and observed timestamps.
type Store struct {
	mu sync.RWMutex
	db *sql.DB

	// In-memory B-tree for fast key lookups
	keys *btree.Map[string, string]
}

// NewStore opens or creates the database at dbPath. ":memory:" works for
// throwaway stores.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers usable while Clean deletes entries.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		content BLOB NOT NULL,
		size INTEGER NOT NULL CHECK(size >= 0),
		modify_time INTEGER NOT NULL,
		access_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_key ON cache_entries(key);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_access_time ON cache_entries(access_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Name() string { return "sqlite" }

// Open loads the key index into memory.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, id FROM cache_entries")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return err
		}
		s.keys.Set(key, id)
	}

	return rows.Err()
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys.Clear()
	return s.db.Close()
}

func (s *Store) Stat(ctx context.Context, key string) (*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.keys.Get(key)
	if !ok {
		return nil, cache.ErrNotExist
	}

	var size, modifyTime, accessTime int64
	row := s.db.QueryRowContext(ctx,
		"SELECT size, modify_time, access_time FROM cache_entries WHERE id = ?", id)
	if err := row.Scan(&size, &modifyTime, &accessTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrNotExist
		}
		return nil, err
	}

	return &cache.EntryInfo{
		Key:        key,
		Size:       size,
		ModifyTime: time.Unix(0, modifyTime),
		AccessTime: time.Unix(0, accessTime),
	}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.keys.Get(key)
	if !ok {
		return nil, cache.ErrNotExist
	}

	var content []byte
	row := s.db.QueryRowContext(ctx, "SELECT content FROM cache_entries WHERE id = ?", id)
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrNotExist
		}
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE cache_entries SET access_time = ? WHERE id = ?", time.Now().UnixNano(), id)
	if err != nil {
		return nil, err
	}

	return content, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()

	if id, ok := s.keys.Get(key); ok {
		_, err := s.db.ExecContext(ctx,
			"UPDATE cache_entries SET content = ?, size = ?, modify_time = ?, access_time = ? WHERE id = ?",
			data, len(data), now, now, id)
		return err
	}

	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cache_entries (id, key, content, size, modify_time, access_time) VALUES (?, ?, ?, ?, ?, ?)",
		id, key, data, len(data), now, now)
	if err != nil {
		return err
	}

	s.keys.Set(key, id)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.keys.Get(key)
	if !ok {
		return cache.ErrNotExist
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE id = ?", id); err != nil {
		return err
	}

	s.keys.Delete(key)
	return nil
}

func (s *Store) List(ctx context.Context) ([]*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, size, modify_time, access_time FROM cache_entries ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*cache.EntryInfo
	for rows.Next() {
		var key string
		var size, modifyTime, accessTime int64
		if err := rows.Scan(&key, &size, &modifyTime, &accessTime); err != nil {
			return nil, err
		}
		entries = append(entries, &cache.EntryInfo{
			Key:        key,
			Size:       size,
			ModifyTime: time.Unix(0, modifyTime),
			AccessTime: time.Unix(0, accessTime),
		})
	}

	return entries, rows.Err()
}
