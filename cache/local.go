package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// localStore persists entries as plain files under a root directory. Entry
// metadata is whatever the filesystem reports, so the store carries no
// state of its own and is reconstructible by a directory scan alone.
type localStore struct {
	root string
}

func newLocalStore(root string) *localStore {
	return &localStore{root: root}
}

func (s *localStore) Name() string { return "local" }

func (s *localStore) Open(ctx context.Context) error {
	return os.MkdirAll(s.root, 0755)
}

func (s *localStore) Close(ctx context.Context) error { return nil }

func (s *localStore) resolvePath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *localStore) Stat(ctx context.Context, key string) (*EntryInfo, error) {
	info, err := os.Stat(s.resolvePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotExist
	}

	return &EntryInfo{
		Key:        key,
		Size:       info.Size(),
		ModifyTime: info.ModTime(),
		AccessTime: accessTime(info),
	}, nil
}

func (s *localStore) Read(ctx context.Context, key string) ([]byte, error) {
	fullPath := s.resolvePath(key)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}

	// Refresh the access time explicitly; mounted filesystems with relatime
	// would otherwise defeat least-recently-accessed eviction. Best effort.
	if info, err := os.Stat(fullPath); err == nil {
		os.Chtimes(fullPath, time.Now(), info.ModTime())
	}

	return data, nil
}

func (s *localStore) Write(ctx context.Context, key string, data []byte) error {
	fullPath := s.resolvePath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	// Write to a unique sibling first so a concurrent reader never observes
	// a half-written entry.
	tmpPath := fullPath + ".tmp-" + uuid.Must(uuid.NewV7()).String()
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.resolvePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

func (s *localStore) List(ctx context.Context) ([]*EntryInfo, error) {
	var entries []*EntryInfo

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}

		entries = append(entries, &EntryInfo{
			Key:        filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifyTime: info.ModTime(),
			AccessTime: accessTime(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
