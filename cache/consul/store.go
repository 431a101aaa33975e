package consul

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/cmdkit/cache"
)

// envelope wraps entry content with the timestamps Consul KV itself does
// not record.
type envelope struct {
	Data       []byte `json:"data"`
	ModifyTime int64  `json:"modify_time"`
	AccessTime int64  `json:"access_time"`
}

// Store persists cache entries in Consul KV under a shared prefix, so
// several hosts in one datacenter can reuse the same cached artifacts.
// Entries are limited by Consul's 512KB value cap.
type Store struct {
	mu sync.RWMutex

	kv     *api.KV
	prefix string
}

func NewStore(address, prefix string) (*Store, error) {
	client, err := api.NewClient(&api.Config{Address: address})
	if err != nil {
		return nil, err
	}

	return &Store{
		kv:     client.KV(),
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *Store) Name() string { return "consul" }

func (s *Store) Open(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A single list verifies both connectivity and prefix access.
	_, _, err := s.kv.Keys(s.prefix+"/", "/", nil)
	return err
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) buildKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *Store) get(key string) (*envelope, error) {
	pair, _, err := s.kv.Get(s.buildKey(key), nil)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, cache.ErrNotExist
	}

	var env envelope
	if err := json.Unmarshal(pair.Value, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (s *Store) put(key string, env *envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	_, err = s.kv.Put(&api.KVPair{Key: s.buildKey(key), Value: value}, nil)
	return err
}

func (s *Store) Stat(ctx context.Context, key string) (*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	env, err := s.get(key)
	if err != nil {
		return nil, err
	}

	return &cache.EntryInfo{
		Key:        key,
		Size:       int64(len(env.Data)),
		ModifyTime: time.Unix(0, env.ModifyTime),
		AccessTime: time.Unix(0, env.AccessTime),
	}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.get(key)
	if err != nil {
		return nil, err
	}

	env.AccessTime = time.Now().UnixNano()
	if err := s.put(key, env); err != nil {
		return nil, err
	}

	return env.Data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	return s.put(key, &envelope{
		Data:       data,
		ModifyTime: now,
		AccessTime: now,
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(key); err != nil {
		return err
	}

	_, err := s.kv.Delete(s.buildKey(key), nil)
	return err
}

func (s *Store) List(ctx context.Context) ([]*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}

	pairs, _, err := s.kv.List(listPrefix, nil)
	if err != nil {
		return nil, err
	}

	entries := make([]*cache.EntryInfo, 0, len(pairs))
	for _, pair := range pairs {
		var env envelope
		if err := json.Unmarshal(pair.Value, &env); err != nil {
			continue
		}

		entries = append(entries, &cache.EntryInfo{
			Key:        strings.TrimPrefix(pair.Key, listPrefix),
			Size:       int64(len(env.Data)),
			ModifyTime: time.Unix(0, env.ModifyTime),
			AccessTime: time.Unix(0, env.AccessTime),
		})
	}

	return entries, nil
}
