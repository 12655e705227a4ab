// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists workflow snapshots in an embedded key-value
// database. Values are whole-snapshot JSON documents written with
// last-write-wins semantics; there is no merge. An in-process cache sits in
// front of the database so repeated loads within a run skip the disk.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheCleanup = 10 * time.Minute
)

// Store wraps a BadgerDB instance with typed JSON access and caching.
type Store struct {
	db    *badger.DB
	cache *gocache.Cache
}

// Open creates or opens the store described by cfg. The data directory is
// created if it does not exist. Callers must Close the returned store.
func Open(cfg types.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("store data directory is required")
		}
		opts = badger.DefaultOptions(cfg.DataDir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cleanup := cfg.CacheCleanup
	if cleanup <= 0 {
		cleanup = defaultCacheCleanup
	}

	return &Store{
		db:    db,
		cache: gocache.New(ttl, cleanup),
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the JSON document at key into v. It never fails: a missing key,
// an unreadable value, or malformed JSON all report false and leave v as the
// caller primed it. Callers pass v prefilled with defaults so fields absent
// from the snapshot keep them individually.
func (s *Store) Load(key string, v any) bool {
	raw, ok := s.LoadRaw(key)
	if !ok {
		return false
	}
	if !json.Valid(raw) {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}

// LoadRaw reads the raw bytes at key, consulting the cache first. Used
// directly for keys whose value may be a bare non-JSON string.
func (s *Store) LoadRaw(key string) ([]byte, bool) {
	if cached, found := s.cache.Get(key); found {
		return cached.([]byte), true
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	s.cache.Set(key, raw, gocache.DefaultExpiration)
	return raw, true
}

// Save marshals v to JSON and writes it at key, replacing any previous
// value. Saving the same snapshot twice is a no-op at the data level.
func (s *Store) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.SaveRaw(key, raw)
}

// SaveRaw writes raw bytes at key.
func (s *Store) SaveRaw(key string, raw []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	s.cache.Set(key, raw, gocache.DefaultExpiration)
	return nil
}

// Delete removes the given keys. Missing keys are not errors.
func (s *Store) Delete(keys ...string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		s.cache.Delete(key)
	}
	return nil
}
