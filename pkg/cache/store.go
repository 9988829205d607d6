package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Store is a persistent snapshot cache backed by a single msgpack file.
type Store struct {
	cache   *StatsCache
	path    string
	dirty   bool
	evicted int
}

// Key identifies the build of target within the IR content.
func Key(content []byte, target string) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]) + ":" + target
}

// SplitKey returns the content hash and target encoded in key.
func SplitKey(key string) (hash, target string) {
	hash, target, _ = strings.Cut(key, ":")
	return hash, target
}

// Open loads the store at path. A missing file yields an empty store.
// Entries past maxEntries are evicted on load and the file is rewritten on
// the next Flush.
func Open(path string, maxEntries int) (*Store, error) {
	s := &Store{path: path}
	s.cache = NewStatsCache(Options{
		MaxEntries: maxEntries,
		OnEvict: func(string, []byte) {
			s.evicted++
			s.dirty = true
		},
	})
	if err := LoadFromFile(s.cache.LRUCache, path); err != nil {
		return nil, fmt.Errorf("loading snapshot cache %s: %w", path, err)
	}
	return s, nil
}

// Get returns the blob stored under key. A hit refreshes the entry's
// recency, which is persisted by the next Flush.
func (s *Store) Get(key string) ([]byte, error) {
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	s.dirty = true
	return data, nil
}

// Put stores data under key. Nothing is written to disk until Flush.
func (s *Store) Put(key string, data []byte) {
	s.cache.Set(key, data)
	s.dirty = true
}

// Delete drops key from the store.
func (s *Store) Delete(key string) {
	s.cache.Delete(key)
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.cache.Clear()
	s.dirty = true
}

// Keys returns the stored keys from most to least recently used.
func (s *Store) Keys() []string {
	return s.cache.Keys()
}

// Flush writes the store to disk if it changed since Open.
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	if err := PersistToFile(s.cache.LRUCache, s.path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Stats reports usage since Open.
func (s *Store) Stats() Stats { return s.cache.Stats() }

// HitRate returns the fraction of lookups since Open that hit.
func (s *Store) HitRate() float64 { return s.cache.HitRate() }

// Evicted returns the number of entries dropped since Open, by the size
// limit or by Delete.
func (s *Store) Evicted() int { return s.evicted }
