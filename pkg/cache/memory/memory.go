// Package memory provides an in-memory cache.Store for testing and
// single-process deployments. Entries are lost when the process
// restarts. Optional LRU eviction and TTL expiry limit memory usage.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/cache"
)

// entry holds a stored result and its metadata.
type entry struct {
	key       string
	result    *api.Result
	expiresAt time.Time     // zero = never expires
	lruElem   *list.Element // position in LRU list
}

// Store is an in-memory cache.Store with LRU eviction and TTL expiry.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	lruList *list.List // front = most recently used, back = least recently used
	maxSize int        // 0 = unlimited
	ttl     time.Duration

	now func() time.Time
}

// Ensure Store implements cache.Store at compile time.
var _ cache.Store = (*Store)(nil)

// New creates an in-memory store. If maxSize is 0, the store grows
// without limit; otherwise the least recently used entry is evicted
// when the limit is reached. If ttl is 0, entries never expire.
func New(maxSize int, ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored result for key and marks it recently used.
func (s *Store) Get(_ context.Context, key string) (*api.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.remove(e)
		return nil, cache.ErrCacheMiss
	}

	s.lruList.MoveToFront(e.lruElem)
	return e.result, nil
}

// Set stores result under key, replacing any existing entry.
func (s *Store) Set(_ context.Context, key string, result *api.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	if e, ok := s.entries[key]; ok {
		e.result = result
		e.expiresAt = expiresAt
		s.lruList.MoveToFront(e.lruElem)
		return nil
	}

	// Evict if at capacity.
	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	e := &entry{key: key, result: result, expiresAt: expiresAt}
	e.lruElem = s.lruList.PushFront(e)
	s.entries[key] = e
	return nil
}

// Delete removes the entry for key. Absent keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.remove(e)
	}
	return nil
}

// Len reports the number of live entries, counting expired ones that
// have not been touched since expiry.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// remove deletes an entry from the map and the LRU list.
// Must be called with s.mu held.
func (s *Store) remove(e *entry) {
	s.lruList.Remove(e.lruElem)
	delete(s.entries, e.key)
}

// evictOldest removes the least recently used entry.
// Must be called with s.mu held.
func (s *Store) evictOldest() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	s.remove(back.Value.(*entry))
}
