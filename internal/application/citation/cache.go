package citation

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

// ResultStore memoizes assembled networks.  Implementations must be safe for
// concurrent use; a failing backend reports a miss and drops writes.
type ResultStore interface {
	Get(ctx context.Context, key string) (*domainCitation.CitationNetwork, bool)
	Set(ctx context.Context, key string, network *domainCitation.CitationNetwork)
}

// CacheKey builds the store key for already-clamped depths.
func CacheKey(patentID string, backwardDepth, forwardDepth int) string {
	return fmt.Sprintf("%s|b%d|f%d", patentID, backwardDepth, forwardDepth)
}

// DefaultMemoryCapacity bounds the memory store when no capacity is given.
const DefaultMemoryCapacity = 1024

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCapacity sets the maximum number of entries; values < 1 are ignored.
func WithCapacity(n int) MemoryStoreOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL expires entries after ttl.  Zero keeps entries until evicted.
func WithTTL(ttl time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// withStoreClock overrides time.Now in tests.
func withStoreClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

type memoryEntry struct {
	key       string
	network   *domainCitation.CitationNetwork
	expiresAt time.Time
}

// MemoryStore is an in-process LRU ResultStore.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore creates an LRU store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		capacity: DefaultMemoryCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for key and marks it most recently used.
func (s *MemoryStore) Get(_ context.Context, key string) (*domainCitation.CitationNetwork, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	entry := el.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.lru.Remove(el)
		delete(s.entries, key)
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	s.lru.MoveToFront(el)
	atomic.AddInt64(&s.hits, 1)
	return entry.network, true
}

// Set stores network under key, evicting the least recently used entry when
// the store is full.
func (s *MemoryStore) Set(_ context.Context, key string, network *domainCitation.CitationNetwork) {
	if network == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	if el, ok := s.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.network = network
		entry.expiresAt = expiresAt
		s.lru.MoveToFront(el)
		return
	}

	for s.lru.Len() >= s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.lru.Remove(oldest)
		delete(s.entries, oldest.Value.(*memoryEntry).key)
		atomic.AddInt64(&s.evictions, 1)
	}
	s.entries[key] = s.lru.PushFront(&memoryEntry{key: key, network: network, expiresAt: expiresAt})
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// MemoryStoreStats is a snapshot of store counters.
type MemoryStoreStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Stats returns current counters.
func (s *MemoryStore) Stats() MemoryStoreStats {
	return MemoryStoreStats{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		Evictions: atomic.LoadInt64(&s.evictions),
		Size:      s.Len(),
	}
}

//Personal.AI order the ending
