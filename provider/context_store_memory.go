package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps values in process memory. Values are held in their JSON
// encoding, like the redis store, so every Load returns a fresh copy that
// shares nothing with the saved value or other callers. Expired entries are
// dropped lazily. With a limit set, a Save that overflows evicts the oldest
// entry.
type MemoryStore[C any] struct {
	mu    sync.Mutex
	items map[string]memItem[C]
	seq   uint64
	limit int
	now   func() time.Time
}

type memItem[C any] struct {
	data    []byte
	seq     uint64
	expires time.Time // zero: never
}

func (it memItem[C]) expired(now time.Time) bool {
	return !it.expires.IsZero() && !now.Before(it.expires)
}

// NewMemoryStore returns an unbounded store.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{items: map[string]memItem[C]{}, now: time.Now}
}

// WithClock swaps the clock used for TTLs.
func (s *MemoryStore[C]) WithClock(now func() time.Time) *MemoryStore[C] {
	s.now = now
	return s
}

// WithLimit caps the number of entries; n <= 0 removes the cap.
func (s *MemoryStore[C]) WithLimit(n int) *MemoryStore[C] {
	s.limit = n
	return s
}

func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if it.expired(s.now()) {
		delete(s.items, key)
		return nil, nil
	}
	val := new(C)
	if err := json.Unmarshal(it.data, val); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return val, nil
}

func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	it := memItem[C]{data: data, seq: s.seq}
	if ttl > 0 {
		it.expires = s.now().Add(ttl)
	}
	s.items[key] = it
	if s.limit > 0 && len(s.items) > s.limit {
		s.evict()
	}
	return nil
}

// evict drops expired entries, then the oldest ones until under the limit.
func (s *MemoryStore[C]) evict() {
	now := s.now()
	for k, it := range s.items {
		if it.expired(now) {
			delete(s.items, k)
		}
	}
	for len(s.items) > s.limit {
		var oldest string
		var lowest uint64
		for k, it := range s.items {
			if lowest == 0 || it.seq < lowest {
				oldest, lowest = k, it.seq
			}
		}
		delete(s.items, oldest)
	}
}

func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until they are dropped.
func (s *MemoryStore[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ ContextStore[any] = (*MemoryStore[any])(nil)
