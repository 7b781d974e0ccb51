package cache

import (
	"context"
	"sync"
	"time"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
)

// TTLStore is an instance-owned expiring key-value store. Entries expire a
// fixed retention after insertion regardless of later reads or writes; a
// low-frequency janitor sweeps expired entries, and Get also checks expiry
// lazily so a stale entry is never returned between sweeps.
type TTLStore[V any] struct {
	mu        sync.RWMutex
	entries   map[string]ttlEntry[V]
	retention time.Duration
	sweep     time.Duration
	log       *logger.Logger
}

type ttlEntry[V any] struct {
	value      V
	insertedAt time.Time
}

func NewTTLStore[V any](retention, sweepInterval time.Duration, baseLog *logger.Logger) *TTLStore[V] {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &TTLStore[V]{
		entries:   make(map[string]ttlEntry[V]),
		retention: retention,
		sweep:     sweepInterval,
		log:       baseLog.With("component", "TTLStore"),
	}
}

func (s *TTLStore[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[key]
	insertedAt := time.Now()
	if ok {
		// Updates keep the original insertion clock; retention counts from
		// task creation, not from completion.
		insertedAt = existing.insertedAt
	}
	s.entries[key] = ttlEntry[V]{value: value, insertedAt: insertedAt}
}

func (s *TTLStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	var zero V
	if !ok {
		return zero, false
	}
	if time.Since(entry.insertedAt) > s.retention {
		s.Delete(key)
		return zero, false
	}
	return entry.value, true
}

func (s *TTLStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *TTLStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor runs the sweep loop until ctx is cancelled.
func (s *TTLStore[V]) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := s.sweepExpired()
				if removed > 0 {
					s.log.Debug("Swept expired entries", "removed", removed)
				}
			}
		}
	}()
}

func (s *TTLStore[V]) sweepExpired() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.insertedAt) > s.retention {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
