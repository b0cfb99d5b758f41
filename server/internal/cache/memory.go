package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	val       []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-process cache. A background goroutine (Run)
// periodically evicts expired entries.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// NewMemory creates a Memory cache whose entries default to ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.val, true
}

// Set stores val under key. A ttl of zero uses the cache default.
// Callers must not modify val after calling Set.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{val: val, expiresAt: m.now().Add(ttl)}
	return nil
}

// Count returns the number of entries held, including expired ones not yet
// evicted.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Evict removes entries that expired at or before now and returns how many
// were removed.
func (m *Memory) Evict(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.data {
		if !now.Before(e.expiresAt) {
			delete(m.data, k)
			removed++
		}
	}
	return removed
}

// Run evicts expired entries every half TTL (minimum 1 second) until ctx is
// cancelled.
func (m *Memory) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Evict(now); n > 0 {
				slog.Debug("cache: evicted expired reports", "count", n)
			}
		}
	}
}
