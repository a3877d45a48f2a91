package cache

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

type memoryEntry struct {
	records []models.Record
	stored  time.Time
}

// Memory is the in-process cache driver. Expiry is lazy on Get; a background
// sweep additionally evicts stale entries so memory stays bounded even for
// keys that are never read again.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// NewMemory builds a memory cache. A sweepInterval of zero disables the
// background sweep; lazy expiry still applies.
func NewMemory(ttl, sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]models.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.expired(entry, m.now()) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.records, true
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, records []models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{records: records, stored: m.now()}
}

// InvalidateAll implements Store.
func (m *Memory) InvalidateAll(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// Stop terminates the background sweep. Safe to call more than once.
func (m *Memory) Stop() {
	m.stopped.Do(func() { close(m.stop) })
}

// Len reports the number of live entries, counting not-yet-swept expired ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) expired(entry memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(entry.stored) > m.ttl
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.entries {
		if m.expired(entry, now) {
			delete(m.entries, key)
		}
	}
}
