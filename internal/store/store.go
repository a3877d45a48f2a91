// Package store owns the authoritative in-memory record collection and
// orchestrates validation, access policy and the query cache on every read
// and write path. One Store instance is created by main and passed by
// reference to its collaborators; there is no ambient singleton.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard-api/internal/backend"
	"github.com/noah-isme/sma-dashboard-api/internal/cache"
	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/validation"
)

// Metrics is the optional instrumentation consumed by the store.
type Metrics interface {
	ObserveQuery(cacheHit bool, duration time.Duration)
	SetRecordCount(count int)
}

// Config tunes the store.
type Config struct {
	// MaxRecords caps the collection size checked on create. Zero disables
	// the ceiling.
	MaxRecords int
	// Seeds are the built-in login accounts. They are never removed from
	// the credential index, only shadowed when a teacher record reuses the
	// same username.
	Seeds []Credential
}

// Store is the data management core behind the dashboard.
type Store struct {
	mu      sync.RWMutex
	records []models.Record
	creds   map[string]Credential

	backend backend.Backend
	cache   cache.Store
	rules   *validation.Rules
	logger  *zap.Logger
	metrics Metrics

	maxRecords int
	seeds      []Credential

	listenerMu sync.Mutex
	listeners  map[int]func()
	listenerID int
}

// New builds a store. The collection stays empty until Start (or a direct
// Resync) delivers the first backend snapshot.
func New(b backend.Backend, c cache.Store, rules *validation.Rules, logger *zap.Logger, cfg Config) *Store {
	if c == nil {
		c = cache.Disabled{}
	}
	if rules == nil {
		rules = validation.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend:    b,
		cache:      c,
		rules:      rules,
		logger:     logger,
		maxRecords: cfg.MaxRecords,
		seeds:      cfg.Seeds,
		creds:      map[string]Credential{},
	}
	s.rebuildCredentials(nil)
	return s
}

// SetMetrics attaches instrumentation. Optional.
func (s *Store) SetMetrics(m Metrics) { s.metrics = m }

// Start connects the store to the backend: the initial snapshot and every
// later change arrive through Resync.
func (s *Store) Start(ctx context.Context) error {
	return s.backend.Initialize(ctx, s.Resync, s.handleBackendError)
}

// Resync replaces the whole collection with the authoritative backend
// snapshot, rebuilds the credential index and drops every cached query.
// There is no incremental diffing: a record is either fully present or
// fully absent.
func (s *Store) Resync(records []models.Record) {
	s.mu.Lock()
	s.records = records
	s.rebuildCredentials(records)
	s.mu.Unlock()

	s.cache.InvalidateAll(context.Background())
	if s.metrics != nil {
		s.metrics.SetRecordCount(len(records))
	}
	s.logger.Debug("collection resynchronized", zap.Int("records", len(records)))
	s.notifyChanged()
}

// handleBackendError keeps the last known-good collection serving when a
// backend notification fails.
func (s *Store) handleBackendError(err error) {
	s.logger.Error("backend notification failed", zap.Error(err))
}

// Subscribe registers a change listener fired after every resync and every
// successful mutation. Listeners receive no payload; they re-pull via Query.
// The returned function removes the listener again.
func (s *Store) Subscribe(fn func()) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if s.listeners == nil {
		s.listeners = map[int]func(){}
	}
	s.listenerID++
	id := s.listenerID
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notifyChanged() {
	s.listenerMu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Len reports the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) findByID(id string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Meta().ID == id {
			return rec, true
		}
	}
	return nil, false
}
