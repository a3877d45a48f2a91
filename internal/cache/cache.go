// Package cache provides the query result cache used by the record store.
// Entries expire after a TTL; a single mutation invalidates everything, so
// drivers only need coarse wholesale invalidation.
package cache

import (
	"context"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// Store caches filtered query results keyed by the canonical query key.
type Store interface {
	// Get returns the cached list and true on a hit. Expired entries are
	// reported as absent.
	Get(ctx context.Context, key string) ([]models.Record, bool)
	// Set stores the list under the key.
	Set(ctx context.Context, key string, records []models.Record)
	// InvalidateAll drops every entry unconditionally.
	InvalidateAll(ctx context.Context)
}

// Disabled is the driver used when caching is configured off: every lookup
// misses and writes are dropped.
type Disabled struct{}

// Get always reports a miss.
func (Disabled) Get(context.Context, string) ([]models.Record, bool) { return nil, false }

// Set is a no-op.
func (Disabled) Set(context.Context, string, []models.Record) {}

// InvalidateAll is a no-op.
func (Disabled) InvalidateAll(context.Context) {}
