// Package backend defines the persistence collaborator contract consumed by
// the record store. The store never mutates its collection directly: every
// successful write makes the backend re-report the full snapshot through the
// change handler.
package backend

import (
	"context"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// ChangeHandler receives the authoritative full snapshot after any change.
type ChangeHandler func(records []models.Record)

// ErrorHandler receives non-fatal backend failures (e.g. a reload that could
// not complete). The consumer keeps serving its last known-good state.
type ErrorHandler func(err error)

// Backend is the create/update/delete/subscribe contract.
type Backend interface {
	// Initialize connects the handlers and reports the initial snapshot.
	Initialize(ctx context.Context, onChange ChangeHandler, onError ErrorHandler) error
	// Create persists a new record and returns it with its assigned identity.
	Create(ctx context.Context, rec models.Record) (models.Record, error)
	// Update persists the full merged record and returns the stored form.
	Update(ctx context.Context, rec models.Record) (models.Record, error)
	// Delete removes the record.
	Delete(ctx context.Context, rec models.Record) error
}
