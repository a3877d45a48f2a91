package store

import (
	"context"
	"time"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/policy"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
)

// Create validates and persists a new record. The collection itself is not
// touched here: the backend reports the change and the next Resync applies
// it, so local state can never diverge from what was actually stored.
func (s *Store) Create(ctx context.Context, identity models.Identity, recordType models.RecordType, payload []byte) (models.Record, error) {
	rec, err := models.DecodeAs(recordType, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}

	meta := rec.Meta()
	meta.ID = ""
	meta.Author = identity.DisplayName
	meta.CreatedAt = time.Now().UTC()
	meta.UpdatedAt = nil
	meta.Approved = identity.Role.AutoApprove()

	if result := s.rules.Validate(rec); !result.Valid {
		return nil, appErrors.Clone(appErrors.ErrValidation, result.Message)
	}
	if err := s.checkUsernameCollision(rec, ""); err != nil {
		return nil, err
	}
	if s.maxRecords > 0 && s.Len() >= s.maxRecords {
		return nil, appErrors.ErrCapacity
	}

	stored, err := s.backend.Create(ctx, rec)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackend.Code, appErrors.ErrBackend.Status, "save failed")
	}

	s.cache.InvalidateAll(ctx)
	s.notifyChanged()
	return stored, nil
}

// Update merges a partial payload onto a copy of the stored record and
// persists the result. Type, identity, author and creation time are
// immutable; the merged record passes the full rule set again before it is
// sent to the backend.
func (s *Store) Update(ctx context.Context, identity models.Identity, id string, patch []byte) (models.Record, error) {
	existing, ok := s.findByID(id)
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	if !policy.CanMutate(identity, existing) {
		return nil, appErrors.ErrForbidden
	}

	merged, err := models.Merge(existing, patch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	now := time.Now().UTC()
	merged.Meta().UpdatedAt = &now

	if result := s.rules.Validate(merged); !result.Valid {
		return nil, appErrors.Clone(appErrors.ErrValidation, result.Message)
	}
	if err := s.checkUsernameCollision(merged, id); err != nil {
		return nil, err
	}

	stored, err := s.backend.Update(ctx, merged)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackend.Code, appErrors.ErrBackend.Status, "save failed")
	}

	s.cache.InvalidateAll(ctx)
	s.notifyChanged()
	return stored, nil
}

// Delete removes the record through the backend after the mutation gate.
func (s *Store) Delete(ctx context.Context, identity models.Identity, id string) error {
	existing, ok := s.findByID(id)
	if !ok {
		return appErrors.ErrNotFound
	}
	if !policy.CanMutate(identity, existing) {
		return appErrors.ErrForbidden
	}

	if err := s.backend.Delete(ctx, existing); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackend.Code, appErrors.ErrBackend.Status, "delete failed")
	}

	s.cache.InvalidateAll(ctx)
	s.notifyChanged()
	return nil
}

// checkUsernameCollision rejects teacher records whose login username is
// already claimed by a different teacher record. Seed accounts may be
// shadowed, so only record-sourced credentials count.
func (s *Store) checkUsernameCollision(rec models.Record, ownID string) error {
	teacher, ok := rec.(*models.Teacher)
	if !ok || teacher.Username == "" {
		return nil
	}
	s.mu.RLock()
	cred, exists := s.creds[teacher.Username]
	s.mu.RUnlock()
	if exists && cred.RecordID != "" && cred.RecordID != ownID {
		return appErrors.Clone(appErrors.ErrValidation, "username is already taken")
	}
	return nil
}
