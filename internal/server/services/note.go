// Package services contains server-side business logic. This file implements
// NoteService, the permission-gated note store: ownership is the root of
// trust, EDIT grantees may mutate content, READ grantees may only view, and
// only the owner may share, revoke or delete.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pradeep-dev/papertrail/internal/common"
	"github.com/pradeep-dev/papertrail/internal/dbx"
	"github.com/pradeep-dev/papertrail/internal/server/models"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/repomanager"
)

// NoteService owns notes and their access grants. Every operation takes the
// authenticated caller's user ID, resolved upstream by the auth middleware,
// and performs all permission checks before any write.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewNoteService constructs a NoteService over the given DB and repositories.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

// CreateNote creates a note owned by the caller, snapshotting the caller's
// display name into CreatedBy. Succeeds for any authenticated caller.
func (s *NoteService) CreateNote(ctx context.Context, callerID int64, title string, content map[string]any) (*models.Note, error) {
	caller, err := s.repomanager.Users(s.db).GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolving caller: %w", err)
	}

	note := &models.Note{
		UserID:    caller.ID,
		Title:     title,
		Content:   content,
		CreatedBy: caller.Name,
	}

	created, err := s.repomanager.Notes(s.db).Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	return created, nil
}

// GetNote returns the note if the caller is the owner or holds a READ or
// EDIT grant on it.
func (s *NoteService) GetNote(ctx context.Context, callerID, noteID int64) (*models.Note, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canRead(ctx, note, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrForbidden
	}

	return note, nil
}

// ListOwnedNotes returns all notes owned by the caller.
func (s *NoteService) ListOwnedNotes(ctx context.Context, callerID int64) ([]*models.Note, error) {
	result, err := s.repomanager.Notes(s.db).ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing owned notes: %w", err)
	}
	return result, nil
}

// ListSharedNotes returns all notes the caller holds a READ or EDIT grant on,
// each note exactly once.
func (s *NoteService) ListSharedNotes(ctx context.Context, callerID int64) ([]*models.Note, error) {
	result, err := s.repomanager.Notes(s.db).ListSharedWith(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing shared notes: %w", err)
	}
	return result, nil
}

// UpdateNote replaces the note's title and content and refreshes its updated
// timestamp. Allowed for the owner and for EDIT grantees.
func (s *NoteService) UpdateNote(ctx context.Context, callerID, noteID int64, title string, content map[string]any) (*models.Note, error) {
	notesRepo := s.repomanager.Notes(s.db)

	note, err := notesRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canEdit(ctx, note, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrForbidden
	}

	note.Title = title
	note.Content = content

	updated, err := notesRepo.Update(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("updating note: %w", err)
	}

	return updated, nil
}

// ShareNote grants the user identified by targetEmail the given level on the
// note. Owner-only: EDIT grantees may not re-share. Sharing twice with the
// same target replaces the existing grant's level in place.
func (s *NoteService) ShareNote(ctx context.Context, callerID, noteID int64, targetEmail string, level models.PermissionLevel) (*models.NotePermission, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if note.UserID != callerID {
		return nil, common.ErrForbidden
	}

	target, err := s.repomanager.Users(s.db).GetByEmail(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	perm := &models.NotePermission{
		NoteID: note.ID,
		UserID: target.ID,
		Level:  level,
	}

	granted, err := s.repomanager.Permissions(s.db).Upsert(ctx, perm)
	if err != nil {
		return nil, fmt.Errorf("sharing note: %w", err)
	}

	return granted, nil
}

// RevokePermission removes the target user's grant on the note. Owner-only.
// Revoking an absent grant is a no-op success.
func (s *NoteService) RevokePermission(ctx context.Context, callerID, noteID, targetUserID int64) error {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	if note.UserID != callerID {
		return common.ErrForbidden
	}

	if err := s.repomanager.Permissions(s.db).DeleteByNoteAndUser(ctx, noteID, targetUserID); err != nil {
		return fmt.Errorf("revoking permission: %w", err)
	}

	return nil
}

// DeleteNote removes the note together with every grant referencing it, in a
// single transaction so no orphan grant can survive. Owner-only.
func (s *NoteService) DeleteNote(ctx context.Context, callerID, noteID int64) error {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	if note.UserID != callerID {
		return common.ErrForbidden
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Permissions(tx).DeleteByNote(ctx, noteID); err != nil {
			return err
		}
		return s.repomanager.Notes(tx).Delete(ctx, noteID)
	})
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}

	return nil
}

// ListPermissions returns the note's grants. Owner-only.
func (s *NoteService) ListPermissions(ctx context.Context, callerID, noteID int64) ([]*models.NotePermission, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if note.UserID != callerID {
		return nil, common.ErrForbidden
	}

	result, err := s.repomanager.Permissions(s.db).ListByNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}

	return result, nil
}

// canRead reports whether userID may view the note: the owner always may,
// anyone else needs a grant of any level.
func (s *NoteService) canRead(ctx context.Context, note *models.Note, userID int64) (bool, error) {
	if note.UserID == userID {
		return true, nil
	}

	_, err := s.repomanager.Permissions(s.db).Get(ctx, note.ID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking read permission: %w", err)
	}

	return true, nil
}

// canEdit reports whether userID may mutate the note: the owner always may,
// anyone else needs an EDIT grant.
func (s *NoteService) canEdit(ctx context.Context, note *models.Note, userID int64) (bool, error) {
	if note.UserID == userID {
		return true, nil
	}

	perm, err := s.repomanager.Permissions(s.db).Get(ctx, note.ID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking edit permission: %w", err)
	}

	return perm.Level == models.PermissionEdit, nil
}
