package permissions

import (
	"context"

	"github.com/pradeep-dev/papertrail/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, perm *models.NotePermission) (*models.NotePermission, error)
	Get(ctx context.Context, noteID, userID int64) (*models.NotePermission, error)
	ListByNote(ctx context.Context, noteID int64) ([]*models.NotePermission, error)
	DeleteByNoteAndUser(ctx context.Context, noteID, userID int64) error
	DeleteByNote(ctx context.Context, noteID int64) error
}
