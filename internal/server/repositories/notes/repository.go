package notes

import (
	"context"

	"github.com/pradeep-dev/papertrail/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.Note, error)
	ListSharedWith(ctx context.Context, userID int64) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	Delete(ctx context.Context, id int64) error
}
