// Package permissions provides the PostgreSQL-backed repository for note
// access grants. The unique constraint on (note_id, user_id) guarantees at
// most one grant per pair and lets concurrent shares collapse to one row.
package permissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pradeep-dev/papertrail/internal/common"
	"github.com/pradeep-dev/papertrail/internal/dbx"
	"github.com/pradeep-dev/papertrail/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates a grant or replaces the level of an existing one in place.
func (r *PostgresRepository) Upsert(ctx context.Context, perm *models.NotePermission) (*models.NotePermission, error) {
	query :=
		`INSERT INTO note_permissions (note_id, user_id, permission)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (note_id, user_id)
		 DO UPDATE SET permission = EXCLUDED.permission
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		perm.NoteID, perm.UserID, string(perm.Level)).Scan(&perm.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return perm, nil
}

func (r *PostgresRepository) Get(ctx context.Context, noteID, userID int64) (*models.NotePermission, error) {
	query :=
		`SELECT id, note_id, user_id, permission FROM note_permissions
		 WHERE note_id = $1 AND user_id = $2
		 `

	perm := &models.NotePermission{}
	err := r.db.QueryRowContext(ctx, query, noteID, userID).Scan(
		&perm.ID, &perm.NoteID, &perm.UserID, &perm.Level)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return perm, nil
}

func (r *PostgresRepository) ListByNote(ctx context.Context, noteID int64) ([]*models.NotePermission, error) {
	query :=
		`SELECT id, note_id, user_id, permission FROM note_permissions
		 WHERE note_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select permissions: %w", err)
	}
	defer rows.Close()

	var result []*models.NotePermission
	for rows.Next() {
		perm := &models.NotePermission{}
		if err := rows.Scan(&perm.ID, &perm.NoteID, &perm.UserID, &perm.Level); err != nil {
			return nil, err
		}
		result = append(result, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByNoteAndUser removes a single grant. Deleting an absent grant is a
// no-op success.
func (r *PostgresRepository) DeleteByNoteAndUser(ctx context.Context, noteID, userID int64) error {
	query := `DELETE FROM note_permissions WHERE note_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, noteID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// DeleteByNote removes every grant referencing a note. Run inside the same
// transaction as the note deletion itself.
func (r *PostgresRepository) DeleteByNote(ctx context.Context, noteID int64) error {
	query := `DELETE FROM note_permissions WHERE note_id = $1`

	if _, err := r.db.ExecContext(ctx, query, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
