// Package notes provides the PostgreSQL-backed repository for note records.
// Note content is an opaque JSON document stored in a jsonb column.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
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

func marshalContent(content map[string]any) ([]byte, error) {
	if content == nil {
		content = map[string]any{}
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal note content: %w", err)
	}
	return raw, nil
}

func scanNote(row interface{ Scan(...any) error }, note *models.Note) error {
	var raw []byte
	if err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &raw,
		&note.CreatedBy, &note.CreatedAt, &note.UpdatedAt,
	); err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &note.Content); err != nil {
			return fmt.Errorf("unmarshal note content: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	raw, err := marshalContent(note.Content)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO notes (user_id, title, content, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		note.UserID, note.Title, raw, note.CreatedBy).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return note, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query :=
		`SELECT id, user_id, title, content, created_by, created_at, updated_at FROM notes
		 WHERE id = $1
		 `

	note := &models.Note{}
	if err := scanNote(r.db.QueryRowContext(ctx, query, id), note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return note, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.Note, error) {
	query :=
		`SELECT id, user_id, title, content, created_by, created_at, updated_at FROM notes
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// ListSharedWith returns all notes the user holds a READ or EDIT grant on.
// DISTINCT keeps each note listed once even if the join ever produces
// duplicates; dangling grants are excluded by the inner join itself.
func (r *PostgresRepository) ListSharedWith(ctx context.Context, userID int64) ([]*models.Note, error) {
	query :=
		`SELECT DISTINCT n.id, n.user_id, n.title, n.content, n.created_by, n.created_at, n.updated_at
		 FROM notes n
		 JOIN note_permissions p ON p.note_id = n.id
		 WHERE p.user_id = $1 AND p.permission IN ('READ', 'EDIT')
		 ORDER BY n.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// Update replaces title and content and refreshes updated_at. Owner, creator
// snapshot and created_at are never touched.
func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	raw, err := marshalContent(note.Content)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE notes SET title = $1, content = $2, updated_at = now()
		 WHERE id = $3
		 RETURNING user_id, created_by, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query, note.Title, raw, note.ID).
		Scan(&note.UserID, &note.CreatedBy, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return note, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM notes WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func collectNotes(rows *sql.Rows) ([]*models.Note, error) {
	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := scanNote(rows, note); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
