package models

import "time"

// Note is a user-owned document with an opaque JSON content body.
// UserID is the owner and never changes after creation. CreatedBy is a
// denormalized snapshot of the owner's display name taken at creation time.
type Note struct {
	ID        int64
	UserID    int64
	Title     string
	Content   map[string]any
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
