// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. Email is the unique login key; Name is the
// display name copied into notes as the creator snapshot.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
