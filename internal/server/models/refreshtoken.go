package models

import "time"

// RefreshToken is a server-stored, single-use token exchanged for a new
// access/refresh pair. Rotated on every use.
type RefreshToken struct {
	Token   string
	UserID  int64
	Expires time.Time
}
