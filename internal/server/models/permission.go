package models

import (
	"fmt"
)

// PermissionLevel is the access level conferred by a note grant.
// EDIT implies READ in effect: anyone who can edit can also view.
type PermissionLevel string

const (
	PermissionRead PermissionLevel = "READ"
	PermissionEdit PermissionLevel = "EDIT"
)

// ParsePermissionLevel validates a wire-level permission string.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch PermissionLevel(s) {
	case PermissionRead:
		return PermissionRead, nil
	case PermissionEdit:
		return PermissionEdit, nil
	default:
		return "", fmt.Errorf("unknown permission level %q", s)
	}
}

// NotePermission grants a non-owner user access to a note.
// At most one grant exists per (note, user) pair; re-sharing replaces the
// level in place.
type NotePermission struct {
	ID     int64
	NoteID int64
	UserID int64
	Level  PermissionLevel
}
