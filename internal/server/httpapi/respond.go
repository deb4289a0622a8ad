package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pradeep-dev/papertrail/internal/common"
	"github.com/pradeep-dev/papertrail/internal/server/models"
)

const timeLayout = time.RFC3339Nano

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps service sentinels onto HTTP statuses. Anything unknown is
// treated as an upstream dependency failure.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrForbidden):
		writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		writeErrorMessage(w, http.StatusBadGateway, "dependency failure")
	}
}

type noteResponse struct {
	ID        int64          `json:"id"`
	OwnerID   int64          `json:"ownerId"`
	Title     string         `json:"title"`
	Content   map[string]any `json:"content"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

func toNoteResponse(n *models.Note) noteResponse {
	content := n.Content
	if content == nil {
		content = map[string]any{}
	}
	return noteResponse{
		ID:        n.ID,
		OwnerID:   n.UserID,
		Title:     n.Title,
		Content:   content,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt: n.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toNoteResponses(notes []*models.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

type permissionResponse struct {
	UserID int64  `json:"userId"`
	Level  string `json:"permission"`
}

func toPermissionResponses(perms []*models.NotePermission) []permissionResponse {
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{UserID: p.UserID, Level: string(p.Level)})
	}
	return out
}
