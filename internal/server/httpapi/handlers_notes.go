package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pradeep-dev/papertrail/internal/server/models"
)

type noteRequest struct {
	Title   string         `json:"title"`
	Content map[string]any `json:"content"`
}

type shareRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// pathID parses a numeric path variable. mux route patterns do not constrain
// the value, so non-numeric input is rejected here.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	note, err := s.notes.CreateNote(r.Context(), caller, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := s.notes.GetNote(r.Context(), caller, noteID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleListOwnedNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	notes, err := s.notes.ListOwnedNotes(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (s *Server) handleListSharedNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	notes, err := s.notes.ListSharedNotes(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	note, err := s.notes.UpdateNote(r.Context(), caller, noteID, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := s.notes.DeleteNote(r.Context(), caller, noteID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShareNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	level, err := models.ParsePermissionLevel(req.Permission)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	perm, err := s.notes.ShareNote(r.Context(), caller, noteID, req.Email, level)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, permissionResponse{UserID: perm.UserID, Level: string(perm.Level)})
}

func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}

	perms, err := s.notes.ListPermissions(r.Context(), caller, noteID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPermissionResponses(perms))
}

func (s *Server) handleRevokePermission(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	noteID, ok := pathID(r, "noteId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid note id")
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.notes.RevokePermission(r.Context(), caller, noteID, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
