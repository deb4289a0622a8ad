package httpapi

import (
	"io"
	"net/http"
)

// maxImageSize caps multipart uploads at 10 MiB.
const maxImageSize = 10 << 20

type imageUploadResponse struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

type imageURLResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable file part")
		return
	}

	res, err := s.images.Upload(r.Context(), caller, data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, imageUploadResponse{Key: res.Key, URL: res.URL, Format: res.Format})
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	if err := s.images.Delete(r.Context(), caller, key); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImageURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r); !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	url, err := s.images.URL(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, imageURLResponse{URL: url})
}
