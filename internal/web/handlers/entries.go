package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/preview"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// EntriesHandler handles the ordered list of photos and inserts
type EntriesHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
}

// NewEntriesHandler creates a new entries handler
func NewEntriesHandler(cfg *config.Config, sm *middleware.SessionManager) *EntriesHandler {
	return &EntriesHandler{
		config:         cfg,
		sessionManager: sm,
	}
}

// UploadResponse reports accepted and rejected files along with the new count
type UploadResponse struct {
	session.AddResult
	Count session.Count `json:"count"`
}

// failedReader stands in for a multipart part that could not be opened so
// intake reports it like any other unreadable file.
type failedReader struct{ err error }

func (f failedReader) Read([]byte) (int, error) { return 0, f.err }

// Upload handles multipart uploads in the "files" field. Rejected files are
// reported but never fail the request.
func (h *EntriesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	if err := r.ParseMultipartForm(constants.MultipartMemory); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(files) > constants.MaxFilesPerUpload {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per upload", constants.MaxFilesPerUpload))
		return
	}

	uploads := make([]session.Upload, 0, len(files))
	for _, fh := range files {
		u := session.Upload{Name: filepath.Base(fh.Filename), Size: fh.Size}
		f, err := fh.Open()
		if err != nil {
			u.Reader = failedReader{err: err}
		} else {
			defer f.Close()
			u.Reader = f
		}
		uploads = append(uploads, u)
	}

	result := s.Add(uploads)
	respondJSON(w, http.StatusOK, UploadResponse{AddResult: result, Count: s.Count()})
}

// Delete removes one entry
func (h *EntriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	id, ok := entryIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.Remove(id); err != nil {
		respondEntryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

type moveRequest struct {
	OverID uuid.UUID `json:"over_id"`
}

// Move drops the entry in the URL onto the position of over_id
func (h *EntriesHandler) Move(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	id, ok := entryIDParam(w, r, "id")
	if !ok {
		return
	}

	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := s.Move(id, req.OverID); err != nil {
		respondEntryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// Reorder replaces the whole order
func (h *EntriesHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := s.Reorder(req.IDs); err != nil {
		respondEntryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// Thumbnail serves the JPEG preview of an image entry
func (h *EntriesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	id, ok := entryIDParam(w, r, "id")
	if !ok {
		return
	}

	data, err := s.Thumbnail(id)
	if err != nil {
		respondEntryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// respondEntryError maps session entry errors to HTTP statuses.
func respondEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownEntry):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNoPreview):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, preview.ErrReleased):
		respondError(w, http.StatusNotFound, "entry was removed")
	case errors.Is(err, session.ErrPreviewFailed):
		log.Printf("WARNING: thumbnail failed: %v", err)
		respondError(w, http.StatusUnprocessableEntity, "image could not be decoded")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
