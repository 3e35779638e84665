package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// SessionHandler handles session lifecycle and format settings
type SessionHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(cfg *config.Config, sm *middleware.SessionManager) *SessionHandler {
	return &SessionHandler{
		config:         cfg,
		sessionManager: sm,
	}
}

// CreateSessionResponse is returned when a session starts. Token can be sent
// as a Bearer credential by clients that do not keep cookies.
type CreateSessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	State     session.State `json:"state"`
}

// Create starts a new session and sets its cookie
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionManager.CreateSession()
	if err != nil {
		log.Printf("WARNING: failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessionManager.SetSessionCookie(w, s)

	respondJSON(w, http.StatusCreated, CreateSessionResponse{
		Token:     h.sessionManager.Token(s),
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
		State:     s.State(),
	})
}

// Get returns a snapshot of the session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// Delete ends the session and releases everything it holds
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	h.sessionManager.DeleteSession(s.ID)
	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateFormat applies a partial format edit
func (h *SessionHandler) UpdateFormat(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	var req book.FormatUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if _, err := s.UpdateFormat(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// ApplyPreset replaces the format settings with a named preset
func (h *SessionHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	name := chi.URLParam(r, "name")
	settings, err := h.config.Preset(name)
	if err != nil {
		if errors.Is(err, config.ErrUnknownPreset) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("WARNING: preset %q is invalid: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "preset is misconfigured")
		return
	}

	if err := s.SetFormat(settings); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}
