package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/spread"
)

// NavigationHandler handles the wizard steps and the spread viewer
type NavigationHandler struct{}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// stepMismatchResponse explains why the photo step cannot be left
type stepMismatchResponse struct {
	Error string        `json:"error"`
	Step  session.Step  `json:"step"`
	Count session.Count `json:"count"`
}

// NextStep advances the wizard
func (h *NavigationHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	step, err := s.NextStep()
	if err != nil {
		if errors.Is(err, session.ErrCountMismatch) {
			respondJSON(w, http.StatusConflict, stepMismatchResponse{
				Error: err.Error(),
				Step:  step,
				Count: s.Count(),
			})
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// PrevStep goes back one wizard step
func (h *NavigationHandler) PrevStep(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	s.PrevStep()
	respondJSON(w, http.StatusOK, s.State())
}

// spreadResponse is the current spread with its sides resolved for the binding
type spreadResponse struct {
	spread.View
	Left  spread.Page `json:"left"`
	Right spread.Page `json:"right"`
	Total int         `json:"total"`
}

func newSpreadResponse(v spread.View, b spread.Binding, n int) spreadResponse {
	left, right := v.Sides(b)
	return spreadResponse{View: v, Left: left, Right: right, Total: spread.Total(n)}
}

// Spread returns the spread under the cursor
func (h *NavigationHandler) Spread(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}
	st := s.State()
	respondJSON(w, http.StatusOK, newSpreadResponse(st.Spread, st.Settings.Binding, len(st.Entries)))
}

// PressSpread applies the left or right control
func (h *NavigationHandler) PressSpread(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	ctrl, err := spread.ParseControl(chi.URLParam(r, "control"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.PressSpread(ctrl)
	st := s.State()
	respondJSON(w, http.StatusOK, newSpreadResponse(st.Spread, st.Settings.Binding, len(st.Entries)))
}
