package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Reporter delivers an advisory report to the clinician channel.
type Reporter interface {
	SendAdvisoryReport(ctx context.Context, patientID string, suggestions []Suggestion) error
}

type Handler struct {
	svc      *Service
	reporter Reporter
}

func NewHandler(svc *Service, reporter Reporter) *Handler {
	return &Handler{svc: svc, reporter: reporter}
}

type AdviseRequest struct {
	MaxItems int `json:"max_items"`
}

type AdviseResponse struct {
	PatientID   string       `json:"patient_id"`
	Suggestions []Suggestion `json:"suggestions"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (h *Handler) Advise(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var req AdviseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	suggestions, err := h.svc.Advise(r.Context(), patientID, req.MaxItems)
	if err != nil {
		writeAdvisoryError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}

	writeJSON(w, AdviseResponse{PatientID: patientID, Suggestions: suggestions})
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	if h.reporter == nil {
		http.Error(w, "Report delivery is not configured", http.StatusServiceUnavailable)
		return
	}

	var req AdviseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	suggestions, err := h.svc.Advise(r.Context(), patientID, req.MaxItems)
	if err != nil {
		writeAdvisoryError(w, err)
		return
	}

	if err := h.reporter.SendAdvisoryReport(r.Context(), patientID, suggestions); err != nil {
		http.Error(w, "Report delivery failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, StatusResponse{Status: "ok", Detail: "report sent"})
}

func writeAdvisoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTranscriptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRetrievalTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, ErrRetrievalUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, ErrSynthesis):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/interviews/{patientID}/advisory", h.Advise)
	r.Post("/interviews/{patientID}/advisory/report", h.SendReport)
}
