package interview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PatientDirectory is the slice of the patient store the interview surface
// needs: existence only.
type PatientDirectory interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}

type Handler struct {
	engine   *Engine
	patients PatientDirectory
}

func NewHandler(engine *Engine, patients PatientDirectory) *Handler {
	return &Handler{engine: engine, patients: patients}
}

type StartRequest struct {
	ChiefComplaint string `json:"chief_complaint"`
	Context        string `json:"context"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type QuestionsResponse struct {
	PatientID string   `json:"patient_id"`
	Questions []string `json:"questions"`
	Done      bool     `json:"done"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var req StartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	if h.patients != nil {
		ok, err := h.patients.Exists(r.Context(), patientID)
		if err != nil {
			http.Error(w, "Patient lookup failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
	}

	questions, err := h.engine.Start(r.Context(), patientID, req.ChiefComplaint, req.Context)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, QuestionsResponse{PatientID: patientID, Questions: questions, Done: false})
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	questions, err := h.engine.Answer(r.Context(), patientID, req.Answer)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, QuestionsResponse{PatientID: patientID, Questions: questions, Done: len(questions) == 0})
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	tr, err := h.engine.End(r.Context(), patientID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, tr)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNoActiveSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrQuestionGeneration), errors.Is(err, ErrPersistence):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/interview-session/{patientID}/start", h.Start)
	r.Post("/interview-session/{patientID}/answer", h.Answer)
	r.Post("/interview-session/{patientID}/end", h.End)
}
