package transcript

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes raw transcript text CRUD, mirroring what the interview
// engine writes on end. Useful for bulk import and for clinicians pulling
// the stored record directly.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type SaveRequest struct {
	Content string `json:"content"`
}

type ReadResponse struct {
	PatientID string `json:"patient_id"`
	Content   string `json:"content"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.store.Write(r.Context(), patientID, req.Content); err != nil {
		http.Error(w, "Failed to write transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, StatusResponse{Status: "ok", Detail: "transcript written"})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	content, err := h.store.Read(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Transcript not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to read transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, ReadResponse{PatientID: patientID, Content: content})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	if err := h.store.Delete(r.Context(), patientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Transcript not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, StatusResponse{Status: "ok", Detail: "deleted"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/interviews/{patientID}", h.Save)
	r.Get("/interviews/{patientID}", h.Get)
	r.Delete("/interviews/{patientID}", h.Delete)
}
