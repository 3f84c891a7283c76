package patient

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type CreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	MRN       string `json:"mrn"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		http.Error(w, "first_name and last_name are required", http.StatusBadRequest)
		return
	}

	p := &Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Sex:       req.Sex,
		MRN:       req.MRN,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		http.Error(w, "Failed to create patient: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list patients: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if patients == nil {
		patients = []Patient{}
	}
	writeJSON(w, patients)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "Invalid patient ID", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load patient: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "Invalid patient ID", http.StatusBadRequest)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	p := &Patient{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Sex:       req.Sex,
		MRN:       req.MRN,
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update patient: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "Invalid patient ID", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete patient: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/patients", h.Create)
	r.Get("/patients", h.List)
	r.Get("/patients/{patientID}", h.Get)
	r.Put("/patients/{patientID}", h.Update)
	r.Delete("/patients/{patientID}", h.Delete)
}
