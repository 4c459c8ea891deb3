// internal/members/handler.go
package members

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the member registry endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleRegister)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleEdit)
	r.Delete("/{id}", h.handleRemove)
	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var m Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Register(r.Context(), m); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(m)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.List(r.Context()))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Edit(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
