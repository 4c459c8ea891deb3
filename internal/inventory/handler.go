// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the inventory endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleRegister)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/categories", h.handleCategories)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleEdit)
	r.Delete("/{id}", h.handleRemove)
	r.Post("/{id}/condition", h.handleMarkCondition)
	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var im Implement
	if err := json.NewDecoder(r.Body).Decode(&im); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Register(r.Context(), im); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(im)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	im, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(im)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		json.NewEncoder(w).Encode(h.service.ByCategory(r.Context(), category))
		return
	}
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

func (h *Handler) handleMarkCondition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Condition Condition `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.MarkCondition(r.Context(), chi.URLParam(r, "id"), req.Condition); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 3
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "threshold must be an integer", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}
	json.NewEncoder(w).Encode(h.service.LowStock(r.Context(), threshold))
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.Categories(r.Context()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrStockNegative), errors.Is(err, ErrInvalidCondition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
