// internal/assignments/handler.go
package assignments

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

// Routes mounts the assignment lifecycle and query endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/active", h.handleListActive)
	r.Get("/overdue", h.handleListOverdue)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/return", h.handleReturn)
	r.Post("/{id}/cancel", h.handleCancel)
	r.Post("/{id}/extend", h.handleExtend)
	return r
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.service.Create(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Return(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleExtend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DateDue string `json:"date_due"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Extend(r.Context(), chi.URLParam(r, "id"), req.DateDue); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(a)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		json.NewEncoder(w).Encode(h.service.ListByMember(r.Context(), memberID))
		return
	}
	json.NewEncoder(w).Encode(h.service.List(r.Context()))
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.ListActive(r.Context()))
}

func (h *Handler) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.ListOverdue(r.Context()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownMember),
		errors.Is(err, ErrUnknownImplement),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrDateNotLater):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
