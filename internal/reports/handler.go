// internal/reports/handler.go
package reports

import (
	"encoding/json"
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

// Routes mounts the reporting endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/top-implements", h.handleTopImplements)
	r.Get("/top-members", h.handleTopMembers)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/overdue", h.handleOverdue)
	r.Get("/overdue.md", h.handleOverdueMarkdown)
	r.Get("/members/{id}/history", h.handleMemberHistory)
	return r
}

func (h *Handler) handleTopImplements(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.TopImplements(r.Context()))
}

func (h *Handler) handleTopMembers(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.TopMembers(r.Context()))
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

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.Overdue(r.Context()))
}

func (h *Handler) handleOverdueMarkdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := h.service.WriteOverdueMarkdown(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) handleMemberHistory(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.MemberHistory(r.Context(), chi.URLParam(r, "id")))
}
