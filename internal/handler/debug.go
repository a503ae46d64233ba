package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DebugStore defines the database methods needed by debug handlers.
// Satisfied by *database.Queries.
type DebugStore interface {
	DeleteAllOrders(ctx context.Context) (int64, error)
}

// DebugHandler exposes development-only maintenance endpoints.
type DebugHandler struct {
	store DebugStore
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(store DebugStore) *DebugHandler {
	return &DebugHandler{store: store}
}

// RegisterRoutes registers debug endpoints on the given Chi router.
func (h *DebugHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/reset", h.Reset)
}

type resetResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// Reset wipes every order. Used between test days during development.
func (h *DebugHandler) Reset(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteAllOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: delete all orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	log.Printf("debug reset: deleted %d orders", deleted)
	writeJSON(w, http.StatusOK, resetResponse{
		Message:      "orders deleted",
		DeletedCount: deleted,
	})
}
