package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/ticket"
	"github.com/yatai-pos/api/internal/ws"
)

// TicketStore defines the database methods needed by ticket handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TicketStore interface {
	ListActiveTicketNumbers(ctx context.Context) ([]string, error)
	GetLastTicketNumber(ctx context.Context) (string, error)
	EnsureSetting(ctx context.Context) (database.Setting, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (int64, error)
	UpdateOrdersStatusByTicket(ctx context.Context, arg database.UpdateOrdersStatusByTicketParams) (int64, error)
}

// TicketHandler handles ticket-number state and status transitions.
type TicketHandler struct {
	store TicketStore
	hub   Broadcaster
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(store TicketStore, hub Broadcaster) *TicketHandler {
	return &TicketHandler{store: store, hub: hub}
}

// RegisterRoutes registers ticket endpoints on the given Chi router.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// --- Request / Response types ---

type ticketStateResponse struct {
	ActiveTickets    []int `json:"active_tickets"`
	LastTicketNumber int   `json:"last_ticket_number"`
	NextTicket       int   `json:"next_ticket"`
	Exhausted        bool  `json:"exhausted"`
}

type updateTicketRequest struct {
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	OrderID      string `json:"order_id"`
}

type updateTicketResponse struct {
	Message      string `json:"message"`
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	UpdatedCount int64  `json:"updated_count"`
}

// --- Handlers ---

// Get returns the ticket numbers currently checked out, the last issued
// number, and the next number the ring would hand out.
//
// Two registers polling concurrently can be offered the same next number;
// the duplicate resolves at the counter by calling the physical ticket.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawTickets, err := h.store.ListActiveTicketNumbers(r.Context())
	if err != nil {
		log.Printf("ERROR: list active tickets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Ticket numbers are stored as strings; anything non-numeric is a
	// legacy artifact and is ignored.
	active := make([]int, 0, len(rawTickets))
	for _, t := range rawTickets {
		n, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		active = append(active, n)
	}
	sort.Ints(active)

	last := 0
	lastRaw, err := h.store.GetLastTicketNumber(r.Context())
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get last ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err == nil {
		if n, convErr := strconv.Atoi(lastRaw); convErr == nil {
			last = n
		}
	}

	setting, err := h.store.EnsureSetting(r.Context())
	if err != nil {
		log.Printf("ERROR: ensure setting: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	next, ok := ticket.Next(active, last, int(setting.MaxTicketNumber))

	writeJSON(w, http.StatusOK, ticketStateResponse{
		ActiveTickets:    active,
		LastTicketNumber: last,
		NextTicket:       next,
		Exhausted:        !ok,
	})
}

// Update moves orders to a new status, either one order by id or every
// open order under a ticket number. Completed orders never change; a
// transition that matches nothing is still a 200 so the kitchen display
// can fire-and-forget.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TicketNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticket_number is required"})
		return
	}

	status := database.OrderStatusCompleted
	if req.Status != "" {
		status = database.OrderStatus(req.Status)
		if !status.IsValid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
	}

	var (
		affected int64
		err      error
	)
	if req.OrderID != "" {
		orderID, parseErr := uuid.Parse(req.OrderID)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
			return
		}
		affected, err = h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
			ID:     orderID,
			Status: status,
		})
	} else {
		affected, err = h.store.UpdateOrdersStatusByTicket(r.Context(), database.UpdateOrdersStatusByTicketParams{
			TicketNumber: req.TicketNumber,
			Status:       status,
		})
	}
	if err != nil {
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := updateTicketResponse{
		Message:      "status updated",
		TicketNumber: req.TicketNumber,
		Status:       string(status),
		UpdatedCount: affected,
	}
	broadcastEvent(h.hub, ws.EventOrderStatusUpdated, resp)

	writeJSON(w, http.StatusOK, resp)
}
