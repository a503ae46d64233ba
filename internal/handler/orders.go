package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/ws"
)

// OrderStore defines the database methods needed by order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
}

// Broadcaster pushes events to connected kitchen displays.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order listing and creation.
type OrderHandler struct {
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// --- Request / Response types ---

type customOptionPayload struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type orderItemRequest struct {
	ProductName     string                `json:"product_name"`
	Quantity        int32                 `json:"quantity"`
	Amount          string                `json:"amount"`
	Detail          string                `json:"detail"`
	SelectedOptions []customOptionPayload `json:"selected_options"`
}

type createOrderRequest struct {
	TicketNumber  string             `json:"ticket_number"`
	Items         []orderItemRequest `json:"items"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Note          string             `json:"note"`
}

type orderItemResponse struct {
	ProductName     string                `json:"product_name"`
	Quantity        int32                 `json:"quantity"`
	Amount          string                `json:"amount"`
	Detail          string                `json:"detail,omitempty"`
	SelectedOptions []customOptionPayload `json:"selected_options,omitempty"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TicketNumber  string              `json:"ticket_number"`
	Items         []orderItemResponse `json:"items"`
	TotalAmount   string              `json:"total_amount"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Note          string              `json:"note"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type createOrderResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

func toOrderResponse(o database.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		opts := make([]customOptionPayload, len(it.SelectedOptions))
		for j, opt := range it.SelectedOptions {
			opts[j] = customOptionPayload{Name: opt.Name, Price: opt.Price.StringFixed(2)}
		}
		if len(opts) == 0 {
			opts = nil
		}
		items[i] = orderItemResponse{
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			Amount:          it.Amount.StringFixed(2),
			Detail:          it.Detail,
			SelectedOptions: opts,
		}
	}
	return orderResponse{
		ID:            o.ID,
		TicketNumber:  o.TicketNumber,
		Items:         items,
		TotalAmount:   numericToString(o.TotalAmount),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// --- Handlers ---

// List returns every order, newest first. The kitchen and history screens
// poll this endpoint.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create records a new order. Line amounts arrive pre-computed from the
// register; the order total is recomputed server-side from the lines.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TicketNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticket_number is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items must not be empty"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	status := database.OrderStatusActive
	if req.Status != "" {
		status = database.OrderStatus(req.Status)
		if !status.IsValid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
	}

	items := make([]database.OrderItem, len(req.Items))
	total := decimal.Zero
	for i, it := range req.Items {
		if it.ProductName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_name is required"})
			return
		}
		if it.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
			return
		}

		amount, err := decimal.NewFromString(it.Amount)
		if err != nil || amount.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
			return
		}

		opts := make([]database.CustomOption, len(it.SelectedOptions))
		for j, opt := range it.SelectedOptions {
			price, err := decimal.NewFromString(opt.Price)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option price"})
				return
			}
			opts[j] = database.CustomOption{Name: opt.Name, Price: price}
		}
		if len(opts) == 0 {
			opts = nil
		}

		items[i] = database.OrderItem{
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			Amount:          amount,
			Detail:          it.Detail,
			SelectedOptions: opts,
		}
		total = total.Add(amount)
	}

	var totalAmount pgtype.Numeric
	if err := totalAmount.Scan(total.String()); err != nil {
		log.Printf("ERROR: convert total amount: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	order, err := h.store.CreateOrder(r.Context(), database.CreateOrderParams{
		TicketNumber:  req.TicketNumber,
		Items:         items,
		TotalAmount:   totalAmount,
		Status:        status,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	})
	if err != nil {
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	broadcastEvent(h.hub, ws.EventOrderCreated, resp)

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message: "order created",
		Order:   resp,
	})
}

func broadcastEvent(hub Broadcaster, eventType string, payload interface{}) {
	if hub == nil {
		return
	}
	event, err := ws.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("ERROR: build ws event: %v", err)
		return
	}
	hub.Broadcast(event)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}
