package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/handler"
	"github.com/yatai-pos/api/internal/ws"
)

// --- Mock store ---

type mockTicketStore struct {
	active  []string
	last    string
	noLast  bool
	setting database.Setting

	byIDCalls     []database.UpdateOrderStatusParams
	byTicketCalls []database.UpdateOrdersStatusByTicketParams
	affected      int64
}

func newMockTicketStore() *mockTicketStore {
	return &mockTicketStore{
		noLast: true,
		setting: database.Setting{
			Key:             database.SettingKey,
			MaxTicketNumber: database.DefaultMaxTicketNumber,
			PaymentMethods:  database.DefaultPaymentMethods,
			Customizations:  database.DefaultCustomizations,
		},
		affected: 1,
	}
}

func (m *mockTicketStore) ListActiveTicketNumbers(_ context.Context) ([]string, error) {
	return m.active, nil
}

func (m *mockTicketStore) GetLastTicketNumber(_ context.Context) (string, error) {
	if m.noLast {
		return "", pgx.ErrNoRows
	}
	return m.last, nil
}

func (m *mockTicketStore) EnsureSetting(_ context.Context) (database.Setting, error) {
	return m.setting, nil
}

func (m *mockTicketStore) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (int64, error) {
	m.byIDCalls = append(m.byIDCalls, arg)
	return m.affected, nil
}

func (m *mockTicketStore) UpdateOrdersStatusByTicket(_ context.Context, arg database.UpdateOrdersStatusByTicketParams) (int64, error) {
	m.byTicketCalls = append(m.byTicketCalls, arg)
	return m.affected, nil
}

// --- Helpers ---

func setupTicketRouter(store *mockTicketStore, hub *mockBroadcaster) *chi.Mux {
	h := handler.NewTicketHandler(store, hub)
	r := chi.NewRouter()
	r.Route("/tickets", h.RegisterRoutes)
	return r
}

// --- Get tests ---

func TestTicketGet_FreshStall(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/tickets", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["last_ticket_number"] != float64(0) {
		t.Errorf("last_ticket_number: got %v, want 0", resp["last_ticket_number"])
	}
	if resp["next_ticket"] != float64(1) {
		t.Errorf("next_ticket: got %v, want 1", resp["next_ticket"])
	}
	if resp["exhausted"] != false {
		t.Errorf("exhausted: got %v, want false", resp["exhausted"])
	}
}

func TestTicketGet_SkipsOccupied(t *testing.T) {
	store := newMockTicketStore()
	store.active = []string{"4", "5"}
	store.noLast = false
	store.last = "3"
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/tickets", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rr)
	if resp["next_ticket"] != float64(6) {
		t.Errorf("next_ticket: got %v, want 6", resp["next_ticket"])
	}
}

func TestTicketGet_WrapsAroundCeiling(t *testing.T) {
	store := newMockTicketStore()
	store.setting.MaxTicketNumber = 5
	store.active = []string{"5"}
	store.noLast = false
	store.last = "5"
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/tickets", nil)

	resp := decodeResponse(t, rr)
	if resp["next_ticket"] != float64(1) {
		t.Errorf("next_ticket: got %v, want 1 (wrapped)", resp["next_ticket"])
	}
}

func TestTicketGet_Exhausted(t *testing.T) {
	store := newMockTicketStore()
	store.setting.MaxTicketNumber = 3
	store.active = []string{"1", "2", "3"}
	store.noLast = false
	store.last = "3"
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/tickets", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rr)
	if resp["exhausted"] != true {
		t.Errorf("exhausted: got %v, want true", resp["exhausted"])
	}
	if resp["next_ticket"] != float64(0) {
		t.Errorf("next_ticket: got %v, want 0", resp["next_ticket"])
	}
}

func TestTicketGet_IgnoresNonNumericTickets(t *testing.T) {
	store := newMockTicketStore()
	store.active = []string{"1", "abc", "2"}
	store.noLast = false
	store.last = "xyz"
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/tickets", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	active := resp["active_tickets"].([]interface{})
	if len(active) != 2 {
		t.Errorf("active_tickets: got %d entries, want 2", len(active))
	}
	// Non-numeric last ticket counts as never having issued one
	if resp["last_ticket_number"] != float64(0) {
		t.Errorf("last_ticket_number: got %v, want 0", resp["last_ticket_number"])
	}
}

// --- Update tests ---

func TestTicketUpdate_BulkComplete(t *testing.T) {
	store := newMockTicketStore()
	store.affected = 2
	hub := &mockBroadcaster{}
	router := setupTicketRouter(store, hub)

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"ticket_number": "7",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if len(store.byTicketCalls) != 1 {
		t.Fatalf("expected 1 bulk update call, got %d", len(store.byTicketCalls))
	}
	call := store.byTicketCalls[0]
	if call.TicketNumber != "7" {
		t.Errorf("ticket: got %s, want 7", call.TicketNumber)
	}
	// Status defaults to completed
	if call.Status != database.OrderStatusCompleted {
		t.Errorf("status: got %s, want completed", call.Status)
	}

	resp := decodeResponse(t, rr)
	if resp["updated_count"] != float64(2) {
		t.Errorf("updated_count: got %v, want 2", resp["updated_count"])
	}

	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderStatusUpdated {
		t.Errorf("expected one %s event, got %+v", ws.EventOrderStatusUpdated, hub.events)
	}
}

func TestTicketUpdate_ByOrderID(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})
	orderID := uuid.New()

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"ticket_number": "7",
		"status":        "active",
		"order_id":      orderID.String(),
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if len(store.byIDCalls) != 1 {
		t.Fatalf("expected 1 by-id update call, got %d", len(store.byIDCalls))
	}
	if len(store.byTicketCalls) != 0 {
		t.Fatalf("expected no bulk calls, got %d", len(store.byTicketCalls))
	}
	call := store.byIDCalls[0]
	if call.ID != orderID {
		t.Errorf("order id: got %s, want %s", call.ID, orderID)
	}
	if call.Status != database.OrderStatusActive {
		t.Errorf("status: got %s, want active", call.Status)
	}
}

func TestTicketUpdate_NoMatchStillOK(t *testing.T) {
	store := newMockTicketStore()
	store.affected = 0
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"ticket_number": "99",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["updated_count"] != float64(0) {
		t.Errorf("updated_count: got %v, want 0", resp["updated_count"])
	}
}

func TestTicketUpdate_MissingTicketNumber(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"status": "completed",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTicketUpdate_InvalidStatus(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"ticket_number": "7",
		"status":        "done",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTicketUpdate_InvalidOrderID(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "PUT", "/tickets", map[string]interface{}{
		"ticket_number": "7",
		"order_id":      "not-a-uuid",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTicketUpdate_InvalidBody(t *testing.T) {
	store := newMockTicketStore()
	router := setupTicketRouter(store, &mockBroadcaster{})

	rr := doRequest(t, router, "PUT", "/tickets", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
