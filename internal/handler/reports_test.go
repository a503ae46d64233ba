package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/handler"
)

// --- Mock store ---

type mockReportStore struct {
	orders   []database.Order
	gotRange database.ListSalesOrdersByRangeParams
}

func (m *mockReportStore) ListSalesOrdersByRange(_ context.Context, arg database.ListSalesOrdersByRangeParams) ([]database.Order, error) {
	m.gotRange = arg
	return m.orders, nil
}

// --- Helpers ---

var jst = time.FixedZone("JST", 9*60*60)

func setupReportRouter(store *mockReportStore) *chi.Mux {
	h := handler.NewReportHandler(store, jst)
	r := chi.NewRouter()
	r.Route("/report", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestReport_MissingDate(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})

	rr := doRequest(t, router, "GET", "/report", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	resp := decodeResponse(t, rr)
	if resp["error"] != "date is required" {
		t.Errorf("error: got %v, want 'date is required'", resp["error"])
	}
}

func TestReport_InvalidDate(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})

	rr := doRequest(t, router, "GET", "/report?date=31-08-2026", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestReport_LocalDayBounds(t *testing.T) {
	store := &mockReportStore{}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/report?date=2026-08-31", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	wantStart := time.Date(2026, 8, 31, 0, 0, 0, 0, jst)
	if !store.gotRange.StartDate.Equal(wantStart) {
		t.Errorf("start: got %v, want %v", store.gotRange.StartDate, wantStart)
	}
	if !store.gotRange.EndDate.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("end: got %v, want %v", store.gotRange.EndDate, wantStart.AddDate(0, 0, 1))
	}
}

func TestReport_EmptyDay(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})

	rr := doRequest(t, router, "GET", "/report?date=2026-08-31", nil)

	resp := decodeResponse(t, rr)
	if resp["total_revenue"] != "0.00" {
		t.Errorf("total_revenue: got %v, want '0.00'", resp["total_revenue"])
	}
	if resp["order_count"] != float64(0) {
		t.Errorf("order_count: got %v, want 0", resp["order_count"])
	}
	orders := resp["orders"].([]interface{})
	if len(orders) != 0 {
		t.Errorf("orders: got %d entries, want 0", len(orders))
	}
}

func TestReport_Aggregates(t *testing.T) {
	noon := time.Date(2026, 8, 31, 12, 15, 0, 0, jst)
	store := &mockReportStore{
		orders: []database.Order{
			{
				ID:           uuid.New(),
				TicketNumber: "1",
				Items: []database.OrderItem{
					testItem("ブレンドコーヒー", 2, "900"),
				},
				TotalAmount:   testNumeric("900"),
				Status:        database.OrderStatusCompleted,
				PaymentMethod: "現金",
				CreatedAt:     noon,
			},
			{
				ID:           uuid.New(),
				TicketNumber: "2",
				Items: []database.OrderItem{
					testItem("チーズケーキ", 1, "500"),
				},
				TotalAmount:   testNumeric("500"),
				Status:        database.OrderStatusActive,
				PaymentMethod: "PayPay",
				CreatedAt:     noon.Add(30 * time.Minute),
			},
		},
	}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/report?date=2026-08-31", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["date"] != "2026-08-31" {
		t.Errorf("date: got %v, want '2026-08-31'", resp["date"])
	}
	if resp["total_revenue"] != "1400.00" {
		t.Errorf("total_revenue: got %v, want '1400.00'", resp["total_revenue"])
	}
	if resp["order_count"] != float64(2) {
		t.Errorf("order_count: got %v, want 2", resp["order_count"])
	}
	if resp["average_order_value"] != "700.00" {
		t.Errorf("average_order_value: got %v, want '700.00'", resp["average_order_value"])
	}

	productSales := resp["product_sales"].([]interface{})
	if len(productSales) != 2 {
		t.Fatalf("product_sales: got %d entries, want 2", len(productSales))
	}
	top := productSales[0].(map[string]interface{})
	if top["product_name"] != "ブレンドコーヒー" {
		t.Errorf("top product: got %v, want 'ブレンドコーヒー'", top["product_name"])
	}
	if top["quantity_sold"] != float64(2) {
		t.Errorf("quantity_sold: got %v, want 2", top["quantity_sold"])
	}

	// Both orders landed in the noon bucket
	hourly := resp["hourly_sales"].([]interface{})
	if len(hourly) != 24 {
		t.Fatalf("hourly_sales: got %d entries, want 24", len(hourly))
	}
	noonBucket := hourly[12].(map[string]interface{})
	if noonBucket["order_count"] != float64(2) {
		t.Errorf("noon bucket order_count: got %v, want 2", noonBucket["order_count"])
	}

	orders := resp["orders"].([]interface{})
	if len(orders) != 2 {
		t.Errorf("orders: got %d entries, want 2", len(orders))
	}
}
