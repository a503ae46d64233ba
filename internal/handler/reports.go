package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/report"
)

// ReportStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	ListSalesOrdersByRange(ctx context.Context, arg database.ListSalesOrdersByRangeParams) ([]database.Order, error)
}

// ReportHandler handles the daily sales report.
type ReportHandler struct {
	store ReportStore
	loc   *time.Location
}

// NewReportHandler creates a new ReportHandler. loc defines where the
// business day starts and ends.
func NewReportHandler(store ReportStore, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{store: store, loc: loc}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Daily)
}

type dailyReportResponse struct {
	Date string `json:"date"`
	report.Summary
	Orders []orderResponse `json:"orders"`
}

// Daily aggregates one local calendar day of sales.
// Endpoint: GET /report?date=2006-01-02
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	start := day
	end := day.AddDate(0, 0, 1)

	orders, err := h.store.ListSalesOrdersByRange(r.Context(), database.ListSalesOrdersByRangeParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list sales orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	summary := report.Build(orders, h.loc)

	resp := dailyReportResponse{
		Date:    dateStr,
		Summary: summary,
		Orders:  make([]orderResponse, len(orders)),
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}
