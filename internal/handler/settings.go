package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/yatai-pos/api/internal/database"
)

// SettingStore defines the database methods needed by settings handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingStore interface {
	EnsureSetting(ctx context.Context) (database.Setting, error)
	UpdateSetting(ctx context.Context, arg database.UpdateSettingParams) (database.Setting, error)
}

// SettingHandler handles the singleton stall configuration.
type SettingHandler struct {
	store SettingStore
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(store SettingStore) *SettingHandler {
	return &SettingHandler{store: store}
}

// RegisterPublicRoutes registers the read endpoint.
func (h *SettingHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// RegisterProtectedRoutes registers the write endpoint, behind auth.
func (h *SettingHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/", h.Update)
}

// --- Request / Response types ---

// Absent fields are left untouched; the update is a read-modify-write
// over the current row.
type updateSettingRequest struct {
	MaxTicketNumber *int32                 `json:"max_ticket_number"`
	PaymentMethods  *[]string              `json:"payment_methods"`
	Customizations  *[]customOptionPayload `json:"customizations"`
}

type settingResponse struct {
	MaxTicketNumber int32                 `json:"max_ticket_number"`
	PaymentMethods  []string              `json:"payment_methods"`
	Customizations  []customOptionPayload `json:"customizations"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func toSettingResponse(s database.Setting) settingResponse {
	opts := make([]customOptionPayload, len(s.Customizations))
	for i, c := range s.Customizations {
		opts[i] = customOptionPayload{Name: c.Name, Price: c.Price.StringFixed(2)}
	}
	return settingResponse{
		MaxTicketNumber: s.MaxTicketNumber,
		PaymentMethods:  s.PaymentMethods,
		Customizations:  opts,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// --- Handlers ---

// Get returns the stall configuration, creating it with defaults on
// first read.
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.store.EnsureSetting(r.Context())
	if err != nil {
		log.Printf("ERROR: ensure setting: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}

// Update applies a partial configuration change.
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.EnsureSetting(r.Context())
	if err != nil {
		log.Printf("ERROR: ensure setting: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params := database.UpdateSettingParams{
		MaxTicketNumber: current.MaxTicketNumber,
		PaymentMethods:  current.PaymentMethods,
		Customizations:  current.Customizations,
	}

	if req.MaxTicketNumber != nil {
		if *req.MaxTicketNumber <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_ticket_number must be > 0"})
			return
		}
		params.MaxTicketNumber = *req.MaxTicketNumber
	}
	if req.PaymentMethods != nil {
		params.PaymentMethods = *req.PaymentMethods
	}
	if req.Customizations != nil {
		opts := make([]database.CustomOption, len(*req.Customizations))
		for i, c := range *req.Customizations {
			if c.Name == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customization name is required"})
				return
			}
			price, err := decimal.NewFromString(c.Price)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customization price"})
				return
			}
			opts[i] = database.CustomOption{Name: c.Name, Price: price}
		}
		params.Customizations = opts
	}

	setting, err := h.store.UpdateSetting(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: update setting: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}
