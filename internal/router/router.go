package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yatai-pos/api/internal/config"
	"github.com/yatai-pos/api/internal/database"
	"github.com/yatai-pos/api/internal/handler"
	mw "github.com/yatai-pos/api/internal/middleware"
	"github.com/yatai-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// The ordering flow (orders, tickets, report) is open to the stall's
// registers; menu and settings mutations require a login token.
func New(cfg *config.Config, queries *database.Queries, hub *ws.Hub, loc *time.Location) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderHandler := handler.NewOrderHandler(queries, hub)
	r.Route("/orders", orderHandler.RegisterRoutes)

	ticketHandler := handler.NewTicketHandler(queries, hub)
	r.Route("/tickets", ticketHandler.RegisterRoutes)

	reportHandler := handler.NewReportHandler(queries, loc)
	r.Route("/report", reportHandler.RegisterRoutes)

	debugHandler := handler.NewDebugHandler(queries)
	r.Route("/debug", debugHandler.RegisterRoutes)

	// Menu and settings: reads are public, mutations require a login token
	productHandler := handler.NewProductHandler(queries)
	r.Route("/products", func(r chi.Router) {
		productHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			productHandler.RegisterProtectedRoutes(r)
		})
	})

	settingHandler := handler.NewSettingHandler(queries)
	r.Route("/settings", func(r chi.Router) {
		settingHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			settingHandler.RegisterProtectedRoutes(r)
		})
	})

	return r
}
