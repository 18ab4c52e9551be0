package router

import (
	"net/http"

	"github.com/enat-pos/api/internal/config"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/handler"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/printing"
	"github.com/enat-pos/api/internal/service"
	"github.com/enat-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Store           *database.Queries
	OrderService    *service.OrderService
	CategoryService *service.CategoryService
	Hub             *ws.Hub
	Printer         *printing.Agent
}

// New assembles the full route tree.
//
// Three tiers: open endpoints (login, health, websocket), guest endpoints
// behind the maintenance gate, and staff endpoints behind JWT auth with
// per-route capability gates inside each handler.
func New(d Deps) http.Handler {
	orders := handler.NewOrderHandler(d.OrderService, d.Store, d.Hub)
	menu := handler.NewMenuHandler(d.Store)
	categories := handler.NewCategoryHandler(d.CategoryService)
	waiterCalls := handler.NewWaiterCallHandler(d.Store, d.Hub)
	settings := handler.NewSettingsHandler(d.Store, d.Hub)
	authH := handler.NewAuthHandler(d.Store, d.Config.JWTSecret)
	users := handler.NewUserHandler(d.Store)
	expenses := handler.NewExpenseHandler(d.Store)
	logs := handler.NewLogHandler(d.Store)
	receipts := handler.NewReceiptHandler(d.Store, d.Printer)

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, w, r)
	})

	// Login stays outside the maintenance gate: staff need a token to get
	// past it in the first place.
	r.Route("/api/auth", authH.RegisterRoutes)

	// Guest surface. The gate lets staff tokens through during maintenance.
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaintenanceGate(d.Store, d.Config.JWTSecret))
		r.Route("/api/menu", menu.RegisterPublicRoutes)
		r.Route("/api/categories", categories.RegisterPublicRoutes)
		r.Route("/api/settings", settings.RegisterPublicRoutes)
		r.Route("/api/orders", orders.RegisterPublicRoutes)
		r.Route("/api/waiter-calls", waiterCalls.RegisterPublicRoutes)
	})

	// Staff surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Config.JWTSecret))
		r.Route("/api/staff", func(r chi.Router) {
			r.Route("/orders", orders.RegisterRoutes)
			r.Route("/menu", menu.RegisterRoutes)
			r.Route("/categories", categories.RegisterRoutes)
			r.Route("/waiter-calls", waiterCalls.RegisterRoutes)
			r.Route("/settings", settings.RegisterRoutes)
			r.Route("/users", users.RegisterRoutes)
			r.Route("/expenses", expenses.RegisterRoutes)
			r.Route("/logs", logs.RegisterRoutes)
			receipts.RegisterRoutes(r)
		})
	})

	return r
}
