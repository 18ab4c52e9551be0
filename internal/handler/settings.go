package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SettingsStore defines the database methods needed by settings handlers.
type SettingsStore interface {
	GetSettings(ctx context.Context) (database.SettingsView, error)
	UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.SettingsView, error)
	ToggleMaintenance(ctx context.Context, on bool) (database.SettingsView, error)
}

// SettingsHandler handles restaurant settings endpoints.
type SettingsHandler struct {
	store SettingsStore
	hub   Broadcaster
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore, hub Broadcaster) *SettingsHandler {
	return &SettingsHandler{store: store, hub: orBroadcaster(hub)}
}

// RegisterPublicRoutes registers the read endpoint every client polls.
func (h *SettingsHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// RegisterRoutes registers the write endpoints.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCapability(auth.ActionManageSettings))
		r.Put("/", h.Update)
		r.Post("/maintenance", h.ToggleMaintenance)
	})
}

// --- Request / Response types ---

// updateSettingsRequest is a partial update: omitted fields keep their stored
// values, so pointers distinguish "absent" from a zero value.
type updateSettingsRequest struct {
	IsMaintenanceMode  *bool   `json:"is_maintenance_mode"`
	MaintenanceMessage *string `json:"maintenance_message"`
	RestaurantName     *string `json:"restaurant_name"`
	RestaurantLocation *string `json:"restaurant_location"`
	RestaurantLogo     *string `json:"restaurant_logo"`
	TotalTables        *int32  `json:"total_tables"`
	Theme              *string `json:"theme"`
	TableSelectionMode *string `json:"table_selection_mode"`
	ReceiptPrinterName *string `json:"receipt_printer_name"`
}

type toggleMaintenanceRequest struct {
	On bool `json:"on"`
}

type settingsResponse struct {
	IsMaintenanceMode  bool   `json:"is_maintenance_mode"`
	MaintenanceMessage string `json:"maintenance_message"`
	RestaurantName     string `json:"restaurant_name"`
	RestaurantLocation string `json:"restaurant_location"`
	RestaurantLogo     string `json:"restaurant_logo"`
	TotalTables        int32  `json:"total_tables"`
	Theme              string `json:"theme"`
	TableSelectionMode string `json:"table_selection_mode"`
	ReceiptPrinterName string `json:"receipt_printer_name"`
}

// --- Handlers ---

// Get handles GET /settings. Always a complete snapshot: defaults are filled
// in at the store's read boundary.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: get settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// Update handles PUT /settings: a shallow merge of the provided fields.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TotalTables != nil && *req.TotalTables < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total_tables must be >= 1"})
		return
	}
	if req.Theme != nil && !isValidTheme(*req.Theme) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid theme"})
		return
	}
	if req.TableSelectionMode != nil && !isValidTableMode(*req.TableSelectionMode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_selection_mode"})
		return
	}

	settings, err := h.store.UpdateSettings(r.Context(), toUpdateParams(req))
	if err != nil {
		log.Printf("ERROR: update settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toSettingsResponse(settings)
	h.hub.Broadcast(ws.EventSettingsUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// ToggleMaintenance handles POST /settings/maintenance.
func (h *SettingsHandler) ToggleMaintenance(w http.ResponseWriter, r *http.Request) {
	var req toggleMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	settings, err := h.store.ToggleMaintenance(r.Context(), req.On)
	if err != nil {
		log.Printf("ERROR: toggle maintenance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toSettingsResponse(settings)
	h.hub.Broadcast(ws.EventSettingsUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func isValidTheme(s string) bool {
	switch s {
	case enum.ThemeSavanna, enum.ThemeMidnight, enum.ThemeGarden:
		return true
	}
	return false
}

func isValidTableMode(s string) bool {
	switch s {
	case enum.TableModeWheel, enum.TableModeGrid, enum.TableModeList:
		return true
	}
	return false
}

func toUpdateParams(req updateSettingsRequest) database.UpdateSettingsParams {
	var p database.UpdateSettingsParams
	if req.IsMaintenanceMode != nil {
		p.IsMaintenanceMode = pgtype.Bool{Bool: *req.IsMaintenanceMode, Valid: true}
	}
	if req.MaintenanceMessage != nil {
		p.MaintenanceMessage = pgtype.Text{String: *req.MaintenanceMessage, Valid: true}
	}
	if req.RestaurantName != nil {
		p.RestaurantName = pgtype.Text{String: *req.RestaurantName, Valid: true}
	}
	if req.RestaurantLocation != nil {
		p.RestaurantLocation = pgtype.Text{String: *req.RestaurantLocation, Valid: true}
	}
	if req.RestaurantLogo != nil {
		p.RestaurantLogo = pgtype.Text{String: *req.RestaurantLogo, Valid: true}
	}
	if req.TotalTables != nil {
		p.TotalTables = pgtype.Int4{Int32: *req.TotalTables, Valid: true}
	}
	if req.Theme != nil {
		p.Theme = pgtype.Text{String: *req.Theme, Valid: true}
	}
	if req.TableSelectionMode != nil {
		p.TableSelectionMode = pgtype.Text{String: *req.TableSelectionMode, Valid: true}
	}
	if req.ReceiptPrinterName != nil {
		p.ReceiptPrinterName = pgtype.Text{String: *req.ReceiptPrinterName, Valid: true}
	}
	return p
}

func toSettingsResponse(s database.SettingsView) settingsResponse {
	return settingsResponse{
		IsMaintenanceMode:  s.IsMaintenanceMode,
		MaintenanceMessage: s.MaintenanceMessage,
		RestaurantName:     s.RestaurantName,
		RestaurantLocation: s.RestaurantLocation,
		RestaurantLogo:     s.RestaurantLogo,
		TotalTables:        s.TotalTables,
		Theme:              s.Theme,
		TableSelectionMode: s.TableSelectionMode,
		ReceiptPrinterName: s.ReceiptPrinterName,
	}
}
