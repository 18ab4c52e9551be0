package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WaiterCallStore defines the database methods needed by waiter call handlers.
type WaiterCallStore interface {
	CreateWaiterCall(ctx context.Context, arg database.CreateWaiterCallParams) (database.WaiterCall, error)
	ResolveWaiterCall(ctx context.Context, id uuid.UUID) (database.WaiterCall, error)
	ListPendingWaiterCalls(ctx context.Context) ([]database.WaiterCall, error)
	ListWaiterCalls(ctx context.Context) ([]database.WaiterCall, error)
}

// WaiterCallHandler handles waiter call endpoints.
type WaiterCallHandler struct {
	store WaiterCallStore
	hub   Broadcaster
}

// NewWaiterCallHandler creates a new WaiterCallHandler.
func NewWaiterCallHandler(store WaiterCallStore, hub Broadcaster) *WaiterCallHandler {
	return &WaiterCallHandler{store: store, hub: orBroadcaster(hub)}
}

// RegisterPublicRoutes registers the guest-facing call button endpoint.
func (h *WaiterCallHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// RegisterRoutes registers staff endpoints.
func (h *WaiterCallHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.ActionResolveWaiterCall)).Get("/", h.ListPending)
	r.With(middleware.RequireCapability(auth.ActionViewWaiterHistory)).Get("/history", h.ListAll)
	r.With(middleware.RequireCapability(auth.ActionResolveWaiterCall)).Patch("/{id}/resolve", h.Resolve)
}

// --- Request / Response types ---

type createWaiterCallRequest struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
}

type waiterCallResponse struct {
	ID         uuid.UUID  `json:"id"`
	TableID    string     `json:"table_id"`
	TableName  string     `json:"table_name"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

// --- Handlers ---

// Create handles POST /waiter-calls. Repeated presses from the same table all
// enqueue; staff resolve each one.
func (h *WaiterCallHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWaiterCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_id is required"})
		return
	}

	tableName := req.TableName
	if tableName == "" {
		tableName = "Table " + req.TableID
	}

	call, err := h.store.CreateWaiterCall(r.Context(), database.CreateWaiterCallParams{
		TableID:   req.TableID,
		TableName: tableName,
	})
	if err != nil {
		log.Printf("ERROR: create waiter call: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toWaiterCallResponse(call)
	h.hub.Broadcast(ws.EventWaiterCalled, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// ListPending handles GET /waiter-calls: the open queue, oldest first.
func (h *WaiterCallHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	calls, err := h.store.ListPendingWaiterCalls(r.Context())
	if err != nil {
		log.Printf("ERROR: list pending waiter calls: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toWaiterCallResponses(calls))
}

// ListAll handles GET /waiter-calls/history, resolved entries included.
func (h *WaiterCallHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	calls, err := h.store.ListWaiterCalls(r.Context())
	if err != nil {
		log.Printf("ERROR: list waiter calls: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toWaiterCallResponses(calls))
}

// Resolve handles PATCH /waiter-calls/{id}/resolve. Resolving an already
// resolved call is a 404: the pending entry no longer exists.
func (h *WaiterCallHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter call ID"})
		return
	}

	call, err := h.store.ResolveWaiterCall(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "pending waiter call not found"})
			return
		}
		log.Printf("ERROR: resolve waiter call: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toWaiterCallResponse(call)
	h.hub.Broadcast(ws.EventWaiterResolved, resp)
	writeJSON(w, http.StatusOK, resp)
}

func toWaiterCallResponse(c database.WaiterCall) waiterCallResponse {
	resp := waiterCallResponse{
		ID:        c.ID,
		TableID:   c.TableID,
		TableName: c.TableName,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if c.ResolvedAt.Valid {
		resp.ResolvedAt = &c.ResolvedAt.Time
	}
	return resp
}

func toWaiterCallResponses(calls []database.WaiterCall) []waiterCallResponse {
	resp := make([]waiterCallResponse, len(calls))
	for i, c := range calls {
		resp[i] = toWaiterCallResponse(c)
	}
	return resp
}
