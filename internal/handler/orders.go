package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/service"
	"github.com/enat-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Place(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderWithItems, error)
	UpdateItems(ctx context.Context, orderID uuid.UUID, items []service.OrderItemRequest) (*service.OrderWithItems, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderTable(ctx context.Context, arg database.UpdateOrderTableParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: orBroadcaster(hub)}
}

// RegisterPublicRoutes registers the guest-facing endpoint. Checkout is open
// to unauthenticated diners; the maintenance gate sits in front of it.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// RegisterRoutes registers staff endpoints on an authenticated subrouter.
// The status route has no capability gate of its own: the allowed transitions
// depend on the role, and the service owns that table.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.ActionViewOrders)).Get("/", h.List)
	r.With(middleware.RequireCapability(auth.ActionViewOrders)).Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.With(middleware.RequireCapability(auth.ActionEditOrderItems)).Put("/{id}/items", h.UpdateItems)
	r.With(middleware.RequireCapability(auth.ActionReassignTable)).Patch("/{id}/table", h.UpdateTable)
	r.With(middleware.RequireCapability(auth.ActionMarkOrderPaid)).Post("/{id}/pay", h.MarkPaid)
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableID       string             `json:"table_id"`
	TableName     string             `json:"table_name"`
	PaymentMethod string             `json:"payment_method"`
	Items         []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes"`
	Price      string `json:"price"`
}

type updateItemsRequest struct {
	Items []orderItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateTableRequest struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TableID       string              `json:"table_id"`
	TableName     string              `json:"table_name"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod string              `json:"payment_method"`
	Subtotal      string              `json:"subtotal"`
	Tax           string              `json:"tax"`
	ServiceFee    string              `json:"service_fee"`
	Total         string              `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
	ReadyAt       *time.Time          `json:"ready_at"`
	CompletedAt   *time.Time          `json:"completed_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Quantity   int32     `json:"quantity"`
	Notes      *string   `json:"notes"`
	Position   int32     `json:"position"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// Create handles POST /orders. Guests are anonymous; there is no auth here.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_id is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	result, err := h.svc.Place(r.Context(), service.PlaceOrderRequest{
		TableID:       req.TableID,
		TableName:     req.TableName,
		PaymentMethod: req.PaymentMethod,
		Items:         toServiceItems(req.Items),
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: place order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.hub.Broadcast(ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders with optional ?status= filter and pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PATCH /orders/{id}/status. The transition rules depend
// on the caller's role, so the claims feed the service call.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderClosed):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTransitionNotAllowed):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: update order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(*order, nil)
	h.hub.Broadcast(ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// UpdateItems handles PUT /orders/{id}/items: a full replace of the line-item
// sequence with totals recomputed server-side.
func (h *OrderHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.UpdateItems(r.Context(), orderID, toServiceItems(req.Items))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrOrderClosed):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case isOrderValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: update order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.hub.Broadcast(ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// UpdateTable handles PATCH /orders/{id}/table. PHONE is a valid target for
// phone-in orders.
func (h *OrderHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateTableRequest
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
		if req.TableID == enum.TablePhone {
			tableName = "Phone Order"
		} else {
			tableName = "Table " + req.TableID
		}
	}

	order, err := h.store.UpdateOrderTable(r.Context(), database.UpdateOrderTableParams{
		ID:        orderID,
		TableID:   req.TableID,
		TableName: tableName,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.hub.Broadcast(ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// MarkPaid handles POST /orders/{id}/pay. Idempotent: paying a paid order
// succeeds and changes nothing.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.MarkOrderPaid(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: mark order paid: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.hub.Broadcast(ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func toServiceItems(items []orderItemRequest) []service.OrderItemRequest {
	out := make([]service.OrderItemRequest, len(items))
	for i, item := range items {
		out[i] = service.OrderItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
			Price:      item.Price,
		}
	}
	return out
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrInvalidPrice) ||
		errors.Is(err, service.ErrTableRequired)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		TableName:     o.TableName,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      numericToString(o.Subtotal),
		Tax:           numericToString(o.Tax),
		ServiceFee:    numericToString(o.ServiceFee),
		Total:         numericToString(o.Total),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.ReadyAt.Valid {
		resp.ReadyAt = &o.ReadyAt.Time
	}
	if o.CompletedAt.Valid {
		resp.CompletedAt = &o.CompletedAt.Time
	}

	if items != nil {
		resp.Items = make([]orderItemResponse, len(items))
		for i, item := range items {
			resp.Items[i] = toOrderItemResponse(item)
		}
	}
	return resp
}

func toOrderItemResponse(item database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		Price:      numericToString(item.Price),
		Quantity:   item.Quantity,
		Position:   item.Position,
	}
	if item.Notes.Valid {
		resp.Notes = &item.Notes.String
	}
	return resp
}
