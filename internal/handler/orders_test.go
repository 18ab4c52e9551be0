package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/handler"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/service"
	"github.com/enat-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mocks ---

type mockHub struct {
	events []string
}

func (m *mockHub) Broadcast(eventType string, payload any) {
	if m == nil {
		return
	}
	m.events = append(m.events, eventType)
}

type mockOrderService struct {
	placeFn        func(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderWithItems, error)
	updateItemsFn  func(ctx context.Context, orderID uuid.UUID, items []service.OrderItemRequest) (*service.OrderWithItems, error)
	updateStatusFn func(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error)
}

func (m *mockOrderService) Place(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderWithItems, error) {
	return m.placeFn(ctx, req)
}
func (m *mockOrderService) UpdateItems(ctx context.Context, orderID uuid.UUID, items []service.OrderItemRequest) (*service.OrderWithItems, error) {
	return m.updateItemsFn(ctx, orderID, items)
}
func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error) {
	return m.updateStatusFn(ctx, orderID, newStatus, role)
}

type mockOrderStore struct {
	orders map[uuid.UUID]database.Order
	items  map[uuid.UUID][]database.OrderItem
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders: make(map[uuid.UUID]database.Order),
		items:  make(map[uuid.UUID][]database.OrderItem),
	}
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	var out []database.Order
	for _, o := range m.orders {
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockOrderStore) UpdateOrderTable(_ context.Context, arg database.UpdateOrderTableParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.TableID = arg.TableID
	o.TableName = arg.TableName
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) MarkOrderPaid(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.PaymentStatus = enum.PaymentStatusPaid
	m.orders[id] = o
	return o, nil
}

// --- Helpers ---

func testOrder(status string) database.Order {
	var total pgtype.Numeric
	_ = total.Scan("99.00")
	return database.Order{
		ID:            uuid.New(),
		TableID:       "4",
		TableName:     "Table 4",
		Status:        status,
		PaymentStatus: enum.PaymentStatusUnpaid,
		PaymentMethod: enum.PaymentMethodCash,
		Total:         total,
	}
}

// staffToken mints a token for the role so capability gates and
// ClaimsFromContext behave the way they do in production.
func staffToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, uuid.New(), "staff", role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func staffRouter(t *testing.T, h *handler.OrderHandler, role string) (http.Handler, string) {
	t.Helper()
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		r.Route("/orders", h.RegisterRoutes)
	})
	return r, staffToken(t, role)
}

func doAuthed(t *testing.T, router http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Create (guest) ---

func TestCreateOrder_Success(t *testing.T) {
	hub := &mockHub{}
	order := testOrder(enum.OrderStatusPending)
	svc := &mockOrderService{
		placeFn: func(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderWithItems, error) {
			return &service.OrderWithItems{Order: order}, nil
		},
	}
	h := handler.NewOrderHandler(svc, newMockOrderStore(), hub)

	r := chi.NewRouter()
	r.Route("/orders", h.RegisterPublicRoutes)

	rr := postJSON(t, r, "/orders", map[string]any{
		"table_id":       "4",
		"payment_method": "CASH",
		"items": []map[string]any{
			{"menu_item_id": uuid.New().String(), "quantity": 2},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0] != ws.EventOrderCreated {
		t.Errorf("expected order.created broadcast, got %v", hub.events)
	}
}

func TestCreateOrder_ValidationError(t *testing.T) {
	svc := &mockOrderService{
		placeFn: func(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderWithItems, error) {
			return nil, service.ErrInvalidPaymentMethod
		},
	}
	h := handler.NewOrderHandler(svc, newMockOrderStore(), nil)

	r := chi.NewRouter()
	r.Route("/orders", h.RegisterPublicRoutes)

	rr := postJSON(t, r, "/orders", map[string]any{
		"table_id":       "4",
		"payment_method": "BARTER",
		"items": []map[string]any{
			{"menu_item_id": uuid.New().String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	h := handler.NewOrderHandler(&mockOrderService{}, newMockOrderStore(), nil)

	r := chi.NewRouter()
	r.Route("/orders", h.RegisterPublicRoutes)

	rr := postJSON(t, r, "/orders", map[string]any{
		"table_id":       "4",
		"payment_method": "CASH",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Status updates ---

func TestUpdateOrderStatus_ForwardsRole(t *testing.T) {
	order := testOrder(enum.OrderStatusPreparing)
	var gotRole string
	svc := &mockOrderService{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error) {
			gotRole = role
			o := order
			o.Status = newStatus
			return &o, nil
		},
	}
	hub := &mockHub{}
	h := handler.NewOrderHandler(svc, newMockOrderStore(), hub)
	router, token := staffRouter(t, h, enum.UserRoleChef)

	rr := doAuthed(t, router, "PATCH", "/orders/"+order.ID.String()+"/status", token,
		[]byte(`{"status":"READY"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if gotRole != enum.UserRoleChef {
		t.Errorf("role passed to service: got %q, want CHEF", gotRole)
	}
	if len(hub.events) != 1 || hub.events[0] != ws.EventOrderUpdated {
		t.Errorf("expected order.updated broadcast, got %v", hub.events)
	}
}

func TestUpdateOrderStatus_TransitionDenied(t *testing.T) {
	svc := &mockOrderService{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error) {
			return nil, service.ErrTransitionNotAllowed
		},
	}
	h := handler.NewOrderHandler(svc, newMockOrderStore(), nil)
	router, token := staffRouter(t, h, enum.UserRoleChef)

	rr := doAuthed(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", token,
		[]byte(`{"status":"COMPLETED"}`))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestUpdateOrderStatus_TerminalConflict(t *testing.T) {
	svc := &mockOrderService{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error) {
			return nil, service.ErrOrderClosed
		},
	}
	h := handler.NewOrderHandler(svc, newMockOrderStore(), nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", token,
		[]byte(`{"status":"PENDING"}`))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUpdateOrderStatus_Unauthenticated(t *testing.T) {
	h := handler.NewOrderHandler(&mockOrderService{}, newMockOrderStore(), nil)
	router, _ := staffRouter(t, h, enum.UserRoleAdmin)

	req := httptest.NewRequest("PATCH", "/orders/"+uuid.New().String()+"/status",
		bytes.NewReader([]byte(`{"status":"READY"}`)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Table and payment ---

func TestUpdateOrderTable_PhoneSentinel(t *testing.T) {
	store := newMockOrderStore()
	order := testOrder(enum.OrderStatusPending)
	store.orders[order.ID] = order

	h := handler.NewOrderHandler(&mockOrderService{}, store, nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "PATCH", "/orders/"+order.ID.String()+"/table", token,
		[]byte(`{"table_id":"PHONE"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["table_id"] != "PHONE" {
		t.Errorf("table_id: got %v, want PHONE", resp["table_id"])
	}
	if resp["table_name"] != "Phone Order" {
		t.Errorf("table_name: got %v, want Phone Order", resp["table_name"])
	}
}

func TestMarkOrderPaid_Idempotent(t *testing.T) {
	store := newMockOrderStore()
	order := testOrder(enum.OrderStatusReady)
	store.orders[order.ID] = order

	h := handler.NewOrderHandler(&mockOrderService{}, store, nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	for i := 0; i < 2; i++ {
		rr := doAuthed(t, router, "POST", "/orders/"+order.ID.String()+"/pay", token, []byte(`{}`))
		if rr.Code != http.StatusOK {
			t.Fatalf("attempt %d: status: got %d, want %d", i+1, rr.Code, http.StatusOK)
		}
		resp := decodeResponse(t, rr)
		if resp["payment_status"] != enum.PaymentStatusPaid {
			t.Errorf("attempt %d: payment_status: got %v, want PAID", i+1, resp["payment_status"])
		}
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	h := handler.NewOrderHandler(&mockOrderService{}, newMockOrderStore(), nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "GET", "/orders/"+uuid.New().String(), token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListOrders_StatusFilter(t *testing.T) {
	store := newMockOrderStore()
	pending := testOrder(enum.OrderStatusPending)
	ready := testOrder(enum.OrderStatusReady)
	store.orders[pending.ID] = pending
	store.orders[ready.ID] = ready

	h := handler.NewOrderHandler(&mockOrderService{}, store, nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "GET", "/orders?status=READY", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	orders, ok := resp["orders"].([]interface{})
	if !ok {
		t.Fatalf("expected orders array, got %T", resp["orders"])
	}
	if len(orders) != 1 {
		t.Errorf("orders: got %d, want 1", len(orders))
	}
}

func TestListOrders_BadStatusFilter(t *testing.T) {
	h := handler.NewOrderHandler(&mockOrderService{}, newMockOrderStore(), nil)
	router, token := staffRouter(t, h, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "GET", "/orders?status=BURNED", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
