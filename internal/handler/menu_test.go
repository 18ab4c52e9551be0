package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/handler"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type mockMenuStore struct {
	items map[uuid.UUID]database.MenuItem
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{items: make(map[uuid.UUID]database.MenuItem)}
}

func (m *mockMenuStore) ListMenuItems(_ context.Context) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockMenuStore) GetMenuItem(_ context.Context, id uuid.UUID) (database.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	item := database.MenuItem{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		Price:       arg.Price,
		Category:    arg.Category,
		ImageUrl:    arg.ImageUrl,
		IsAvailable: arg.IsAvailable,
		Tags:        arg.Tags,
		Allergens:   arg.Allergens,
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.Name = arg.Name
	item.Description = arg.Description
	item.Price = arg.Price
	item.Category = arg.Category
	item.ImageUrl = arg.ImageUrl
	item.IsAvailable = arg.IsAvailable
	item.Tags = arg.Tags
	item.Allergens = arg.Allergens
	m.items[arg.ID] = item
	return item, nil
}

func (m *mockMenuStore) SetMenuItemAvailability(_ context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.IsAvailable = arg.IsAvailable
	m.items[arg.ID] = item
	return item, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.items[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.items, id)
	return id, nil
}

func newMenuRouter(t *testing.T, store *mockMenuStore, role string) (http.Handler, string) {
	t.Helper()
	h := handler.NewMenuHandler(store)
	r := chi.NewRouter()
	r.Route("/menu", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(testSecret))
			h.RegisterRoutes(r)
		})
	})
	return r, staffToken(t, role)
}

func seedMenuItem(store *mockMenuStore, name, price string) database.MenuItem {
	var n pgtype.Numeric
	_ = n.Scan(price)
	item, _ := store.CreateMenuItem(context.Background(), database.CreateMenuItemParams{
		Name:        name,
		Price:       n,
		Category:    "Mains",
		IsAvailable: true,
		Tags:        []string{},
		Allergens:   []string{},
	})
	return item
}

func TestCreateMenuItem(t *testing.T) {
	store := newMockMenuStore()
	router, token := newMenuRouter(t, store, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "POST", "/menu", token,
		[]byte(`{"name":"Doro Wat","price":"38","category":"Mains","tags":["spicy"]}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["price"] != "38.00" {
		t.Errorf("price: got %v, want 38.00", resp["price"])
	}
	if resp["is_available"] != true {
		t.Errorf("is_available: got %v, want true by default", resp["is_available"])
	}
}

func TestCreateMenuItem_Validation(t *testing.T) {
	store := newMockMenuStore()
	router, token := newMenuRouter(t, store, enum.UserRoleAdmin)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":"10","category":"Mains"}`},
		{"missing category", `{"name":"Tibs","price":"10"}`},
		{"negative price", `{"name":"Tibs","price":"-5","category":"Mains"}`},
		{"junk price", `{"name":"Tibs","price":"lots","category":"Mains"}`},
	}
	for _, tc := range cases {
		rr := doAuthed(t, router, "POST", "/menu", token, []byte(tc.body))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", tc.name, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestMenuWrites_RequireManageCapability(t *testing.T) {
	store := newMockMenuStore()
	router, chefToken := newMenuRouter(t, store, enum.UserRoleChef)

	rr := doAuthed(t, router, "POST", "/menu", chefToken,
		[]byte(`{"name":"Doro Wat","price":"38","category":"Mains"}`))
	if rr.Code != http.StatusForbidden {
		t.Errorf("chef create: status got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestSetAvailability_ChefAllowed(t *testing.T) {
	store := newMockMenuStore()
	item := seedMenuItem(store, "Kitfo", "42.00")
	router, chefToken := newMenuRouter(t, store, enum.UserRoleChef)

	rr := doAuthed(t, router, "PATCH", "/menu/"+item.ID.String()+"/availability", chefToken,
		[]byte(`{"is_available":false}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["is_available"] != false {
		t.Errorf("is_available: got %v, want false", resp["is_available"])
	}
}

func TestGetMenuItem_Public(t *testing.T) {
	store := newMockMenuStore()
	item := seedMenuItem(store, "Shiro Wat", "28.00")
	router, _ := newMenuRouter(t, store, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "GET", "/menu/"+item.ID.String(), "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "Shiro Wat" {
		t.Errorf("name: got %v", resp["name"])
	}
}

func TestDeleteMenuItem_NotFound(t *testing.T) {
	store := newMockMenuStore()
	router, token := newMenuRouter(t, store, enum.UserRoleAdmin)

	rr := doAuthed(t, router, "DELETE", "/menu/"+uuid.New().String(), token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
