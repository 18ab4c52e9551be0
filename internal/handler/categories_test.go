package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/handler"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type mockCategoryService struct {
	listFn   func(ctx context.Context) ([]database.Category, error)
	addFn    func(ctx context.Context, name string) (*database.Category, error)
	renameFn func(ctx context.Context, oldName, newName string) (*service.RenameResult, error)
	removeFn func(ctx context.Context, name string) error
}

func (m *mockCategoryService) List(ctx context.Context) ([]database.Category, error) {
	return m.listFn(ctx)
}
func (m *mockCategoryService) Add(ctx context.Context, name string) (*database.Category, error) {
	return m.addFn(ctx, name)
}
func (m *mockCategoryService) Rename(ctx context.Context, oldName, newName string) (*service.RenameResult, error) {
	return m.renameFn(ctx, oldName, newName)
}
func (m *mockCategoryService) Remove(ctx context.Context, name string) error {
	return m.removeFn(ctx, name)
}

func newCategoryRouter(t *testing.T, svc *mockCategoryService) (http.Handler, string) {
	t.Helper()
	h := handler.NewCategoryHandler(svc)
	r := chi.NewRouter()
	r.Route("/categories", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(testSecret))
			h.RegisterRoutes(r)
		})
	})
	return r, staffToken(t, enum.UserRoleAdmin)
}

func TestCreateCategory(t *testing.T) {
	svc := &mockCategoryService{
		addFn: func(ctx context.Context, name string) (*database.Category, error) {
			return &database.Category{ID: uuid.New(), Name: name, CreatedAt: time.Now()}, nil
		},
	}
	router, token := newCategoryRouter(t, svc)

	rr := doAuthed(t, router, "POST", "/categories", token, []byte(`{"name":"Desserts"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "Desserts" {
		t.Errorf("name: got %v, want Desserts", resp["name"])
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	svc := &mockCategoryService{
		addFn: func(ctx context.Context, name string) (*database.Category, error) {
			return nil, service.ErrCategoryExists
		},
	}
	router, token := newCategoryRouter(t, svc)

	rr := doAuthed(t, router, "POST", "/categories", token, []byte(`{"name":"Mains"}`))
	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestRenameCategory_ReportsCascadeCount(t *testing.T) {
	var gotOld, gotNew string
	svc := &mockCategoryService{
		renameFn: func(ctx context.Context, oldName, newName string) (*service.RenameResult, error) {
			gotOld, gotNew = oldName, newName
			return &service.RenameResult{
				Category:     database.Category{ID: uuid.New(), Name: newName, CreatedAt: time.Now()},
				ItemsUpdated: 12,
			}, nil
		},
	}
	router, token := newCategoryRouter(t, svc)

	rr := doAuthed(t, router, "PUT", "/categories", token,
		[]byte(`{"old_name":"Mains","new_name":"Main Dishes"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if gotOld != "Mains" || gotNew != "Main Dishes" {
		t.Errorf("rename args: got %q -> %q", gotOld, gotNew)
	}
	resp := decodeResponse(t, rr)
	if resp["items_updated"] != float64(12) {
		t.Errorf("items_updated: got %v, want 12", resp["items_updated"])
	}
}

func TestRenameCategory_NotFound(t *testing.T) {
	svc := &mockCategoryService{
		renameFn: func(ctx context.Context, oldName, newName string) (*service.RenameResult, error) {
			return nil, service.ErrCategoryNotFound
		},
	}
	router, token := newCategoryRouter(t, svc)

	rr := doAuthed(t, router, "PUT", "/categories", token,
		[]byte(`{"old_name":"Nope","new_name":"Other"}`))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteCategory(t *testing.T) {
	var removed string
	svc := &mockCategoryService{
		removeFn: func(ctx context.Context, name string) error {
			removed = name
			return nil
		},
	}
	router, token := newCategoryRouter(t, svc)

	rr := doAuthed(t, router, "DELETE", "/categories", token, []byte(`{"name":"Desserts"}`))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if removed != "Desserts" {
		t.Errorf("removed: got %q, want Desserts", removed)
	}
}
