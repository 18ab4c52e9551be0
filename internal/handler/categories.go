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
	"github.com/enat-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CategoryServicer defines the service methods needed by category handlers.
// Satisfied by *service.CategoryService.
type CategoryServicer interface {
	List(ctx context.Context) ([]database.Category, error)
	Add(ctx context.Context, name string) (*database.Category, error)
	Rename(ctx context.Context, oldName, newName string) (*service.RenameResult, error)
	Remove(ctx context.Context, name string) error
}

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	svc CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc CategoryServicer) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// RegisterPublicRoutes registers the guest-facing read endpoint.
func (h *CategoryHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterRoutes registers staff write endpoints.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCapability(auth.ActionManageCategories))
		r.Post("/", h.Create)
		r.Put("/", h.Rename)
		r.Delete("/", h.Delete)
	})
}

// --- Request / Response types ---

type categoryRequest struct {
	Name string `json:"name"`
}

type renameCategoryRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type renameCategoryResponse struct {
	Category     categoryResponse `json:"category"`
	ItemsUpdated int64            `json:"items_updated"`
}

// --- Handlers ---

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	category, err := h.svc.Add(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNameRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: create category: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(*category))
}

// Rename handles PUT /categories. The cascade to menu items is atomic.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Rename(r.Context(), req.OldName, req.NewName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNameRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: rename category: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, renameCategoryResponse{
		Category:     toCategoryResponse(result.Category),
		ItemsUpdated: result.ItemsUpdated,
	})
}

// Delete handles DELETE /categories. The name travels in the body because
// category names may contain characters awkward in a path segment.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.svc.Remove(r.Context(), req.Name); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNameRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: delete category: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
