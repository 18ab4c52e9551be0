package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LoginLogStore defines the database methods needed by the log handlers.
type LoginLogStore interface {
	ListLoginLogs(ctx context.Context) ([]database.LoginLog, error)
}

// LogHandler serves the developer-facing login audit trail.
type LogHandler struct {
	store LoginLogStore
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(store LoginLogStore) *LogHandler {
	return &LogHandler{store: store}
}

// RegisterRoutes registers log endpoints on the given Chi router.
func (h *LogHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.ActionViewLoginLogs)).Get("/login", h.ListLoginLogs)
}

type loginLogResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLoginLogs handles GET /logs/login: the most recent attempts, capped at
// the store's ring size.
func (h *LogHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListLoginLogs(r.Context())
	if err != nil {
		log.Printf("ERROR: list login logs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]loginLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = loginLogResponse{
			ID:        l.ID,
			Username:  l.Username,
			Role:      l.Role,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
