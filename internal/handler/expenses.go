package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ExpenseStore defines the database methods needed by expense handlers.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	ListExpenses(ctx context.Context) ([]database.Expense, error)
}

// ExpenseHandler handles the owner expense ledger.
type ExpenseHandler struct {
	store ExpenseStore
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(store ExpenseStore) *ExpenseHandler {
	return &ExpenseHandler{store: store}
}

// RegisterRoutes registers expense endpoints on the given Chi router.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCapability(auth.ActionManageExpenses))
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

type createExpenseRequest struct {
	Reason       string `json:"reason"`
	Amount       string `json:"amount"`
	ReceiptImage string `json:"receipt_image"`
}

type expenseResponse struct {
	ID           uuid.UUID `json:"id"`
	Reason       string    `json:"reason"`
	Amount       string    `json:"amount"`
	ReceiptImage *string   `json:"receipt_image"`
	SubmittedBy  string    `json:"submitted_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// List handles GET /expenses, newest first.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /expenses. The ledger is append-only; there is no
// update or delete.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a positive number"})
		return
	}

	var amountNum pgtype.Numeric
	_ = amountNum.Scan(amount.StringFixed(2))

	receipt := pgtype.Text{}
	if req.ReceiptImage != "" {
		receipt = pgtype.Text{String: req.ReceiptImage, Valid: true}
	}

	expense, err := h.store.CreateExpense(r.Context(), database.CreateExpenseParams{
		Reason:       req.Reason,
		Amount:       amountNum,
		ReceiptImage: receipt,
		SubmittedBy:  claims.Username,
	})
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func toExpenseResponse(e database.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Reason:      e.Reason,
		Amount:      numericToString(e.Amount),
		SubmittedBy: e.SubmittedBy,
		CreatedAt:   e.CreatedAt,
	}
	if e.ReceiptImage.Valid {
		resp.ReceiptImage = &e.ReceiptImage.String
	}
	return resp
}
