package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/middleware"
	"github.com/enat-pos/api/internal/printing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReceiptStore defines the database methods needed by receipt handlers.
type ReceiptStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetSettings(ctx context.Context) (database.SettingsView, error)
}

// Printer dispatches a rendered receipt. Satisfied by *printing.Agent.
type Printer interface {
	Print(ctx context.Context, printerName string, receipt printing.Receipt) error
}

// ReceiptHandler prints and exports bills.
type ReceiptHandler struct {
	store   ReceiptStore
	printer Printer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(store ReceiptStore, printer Printer) *ReceiptHandler {
	return &ReceiptHandler{store: store, printer: printer}
}

// RegisterRoutes registers receipt endpoints on the given Chi router.
func (h *ReceiptHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCapability(auth.ActionPrintReceipts))
		r.Post("/orders/{id}/print", h.Print)
		r.Get("/orders/{id}/receipt.pdf", h.PDF)
		r.Post("/receipts/combined.pdf", h.CombinedPDF)
	})
}

type combinedReceiptRequest struct {
	OrderIDs []string `json:"order_ids"`
}

type printResponse struct {
	Printed bool   `json:"printed"`
	Detail  string `json:"detail,omitempty"`
}

// Print handles POST /orders/{id}/print. A missing printer is not an error
// to hide: the dashboard offers the PDF route instead.
func (h *ReceiptHandler) Print(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	receipt, settings, ok := h.buildReceipt(w, r, orderID)
	if !ok {
		return
	}

	if err := h.printer.Print(r.Context(), settings.ReceiptPrinterName, receipt); err != nil {
		if errors.Is(err, printing.ErrNoPrinter) {
			writeJSON(w, http.StatusConflict, printResponse{
				Printed: false,
				Detail:  "no receipt printer configured; use the PDF export",
			})
			return
		}
		log.Printf("ERROR: print receipt: %v", err)
		writeJSON(w, http.StatusBadGateway, printResponse{Printed: false, Detail: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, printResponse{Printed: true})
}

// PDF handles GET /orders/{id}/receipt.pdf.
func (h *ReceiptHandler) PDF(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	receipt, _, ok := h.buildReceipt(w, r, orderID)
	if !ok {
		return
	}

	data, err := printing.RenderPDF(receipt)
	if err != nil {
		log.Printf("ERROR: render receipt pdf: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// CombinedPDF handles POST /receipts/combined.pdf: one document covering
// several orders with a summed footer.
func (h *ReceiptHandler) CombinedPDF(w http.ResponseWriter, r *http.Request) {
	var req combinedReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.OrderIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_ids are required"})
		return
	}

	var receipts []printing.Receipt
	for _, raw := range req.OrderIDs {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID: " + raw})
			return
		}
		receipt, _, ok := h.buildReceipt(w, r, orderID)
		if !ok {
			return
		}
		receipts = append(receipts, receipt)
	}

	data, err := printing.RenderCombinedPDF(receipts)
	if err != nil {
		log.Printf("ERROR: render combined pdf: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// buildReceipt loads an order and assembles its Receipt. On failure it writes
// the error response itself and reports ok=false.
func (h *ReceiptHandler) buildReceipt(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) (printing.Receipt, database.SettingsView, bool) {
	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return printing.Receipt{}, database.SettingsView{}, false
		}
		log.Printf("ERROR: get order for receipt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return printing.Receipt{}, database.SettingsView{}, false
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items for receipt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return printing.Receipt{}, database.SettingsView{}, false
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: get settings for receipt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return printing.Receipt{}, database.SettingsView{}, false
	}

	lines := make([]printing.Line, len(items))
	for i, item := range items {
		lines[i] = printing.Line{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    numericToDecimal(item.Price),
			Notes:    item.Notes.String,
		}
	}

	receipt := printing.Receipt{
		RestaurantName:     settings.RestaurantName,
		RestaurantLocation: settings.RestaurantLocation,
		OrderID:            order.ID.String(),
		TableName:          order.TableName,
		CreatedAt:          order.CreatedAt,
		Lines:              lines,
		Subtotal:           numericToDecimal(order.Subtotal),
		Tax:                numericToDecimal(order.Tax),
		ServiceFee:         numericToDecimal(order.ServiceFee),
		Total:              numericToDecimal(order.Total),
		PaymentMethod:      order.PaymentMethod,
		PaymentStatus:      order.PaymentStatus,
	}
	return receipt, settings, true
}
