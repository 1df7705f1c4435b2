package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/httpx"
	"github.com/ecron24/delmas-app-sub000/internal/models"
	"github.com/ecron24/delmas-app-sub000/internal/services"
	"github.com/ecron24/delmas-app-sub000/internal/validation"

	"gorm.io/gorm"
)

// dispatchTimeout bounds the whole render/store/deliver pipeline of one
// send-to-client call.
const dispatchTimeout = 30 * time.Second

// InvoiceHandler exposes the invoice lifecycle over HTTP.
type InvoiceHandler struct {
	DB         *gorm.DB
	Lifecycle  *services.LifecycleService
	Dispatcher *services.Dispatcher
}

func NewInvoiceHandler(db *gorm.DB, lc *services.LifecycleService, d *services.Dispatcher) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Lifecycle: lc, Dispatcher: d}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Model(&models.Invoice{})
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind != "" {
		dbq = dbq.Where("kind = ?", kind)
	}
	var total int64
	dbq.Count(&total)
	var invs []models.Invoice
	if err := dbq.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.Lifecycle.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Save: PUT /invoices/{id} — replaces a draft's items/dates/notes.
func (h *InvoiceHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	for i, it := range in.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		validation.Required(prefix+"description", it.Description, v)
		validation.PositiveFloat(prefix+"quantity", it.Quantity, v)
		validation.NonNegativeFloat(prefix+"unit_price", it.UnitPrice, v)
		validation.RangeFloat(prefix+"tax_rate", it.TaxRate, 0, 100, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.Lifecycle.Save(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Validate: POST /invoices/{id}/validate — proforma becomes final.
func (h *InvoiceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID := userIDOrZero(r)
	inv, err := h.Lifecycle.Validate(id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": inv.ID, "number": inv.Number, "kind": inv.Kind, "status": inv.Status})
}

// SendToClient: POST /invoices/{id}/send-to-client
func (h *InvoiceHandler) SendToClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
	defer cancel()
	res, err := h.Dispatcher.Send(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySent) {
			// Idempotency short-circuit, success-equivalent for the caller.
			httpx.JSON(w, http.StatusOK, map[string]any{"invoice_id": id, "already_sent": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// MarkPaid: POST /invoices/{id}/mark-paid
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Method string  `json:"method"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("method", body.Method, v)
	// Any positive amount is accepted; it is not reconciled against the
	// invoice total (paid-in-full-or-not business rule).
	validation.PositiveFloat("amount", body.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.Lifecycle.RecordPayment(id, body.Method, body.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": inv.ID, "status": inv.Status, "paid_at": inv.PaidAt, "amount_paid": inv.AmountPaid})
}

// PDF: GET /invoices/{id}/pdf — streams the rendered document directly.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, filename, err := h.Dispatcher.Render(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
