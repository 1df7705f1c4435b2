package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/httpx"
	"github.com/ecron24/delmas-app-sub000/internal/models"
	"github.com/ecron24/delmas-app-sub000/internal/services"

	"gorm.io/gorm"
)

// InterventionHandler exposes the completion/billing entry points of a job.
// Scheduling and editing of interventions happen elsewhere.
type InterventionHandler struct {
	DB      *gorm.DB
	Builder *services.InvoiceBuilder
}

func NewInterventionHandler(db *gorm.DB, b *services.InvoiceBuilder) *InterventionHandler {
	return &InterventionHandler{DB: db, Builder: b}
}

// Complete: POST /interventions/{id}/complete — marks the job completed and
// builds its proforma invoice in the same call.
func (h *InterventionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var iv models.Intervention
	if err := h.DB.First(&iv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_intervention", nil)
		return
	}
	switch iv.Status {
	case models.InterventionScheduled, models.InterventionInProgress:
		now := time.Now()
		if err := h.DB.Model(&iv).Updates(map[string]any{
			"status":       models.InterventionCompleted,
			"completed_at": now,
		}).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_complete", nil)
			return
		}
	case models.InterventionCompleted:
		// already completed; fall through to the idempotent builder
	default:
		httpx.JSONError(w, http.StatusBadRequest, "intervention_not_completable", map[string]string{"status": string(iv.Status)})
		return
	}
	h.build(w, id)
}

// BuildInvoice: POST /interventions/{id}/invoice — idempotent proforma
// creation for an already completed job.
func (h *InterventionHandler) BuildInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.build(w, id)
}

func (h *InterventionHandler) build(w http.ResponseWriter, interventionID uint) {
	res, err := h.Builder.BuildFromIntervention(interventionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, map[string]any{
		"invoice_id": res.Invoice.ID,
		"number":     res.Invoice.Number,
		"created":    res.Created,
	})
}
