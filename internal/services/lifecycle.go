package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/models"

	"gorm.io/gorm"
)

// LifecycleService owns the invoice state machine:
// draft(proforma) -> validated(final) -> sent -> paid.
type LifecycleService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db, Now: time.Now}
}

// ItemInput is one line of a draft save. The item set replaces the stored
// one wholesale.
type ItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
}

// SaveInput carries the editable fields of a proforma draft.
type SaveInput struct {
	Items     []ItemInput `json:"items"`
	IssueDate *time.Time  `json:"issue_date,omitempty"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	Notes     *string     `json:"notes,omitempty"`
}

// Get loads an invoice with its items.
func (s *LifecycleService) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client").Preload("Intervention").
		First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Save replaces the draft's items and dates and recomputes the header
// totals. Allowed only while the invoice is editable (proforma + draft);
// delete-all-then-insert is fine because items are never referenced by id
// from outside the invoice.
func (s *LifecycleService) Save(id uint, in SaveInput) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !inv.CanEdit() {
		return nil, fmt.Errorf("invoice %s is %s/%s: %w", inv.Number, inv.Kind, inv.Status, ErrNotEditable)
	}

	items := make([]models.InvoiceItem, 0, len(in.Items))
	for pos, it := range in.Items {
		rate := it.TaxRate
		if rate < 0 {
			rate = 0
		}
		items = append(items, models.InvoiceItem{
			InvoiceID:   inv.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     rate,
			Position:    pos,
		})
	}

	totals := ComputeTotals(inv.LaborHours, inv.LaborRate, inv.TravelFee, items)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		updates := map[string]any{
			"subtotal_ht": Round2(totals.SubtotalHT),
			"total_tva":   Round2(totals.TotalTVA),
			"total_ttc":   Round2(totals.TotalTTC),
		}
		if in.IssueDate != nil {
			updates["issue_date"] = *in.IssueDate
		}
		if in.DueDate != nil {
			updates["due_date"] = *in.DueDate
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Validate flips the proforma into its immutable final form: totals are
// re-persisted from the current item set, a final-series number is assigned
// under the uniqueness constraint, kind becomes final and status validated.
// This is the point of no return; a second call fails with ErrAlreadyFinal.
func (s *LifecycleService) Validate(id, userID uint) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if inv.IsFinal() {
		return nil, fmt.Errorf("invoice %s: %w", inv.Number, ErrAlreadyFinal)
	}
	if inv.Status != models.InvoiceStatusDraft {
		return nil, fmt.Errorf("invoice %s has status %s: %w", inv.Number, inv.Status, ErrInvalidState)
	}

	// Idempotent re-save of the totals before freezing them.
	totals := ComputeTotals(inv.LaborHours, inv.LaborRate, inv.TravelFee, inv.Items)
	now := s.Now()

	_, err = assignNumberWithRetry(s.DB, models.InvoiceKindFinal, now.Year(), func(tx *gorm.DB, number string) error {
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND kind = ? AND status = ?", inv.ID, models.InvoiceKindProforma, models.InvoiceStatusDraft).
			Updates(map[string]any{
				"number":       number,
				"kind":         models.InvoiceKindFinal,
				"status":       models.InvoiceStatusValidated,
				"subtotal_ht":  Round2(totals.SubtotalHT),
				"total_tva":    Round2(totals.TotalTVA),
				"total_ttc":    Round2(totals.TotalTTC),
				"validated_at": now,
				"validated_by": userID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race with a concurrent validate.
			return fmt.Errorf("invoice %d: %w", inv.ID, ErrAlreadyFinal)
		}
		return audit(tx, userID, "Invoice", inv.ID, "validate", "proforma "+inv.Number+" -> "+number)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// RecordPayment marks a validated or sent final invoice as paid in full.
// The amount is deliberately accepted as-is; over- and under-payment are not
// flagged because the business rule is paid-in-full-or-not.
func (s *LifecycleService) RecordPayment(id uint, method string, amount float64) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !inv.IsFinal() || (inv.Status != models.InvoiceStatusValidated && inv.Status != models.InvoiceStatusSent) {
		return nil, fmt.Errorf("invoice %s is %s/%s: %w", inv.Number, inv.Kind, inv.Status, ErrInvalidState)
	}

	now := s.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status IN ?", inv.ID, []models.InvoiceStatus{models.InvoiceStatusValidated, models.InvoiceStatusSent}).
			Updates(map[string]any{
				"status":         models.InvoiceStatusPaid,
				"payment_method": method,
				"paid_at":        now,
				"amount_paid":    amount,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("invoice %d: %w", inv.ID, ErrInvalidState)
		}
		payment := models.Payment{InvoiceID: inv.ID, Date: now, Montant: amount, Mode: method}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return audit(tx, 0, "Invoice", inv.ID, "record_payment", method)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func audit(tx *gorm.DB, userID uint, entityType string, entityID uint, action, detail string) error {
	return tx.Create(&models.AuditLog{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     detail,
	}).Error
}
