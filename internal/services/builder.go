package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/models"

	"gorm.io/gorm"
)

// InvoiceBuilder assembles a draft proforma from a completed intervention.
type InvoiceBuilder struct {
	DB *gorm.DB
	// Now is overridable in tests.
	Now func() time.Time
}

func NewInvoiceBuilder(db *gorm.DB) *InvoiceBuilder {
	return &InvoiceBuilder{DB: db, Now: time.Now}
}

// BuildResult reports the outcome of BuildFromIntervention. Created is false
// when an invoice already existed for the intervention.
type BuildResult struct {
	Invoice *models.Invoice
	Created bool
}

// BuildFromIntervention creates the proforma invoice of a completed
// intervention. Idempotent: a pre-existing invoice of either kind is
// returned unchanged instead of erroring, so the caller may retry freely.
func (b *InvoiceBuilder) BuildFromIntervention(interventionID uint) (*BuildResult, error) {
	var iv models.Intervention
	if err := b.DB.Preload("Items").Preload("Client").First(&iv, interventionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("intervention %d: %w", interventionID, ErrNotFound)
		}
		return nil, err
	}
	if !iv.IsCompleted() {
		return nil, fmt.Errorf("intervention %d has status %s: %w", iv.ID, iv.Status, ErrNotBillable)
	}

	if existing, err := b.existingFor(iv.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return &BuildResult{Invoice: existing, Created: false}, nil
	}

	settings, err := loadCompanySettings(b.DB)
	if err != nil {
		return nil, err
	}

	now := b.Now()
	delay := settings.PaymentDelayDays
	if delay <= 0 {
		delay = 30
	}

	items := make([]models.InvoiceItem, 0, len(iv.Items))
	for pos, it := range iv.Items {
		rate := it.TaxRate
		if rate == 0 {
			rate = settings.DefaultTaxRate
		}
		items = append(items, models.InvoiceItem{
			Description: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     rate,
			Position:    pos,
		})
	}

	totals := ComputeTotals(iv.LaborHours, iv.LaborRate, iv.TravelFee, items)

	inv := models.Invoice{
		Kind:           models.InvoiceKindProforma,
		Status:         models.InvoiceStatusDraft,
		InterventionID: iv.ID,
		ClientID:       iv.ClientID,
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, delay),
		LaborHours:     iv.LaborHours,
		LaborRate:      iv.LaborRate,
		TravelFee:      iv.TravelFee,
		SubtotalHT:     Round2(totals.SubtotalHT),
		TotalTVA:       Round2(totals.TotalTVA),
		TotalTTC:       Round2(totals.TotalTTC),
	}

	_, err = assignNumberWithRetry(b.DB, models.InvoiceKindProforma, now.Year(), func(tx *gorm.DB, number string) error {
		inv.ID = 0
		inv.Number = number
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = inv.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		// A duplicate on intervention_id means a concurrent build won; hand
		// back the winner's invoice.
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrNumberCollision) {
			if existing, exErr := b.existingFor(iv.ID); exErr == nil && existing != nil {
				return &BuildResult{Invoice: existing, Created: false}, nil
			}
		}
		return nil, err
	}

	inv.Items = items
	return &BuildResult{Invoice: &inv, Created: true}, nil
}

func (b *InvoiceBuilder) existingFor(interventionID uint) (*models.Invoice, error) {
	var existing models.Invoice
	err := b.DB.Preload("Items").Where("intervention_id = ?", interventionID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// loadCompanySettings fetches the single settings row, falling back to
// defaults so billing keeps working on an unconfigured install.
func loadCompanySettings(db *gorm.DB) (*models.CompanySettings, error) {
	var settings models.CompanySettings
	err := db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CompanySettings{DefaultTaxRate: StandardTaxRate, PaymentDelayDays: 30}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
