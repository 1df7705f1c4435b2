package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/models"
	"github.com/ecron24/delmas-app-sub000/internal/pdf"

	"gorm.io/gorm"
)

// Renderer turns structured invoice data into a document byte buffer. The
// rendering engine itself is a black box to this package.
type Renderer interface {
	RenderInvoice(data pdf.InvoiceData) ([]byte, error)
}

// ObjectStore is the durable storage for rendered invoices.
type ObjectStore interface {
	Put(path string, data []byte) error
	SignedURL(path string, ttl time.Duration) (string, error)
}

// DeliveryRequest carries everything a delivery strategy needs to hand the
// invoice to the client, whether by direct email or an external workflow.
type DeliveryRequest struct {
	InvoiceID        uint      `json:"invoice_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	ClientName       string    `json:"client_name"`
	ClientEmail      string    `json:"client_email"`
	InterventionRef  string    `json:"intervention_ref"`
	InterventionDate time.Time `json:"intervention_date"`
	DocumentURL      string    `json:"document_url"`
	DocumentFilename string    `json:"document_filename"`
	TotalTTC         float64   `json:"total_ttc"`
	IssueDate        time.Time `json:"issue_date"`
	Action           string    `json:"action"`

	// Attachment is the rendered document, used by the email strategy.
	Attachment []byte `json:"-"`
}

// DeliveryReceipt is what a strategy reports back on success.
type DeliveryReceipt struct {
	MessageID string
	// StorageLocation is an optional follow-up location returned by an
	// external workflow, persisted back onto the invoice.
	StorageLocation string
}

// Deliverer sends a final invoice to the client. Exactly one strategy is
// configured per deployment.
type Deliverer interface {
	Deliver(ctx context.Context, req DeliveryRequest) (DeliveryReceipt, error)
}

// Dispatcher runs the render -> store -> link -> deliver -> record pipeline
// for final invoices, exactly once per invoice.
type Dispatcher struct {
	DB       *gorm.DB
	Renderer Renderer
	Store    ObjectStore
	Deliver  Deliverer

	// URLTTL bounds the lifetime of the signed retrieval link.
	URLTTL time.Duration
	Now    func() time.Time
}

func NewDispatcher(db *gorm.DB, r Renderer, store ObjectStore, d Deliverer, urlTTL time.Duration) *Dispatcher {
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &Dispatcher{DB: db, Renderer: r, Store: store, Deliver: d, URLTTL: urlTTL, Now: time.Now}
}

// DispatchResult describes a completed dispatch.
type DispatchResult struct {
	InvoiceID    uint   `json:"invoice_id"`
	Number       string `json:"number"`
	Recipient    string `json:"recipient"`
	DocumentPath string `json:"document_path"`
	DocumentURL  string `json:"document_url"`
	MessageID    string `json:"message_id,omitempty"`
	// Logged is false in the one tolerated inconsistency: the invoice was
	// delivered but the audit-trail write failed.
	Logged bool `json:"logged"`
}

// Send dispatches a final invoice to its client. Steps before delivery
// abort cleanly and are safe to retry from scratch; a delivery failure
// leaves a failed log entry so the generated-but-undelivered state is
// visible; a record failure after successful delivery is logged loudly but
// does not fail the call.
func (d *Dispatcher) Send(ctx context.Context, invoiceID uint) (*DispatchResult, error) {
	inv, err := d.load(invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsFinal() {
		return nil, fmt.Errorf("invoice %s is still %s: %w", inv.Number, inv.Kind, ErrInvalidState)
	}
	if inv.Client == nil || inv.Client.Email == "" {
		return nil, fmt.Errorf("invoice %s: client has no email: %w", inv.Number, ErrInvalidState)
	}

	// Step 1: idempotency check against the dispatch log, not the invoice
	// status (which doubles as the editability marker).
	var sentCount int64
	if err := d.DB.Model(&models.DispatchLog{}).
		Where("invoice_id = ? AND status = ?", inv.ID, models.DispatchSent).
		Count(&sentCount).Error; err != nil {
		return nil, err
	}
	if sentCount > 0 {
		return nil, fmt.Errorf("invoice %s: %w", inv.Number, ErrAlreadySent)
	}

	// Claim the invoice so two concurrent sends cannot both reach the
	// delivery step.
	claim := d.DB.Model(&models.Invoice{}).
		Where("id = ? AND dispatch_in_progress = ?", inv.ID, false).
		Update("dispatch_in_progress", true)
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, fmt.Errorf("invoice %s: %w", inv.Number, ErrDispatchInProgress)
	}
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		if err := d.DB.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Update("dispatch_in_progress", false).Error; err != nil {
			log.Printf("[dispatch] failed to release claim on invoice %d: %v", inv.ID, err)
		}
	}
	defer release()

	settings, err := loadCompanySettings(d.DB)
	if err != nil {
		return nil, err
	}

	// Step 2: render.
	data := buildInvoiceData(inv, settings)
	doc, err := d.Renderer.RenderInvoice(data)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", ErrDownstream, err)
	}

	// Step 3: persist under a deterministic, overwrite-safe path.
	path := fmt.Sprintf("invoices/%s_%s.pdf", inv.Number, SanitizeName(inv.Client.Nom))
	if err := d.Store.Put(path, doc); err != nil {
		return nil, fmt.Errorf("%w: storage: %v", ErrDownstream, err)
	}

	// Step 4: time-limited retrieval link.
	url, err := d.Store.SignedURL(path, d.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: signed url: %v", ErrDownstream, err)
	}

	req := DeliveryRequest{
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.Number,
		ClientName:       inv.Client.Nom,
		ClientEmail:      inv.Client.Email,
		DocumentURL:      url,
		DocumentFilename: fmt.Sprintf("%s.pdf", inv.Number),
		TotalTTC:         inv.TotalTTC,
		IssueDate:        inv.IssueDate,
		Action:           models.DispatchKindFinalInvoice,
		Attachment:       doc,
	}
	if inv.Intervention != nil {
		req.InterventionRef = inv.Intervention.Reference
		req.InterventionDate = inv.Intervention.ScheduledAt
	}

	// Step 5: deliver. A failure here must stay visible as a failed log
	// entry; the document exists but never reached the client.
	receipt, err := d.Deliver.Deliver(ctx, req)
	if err != nil {
		failLog := models.DispatchLog{
			InvoiceID: inv.ID,
			Recipient: inv.Client.Email,
			Kind:      models.DispatchKindFinalInvoice,
			Status:    models.DispatchFailed,
			Note:      truncate(err.Error(), 500),
		}
		if logErr := d.DB.Create(&failLog).Error; logErr != nil {
			log.Printf("[dispatch] could not record failed delivery of invoice %d: %v", inv.ID, logErr)
		}
		return nil, fmt.Errorf("%w: delivery: %v", ErrDownstream, err)
	}

	result := &DispatchResult{
		InvoiceID:    inv.ID,
		Number:       inv.Number,
		Recipient:    inv.Client.Email,
		DocumentPath: path,
		DocumentURL:  url,
		MessageID:    receipt.MessageID,
		Logged:       true,
	}

	// Step 6: record. The unique sent_key re-verifies the idempotency
	// decision at the moment the log row is written.
	err = d.DB.Transaction(func(tx *gorm.DB) error {
		sentKey := strconv.FormatUint(uint64(inv.ID), 10)
		entry := models.DispatchLog{
			InvoiceID:         inv.ID,
			Recipient:         inv.Client.Email,
			Kind:              models.DispatchKindFinalInvoice,
			Status:            models.DispatchSent,
			SentKey:           &sentKey,
			ProviderMessageID: receipt.MessageID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		updates := map[string]any{"dispatch_in_progress": false}
		if inv.Status == models.InvoiceStatusValidated {
			updates["status"] = models.InvoiceStatusSent
		}
		if receipt.StorageLocation != "" {
			updates["external_document_url"] = receipt.StorageLocation
			updates["external_document_at"] = d.Now()
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return err
		}
		docRow := models.Document{
			OwnerType: "Invoice",
			OwnerID:   inv.ID,
			Name:      req.DocumentFilename,
			Path:      path,
			MimeType:  "application/pdf",
		}
		if err := tx.Create(&docRow).Error; err != nil {
			return err
		}
		return audit(tx, 0, "Invoice", inv.ID, "dispatch", "sent to "+inv.Client.Email)
	})
	if err != nil {
		// The client already has the invoice; an unsend is not possible. Keep
		// the delivery a success but make the bookkeeping gap impossible to miss.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("[dispatch] CONCURRENT SENT RECORD for invoice %d (%s): another dispatch recorded first", inv.ID, inv.Number)
		} else {
			log.Printf("[dispatch] AUDIT TRAIL INCOMPLETE for invoice %d (%s): delivered but log write failed: %v", inv.ID, inv.Number, err)
		}
		result.Logged = false
		return result, nil
	}
	released = true // claim cleared inside the transaction
	return result, nil
}

// Render builds the invoice document without any dispatch side effects,
// for direct download. Returns the bytes and a suggested filename.
func (d *Dispatcher) Render(invoiceID uint) ([]byte, string, error) {
	inv, err := d.load(invoiceID)
	if err != nil {
		return nil, "", err
	}
	settings, err := loadCompanySettings(d.DB)
	if err != nil {
		return nil, "", err
	}
	doc, err := d.Renderer.RenderInvoice(buildInvoiceData(inv, settings))
	if err != nil {
		return nil, "", fmt.Errorf("%w: render: %v", ErrDownstream, err)
	}
	return doc, inv.Number + ".pdf", nil
}

func (d *Dispatcher) load(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := d.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
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

// buildInvoiceData maps the invoice graph and the explicitly passed company
// settings to the renderer's input shape.
func buildInvoiceData(inv *models.Invoice, settings *models.CompanySettings) pdf.InvoiceData {
	items := make([]pdf.InvoiceItem, 0, len(inv.Items)+2)
	if inv.LaborHours > 0 {
		items = append(items, pdf.InvoiceItem{
			Description: "Main d'œuvre",
			Quantity:    inv.LaborHours,
			UnitPrice:   inv.LaborRate,
			TaxRate:     StandardTaxRate,
			Total:       inv.LaborHours * inv.LaborRate,
		})
	}
	if inv.TravelFee > 0 {
		items = append(items, pdf.InvoiceItem{
			Description: "Frais de déplacement",
			Quantity:    1,
			UnitPrice:   inv.TravelFee,
			TaxRate:     StandardTaxRate,
			Total:       inv.TravelFee,
		})
	}
	for _, it := range inv.Items {
		items = append(items, pdf.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Total:       it.TotalHT(),
		})
	}

	data := pdf.InvoiceData{
		InvoiceNumber: inv.Number,
		Kind:          string(inv.Kind),
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		Items:         items,
		SubtotalHT:    inv.SubtotalHT,
		TotalTVA:      inv.TotalTVA,
		TotalTTC:      inv.TotalTTC,
		Notes:         inv.Notes,
		Company: pdf.CompanyData{
			Name:            settings.RaisonSociale,
			SIRET:           settings.SIRET,
			TVAIntra:        settings.TVAIntra,
			Address:         formatAddress(settings.AdresseLigne, settings.CodePostal, settings.Ville),
			Email:           settings.Email,
			IBAN:            settings.IBAN,
			MentionsLegales: settings.MentionsLegales,
		},
	}
	if inv.Client != nil {
		data.Client = pdf.ClientData{
			Name:    inv.Client.Nom,
			Address: formatAddress(inv.Client.AdresseLigne, inv.Client.CodePostal, inv.Client.Ville),
			Email:   inv.Client.Email,
		}
	}
	if inv.Intervention != nil {
		data.InterventionRef = inv.Intervention.Reference
		data.InterventionDate = inv.Intervention.ScheduledAt.Format("2006-01-02")
		data.InterventionDescription = inv.Intervention.Description
	}
	return data
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeName makes a client name safe for use in a storage path.
func SanitizeName(name string) string {
	s := unsafePathChars.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "client"
	}
	return s
}

func formatAddress(line, postal, city string) string {
	parts := make([]string, 0, 2)
	if line != "" {
		parts = append(parts, line)
	}
	if postal != "" || city != "" {
		parts = append(parts, strings.TrimSpace(postal+" "+city))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
