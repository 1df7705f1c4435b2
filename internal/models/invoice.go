package models

import "time"

// InvoiceKind distinguishes the editable proforma from the immutable final
// invoice. The row is reclassified on validation, never duplicated.
type InvoiceKind string

const (
	InvoiceKindProforma InvoiceKind = "proforma"
	InvoiceKindFinal    InvoiceKind = "final"
)

// InvoiceStatus is the workflow stage. Editability is derived from the
// (Kind, Status) pair, not from Status alone.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	// InvoiceStatusValidated means final and numbered but not yet dispatched.
	InvoiceStatusValidated InvoiceStatus = "validated"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	// InvoiceStatusOverdue is a derived label applied externally by date
	// comparison; no transition in this package produces it.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice is the single billing document of an intervention. Exactly one
// exists per intervention at any time.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string        `gorm:"size:50;uniqueIndex;not null" json:"number"`
	Kind   InvoiceKind   `gorm:"size:20;not null;default:'proforma'" json:"kind"`
	Status InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	InterventionID uint          `gorm:"uniqueIndex;not null" json:"intervention_id"`
	Intervention   *Intervention `gorm:"foreignKey:InterventionID" json:"intervention,omitempty"`
	ClientID       uint          `gorm:"index;not null" json:"client_id"`
	Client         *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	// Snapshot of the intervention's labor/travel figures taken when the
	// proforma is built, so totals stay recomputable after the job record
	// moves on.
	LaborHours float64 `gorm:"type:decimal(6,2)" json:"labor_hours"`
	LaborRate  float64 `gorm:"type:decimal(10,2)" json:"labor_rate"`
	TravelFee  float64 `gorm:"type:decimal(10,2)" json:"travel_fee"`

	SubtotalHT float64 `gorm:"type:decimal(12,2)" json:"subtotal_ht"`
	TotalTVA   float64 `gorm:"type:decimal(12,2)" json:"total_tva"`
	TotalTTC   float64 `gorm:"type:decimal(12,2)" json:"total_ttc"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	PaymentMethod string     `gorm:"size:50" json:"payment_method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	AmountPaid    float64    `gorm:"type:decimal(12,2)" json:"amount_paid,omitempty"`

	// Location returned by an external filing workflow after dispatch.
	ExternalDocumentURL string     `gorm:"size:500" json:"external_document_url,omitempty"`
	ExternalDocumentAt  *time.Time `json:"external_document_at,omitempty"`

	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	ValidatedBy uint       `json:"validated_by,omitempty"`

	// DispatchInProgress is the claim flag guarding concurrent sends.
	DispatchInProgress bool `gorm:"not null;default:false" json:"-"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// CanEdit returns true while items and dates may still change.
func (i *Invoice) CanEdit() bool {
	return i.Kind == InvoiceKindProforma && i.Status == InvoiceStatusDraft
}

// IsFinal returns true once the invoice has been validated.
func (i *Invoice) IsFinal() bool { return i.Kind == InvoiceKindFinal }

// InvoiceItem is a priced line fully owned by its invoice; the set is
// replaced wholesale on every draft save.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(10,3);not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	// TaxRate is a percentage, per line (0, 5.5, 10, 20, ...).
	TaxRate  float64 `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Position int     `gorm:"default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
}

// TotalHT is the line amount excluding tax.
func (item *InvoiceItem) TotalHT() float64 { return item.Quantity * item.UnitPrice }

// TotalTVA is the tax amount for this line.
func (item *InvoiceItem) TotalTVA() float64 { return item.TotalHT() * item.TaxRate / 100 }
