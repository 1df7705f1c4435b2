package models

import "time"

// DispatchStatus is the outcome recorded for a delivery attempt.
type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// DispatchKindFinalInvoice tags log entries written by the final-invoice
// dispatch pipeline.
const DispatchKindFinalInvoice = "final_invoice_dispatch"

// DispatchLog is the append-only audit trail of outbound deliveries. It is
// also the source of truth for the "already sent" idempotency check: the
// invoice status field is not used for that, because it doubles as the
// editability marker.
type DispatchLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	InvoiceID uint           `gorm:"index;not null" json:"invoice_id"`
	Recipient string         `gorm:"size:320;not null" json:"recipient"`
	Kind      string         `gorm:"size:50;not null" json:"kind"`
	Status    DispatchStatus `gorm:"size:10;not null" json:"status"`

	// SentKey is set to the invoice id for status=sent rows and left NULL
	// otherwise. The unique index makes a second sent entry for the same
	// invoice impossible at the database level.
	SentKey *string `gorm:"size:50;uniqueIndex" json:"-"`

	ProviderMessageID string `gorm:"size:200" json:"provider_message_id,omitempty"`
	Note              string `gorm:"size:500" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
