package models

import "time"

// Payment records a settlement against a final invoice. The system only
// supports paid-in-full-or-not, so at most one row per invoice in practice.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InvoiceID uint      `gorm:"index;not null" json:"invoice_id"`
	Date      time.Time `gorm:"not null" json:"date"`
	Montant   float64   `gorm:"type:decimal(12,2);not null" json:"montant"`
	Mode      string    `gorm:"size:50;not null" json:"mode"` // ex: virement, CB, chèque, espèces
	CreatedAt time.Time `json:"created_at"`
}
