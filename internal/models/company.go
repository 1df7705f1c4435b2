package models

import "time"

// CompanySettings carries the issuing company's identity, legal text and
// billing defaults. It is loaded once per request and passed explicitly into
// the document renderer rather than read as ambient state.
type CompanySettings struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	RaisonSociale string `gorm:"not null" json:"raison_sociale"`
	SIRET         string `gorm:"size:14" json:"siret"`
	TVAIntra      string `json:"tva_intra,omitempty"` // numéro TVA intracommunautaire
	AdresseLigne  string `json:"adresse_ligne,omitempty"`
	CodePostal    string `json:"code_postal,omitempty"`
	Ville         string `json:"ville,omitempty"`
	Pays          string `gorm:"default:'FR'" json:"pays,omitempty"`
	Telephone     string `json:"telephone,omitempty"`
	Email         string `json:"email,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`

	MentionsLegales string `gorm:"type:text" json:"mentions_legales,omitempty"`

	// DefaultTaxRate is the percentage applied to intervention items that
	// were recorded without one.
	DefaultTaxRate float64 `gorm:"type:decimal(5,2);default:20" json:"default_tax_rate"`
	// PaymentDelayDays sets the due date offset of new proformas.
	PaymentDelayDays int `gorm:"default:30" json:"payment_delay_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
