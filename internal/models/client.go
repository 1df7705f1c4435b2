package models

import "time"

// Client is a pool-maintenance customer.
type Client struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Nom          string `gorm:"not null;index" json:"nom"` // raison sociale ou nom
	Contact      string `json:"contact,omitempty"`
	Email        string `json:"email,omitempty"`
	Telephone    string `json:"telephone,omitempty"`
	AdresseLigne string `json:"adresse_ligne,omitempty"`
	CodePostal   string `json:"code_postal,omitempty"`
	Ville        string `json:"ville,omitempty"`
	Pays         string `gorm:"default:'FR'" json:"pays,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
